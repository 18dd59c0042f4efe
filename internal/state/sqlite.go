package state

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/qbridge-labs/qbridge/pkg/core"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite job history store.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// Open opens a connection to the SQLite database. Use ":memory:" for an
// in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InitSchema initializes the database schema.
func (s *SQLiteStore) InitSchema() error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// RecordJob persists a terminal job.
func (s *SQLiteStore) RecordJob(job *core.Job) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if !job.State.Terminal() {
		return fmt.Errorf("job %s is %s, only terminal jobs are recorded", job.ID, job.State)
	}

	histJSON, err := json.Marshal(job.Histogram)
	if err != nil {
		return fmt.Errorf("failed to encode histogram: %w", err)
	}
	errMsg := ""
	if job.Err != nil {
		errMsg = job.Err.Error()
	}

	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO jobs (id, shots, state, error_kind, error_message, histogram, submitted_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Shots, string(job.State), string(job.ErrorKind()), errMsg,
		string(histJSON), job.SubmittedAt, job.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record job: %w", err)
	}
	s.logger.Debug("job recorded", "job_id", job.ID, "state", job.State)
	return nil
}

// GetJob retrieves a recorded job by id. Returns nil, nil if not found.
func (s *SQLiteStore) GetJob(id string) (*JobRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRow(
		`SELECT id, shots, state, error_kind, error_message, histogram, submitted_at, finished_at
		 FROM jobs WHERE id = ?`, id,
	)
	rec, err := scanJob(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

// ListRecent returns the most recently submitted jobs, newest first.
func (s *SQLiteStore) ListRecent(limit int) ([]*JobRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, shots, state, error_kind, error_message, histogram, submitted_at, finished_at
		 FROM jobs ORDER BY submitted_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*JobRecord
	for rows.Next() {
		rec, err := scanJob(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating jobs: %w", err)
	}
	return records, nil
}

func scanJob(scan func(...any) error) (*JobRecord, error) {
	rec := &JobRecord{}
	var state, kind, histJSON string
	var submitted, finished time.Time

	if err := scan(&rec.ID, &rec.Shots, &state, &kind, &rec.ErrorMessage, &histJSON, &submitted, &finished); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan job: %w", err)
	}
	rec.State = core.JobState(state)
	rec.ErrorKind = core.ErrorKind(kind)
	rec.SubmittedAt = submitted
	rec.FinishedAt = finished
	if err := json.Unmarshal([]byte(histJSON), &rec.Histogram); err != nil {
		return nil, fmt.Errorf("failed to decode histogram: %w", err)
	}
	return rec, nil
}
