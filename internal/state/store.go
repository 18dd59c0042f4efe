// Package state persists terminal job results to SQLite for later
// inspection. The pipeline never reads this store; it is a log, not a
// source of truth, and jobs remain one-shot in-memory objects.
package state

import (
	"time"

	"github.com/qbridge-labs/qbridge/pkg/core"
)

// Store is the job history interface.
type Store interface {
	Open(path string) error
	Close() error
	InitSchema() error

	// RecordJob persists a terminal job. Non-terminal jobs are rejected.
	RecordJob(job *core.Job) error
	GetJob(id string) (*JobRecord, error)
	ListRecent(limit int) ([]*JobRecord, error)
}

// JobRecord is one persisted terminal job.
type JobRecord struct {
	ID           string
	Shots        int
	State        core.JobState
	ErrorKind    core.ErrorKind
	ErrorMessage string
	Histogram    core.Histogram
	SubmittedAt  time.Time
	FinishedAt   time.Time
}
