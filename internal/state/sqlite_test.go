package state

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qbridge-labs/qbridge/pkg/core"
)

func openStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(nil)
	require.NoError(t, store.Open(":memory:"))
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.InitSchema())
	return store
}

func completedJob(id string) *core.Job {
	job := core.NewJob(id, 100, nil)
	job.Histogram = core.Histogram{"00": 60, "11": 40}
	_ = job.Advance(core.JobCompleted)
	return job
}

func TestRecordJob_Roundtrip(t *testing.T) {
	store := openStore(t)
	require.NoError(t, store.RecordJob(completedJob("job-1")))

	rec, err := store.GetJob("job-1")
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, "job-1", rec.ID)
	assert.Equal(t, 100, rec.Shots)
	assert.Equal(t, core.JobCompleted, rec.State)
	assert.Empty(t, rec.ErrorKind)
	assert.Equal(t, core.Histogram{"00": 60, "11": 40}, rec.Histogram)
	assert.False(t, rec.SubmittedAt.IsZero())
	assert.False(t, rec.FinishedAt.IsZero())
}

func TestRecordJob_Failed(t *testing.T) {
	store := openStore(t)

	job := core.NewJob("job-2", 50, nil)
	job.Fail(&core.AdmissionError{Status: core.StatusMaintenance})
	require.NoError(t, store.RecordJob(job))

	rec, err := store.GetJob("job-2")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, core.JobFailed, rec.State)
	assert.Equal(t, core.ErrAdmissionRejected, rec.ErrorKind)
	assert.Contains(t, rec.ErrorMessage, "maintenance")
}

func TestRecordJob_RejectsNonTerminal(t *testing.T) {
	store := openStore(t)

	job := core.NewJob("job-3", 10, nil)
	err := store.RecordJob(job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only terminal jobs")
}

func TestGetJob_NotFound(t *testing.T) {
	store := openStore(t)

	rec, err := store.GetJob("missing")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestListRecent(t *testing.T) {
	store := openStore(t)

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		job := completedJob(fmt.Sprintf("job-%d", i))
		job.SubmittedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, store.RecordJob(job))
	}

	records, err := store.ListRecent(3)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Newest first.
	assert.Equal(t, "job-4", records[0].ID)
	assert.Equal(t, "job-3", records[1].ID)
	assert.Equal(t, "job-2", records[2].ID)
}

func TestStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore(nil)

	assert.Error(t, store.InitSchema())
	assert.Error(t, store.RecordJob(completedJob("x")))
	_, err := store.GetJob("x")
	assert.Error(t, err)
	_, err = store.ListRecent(1)
	assert.Error(t, err)
}
