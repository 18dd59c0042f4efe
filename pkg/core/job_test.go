package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJob(t *testing.T) {
	program := Program{
		{Gate: GateX, Qubits: []int{0}},
		{Gate: GateMeasure, Qubits: []int{0}, Bit: 0},
	}
	job := NewJob("job-1", 100, program)

	assert.Equal(t, "job-1", job.ID)
	assert.Equal(t, 100, job.Shots)
	assert.Equal(t, JobReceived, job.State)
	assert.False(t, job.SubmittedAt.IsZero(), "submission time should be set")
	assert.True(t, job.FinishedAt.IsZero(), "finish time should not be set yet")
}

func TestJobAdvance_ForwardProgression(t *testing.T) {
	job := NewJob("job-1", 10, nil)

	for _, next := range []JobState{JobMapped, JobTranslated, JobExecuting, JobCompleted} {
		require.NoError(t, job.Advance(next))
		assert.Equal(t, next, job.State)
	}
	assert.False(t, job.FinishedAt.IsZero(), "terminal transition should set finish time")
}

func TestJobAdvance_RejectsBackward(t *testing.T) {
	job := NewJob("job-1", 10, nil)
	require.NoError(t, job.Advance(JobMapped))
	require.NoError(t, job.Advance(JobTranslated))

	err := job.Advance(JobMapped)
	require.Error(t, err, "backward transition should fail")
	assert.Equal(t, JobTranslated, job.State, "state should be unchanged after rejected transition")
}

func TestJobAdvance_TerminalIsFinal(t *testing.T) {
	job := NewJob("job-1", 10, nil)
	require.NoError(t, job.Advance(JobCompleted))

	err := job.Advance(JobExecuting)
	require.Error(t, err, "transitions out of a terminal state should fail")
	assert.Equal(t, JobCompleted, job.State)
}

func TestJobFail(t *testing.T) {
	job := NewJob("job-1", 10, nil)
	require.NoError(t, job.Advance(JobMapped))

	cause := &ProgramError{Reason: "empty"}
	job.Fail(cause)

	assert.Equal(t, JobFailed, job.State)
	assert.Equal(t, cause, job.Err)
	assert.Equal(t, ErrInvalidProgram, job.ErrorKind())
	assert.False(t, job.FinishedAt.IsZero())
}

func TestJobFail_NoOpWhenTerminal(t *testing.T) {
	job := NewJob("job-1", 10, nil)
	require.NoError(t, job.Advance(JobCompleted))

	job.Fail(&ProgramError{Reason: "late"})

	assert.Equal(t, JobCompleted, job.State, "a completed job must not become failed")
	assert.NoError(t, job.Err)
}

func TestJobStateTerminal(t *testing.T) {
	assert.True(t, JobCompleted.Terminal())
	assert.True(t, JobFailed.Terminal())
	assert.False(t, JobReceived.Terminal())
	assert.False(t, JobExecuting.Terminal())
}
