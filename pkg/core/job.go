package core

import (
	"fmt"
	"time"
)

// JobState is a stage in the job lifecycle. Transitions are strictly
// forward; completed and failed are terminal.
type JobState string

// Job lifecycle states.
const (
	JobReceived   JobState = "received"
	JobMapped     JobState = "mapped"
	JobTranslated JobState = "translated"
	JobExecuting  JobState = "executing"
	JobCompleted  JobState = "completed"
	JobFailed     JobState = "failed"
)

// Terminal reports whether the state permits no further transitions.
func (s JobState) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// order gives each state its position in the forward-only progression.
// Terminal states share the highest rank so that either can follow any
// non-terminal stage.
func (s JobState) order() int {
	switch s {
	case JobReceived:
		return 0
	case JobMapped:
		return 1
	case JobTranslated:
		return 2
	case JobExecuting:
		return 3
	case JobCompleted, JobFailed:
		return 4
	}
	return -1
}

// Job is one unit of work owned exclusively by a single pipeline execution.
// It is created on request arrival and discarded after the response is
// delivered; the state store may log terminal jobs, but the pipeline never
// reads them back.
type Job struct {
	ID      string
	Shots   int
	Program Program

	State    JobState
	Mapping  map[int]int // virtual -> physical, set after mapping
	Commands []TranslatedCommand
	Slots    map[int]int // classical bit -> result slot, set after translation

	Outcomes  []ShotOutcome
	Histogram Histogram

	Err error

	SubmittedAt time.Time
	FinishedAt  time.Time
}

// NewJob creates a job in the received state.
func NewJob(id string, shots int, program Program) *Job {
	return &Job{
		ID:          id,
		Shots:       shots,
		Program:     program,
		State:       JobReceived,
		SubmittedAt: time.Now().UTC(),
	}
}

// Advance moves the job to the next state. It returns an error if the job is
// already terminal or the transition is not strictly forward; such an error
// is a pipeline bug, not a caller failure.
func (j *Job) Advance(next JobState) error {
	if j.State.Terminal() {
		return fmt.Errorf("job %s is %s: no further transitions permitted", j.ID, j.State)
	}
	if next.order() <= j.State.order() && !next.Terminal() {
		return fmt.Errorf("job %s: transition %s -> %s is not forward", j.ID, j.State, next)
	}
	j.State = next
	if next.Terminal() {
		j.FinishedAt = time.Now().UTC()
	}
	return nil
}

// Fail moves the job to the failed terminal state carrying the originating
// error. Failing an already-terminal job is a no-op.
func (j *Job) Fail(err error) {
	if j.State.Terminal() {
		return
	}
	j.Err = err
	j.State = JobFailed
	j.FinishedAt = time.Now().UTC()
}

// ErrorKind returns the failure kind for a failed job, or the empty string.
func (j *Job) ErrorKind() ErrorKind {
	if j.Err == nil {
		return ""
	}
	return KindOf(j.Err)
}
