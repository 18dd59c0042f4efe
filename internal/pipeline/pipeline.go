// Package pipeline orchestrates one job's lifecycle: admission against the
// device status gate, qubit mapping, instruction translation, backend
// execution, and result aggregation. Each job is owned by exactly one
// pipeline execution; jobs share only the read-only device snapshot and the
// status cell, so no job-to-job locking exists.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/qbridge-labs/qbridge/internal/device"
	"github.com/qbridge-labs/qbridge/internal/mapper"
	"github.com/qbridge-labs/qbridge/internal/state"
	"github.com/qbridge-labs/qbridge/internal/translator"
	"github.com/qbridge-labs/qbridge/pkg/backend"
	"github.com/qbridge-labs/qbridge/pkg/core"
)

// Pipeline runs jobs against one device snapshot and backend. Safe for
// concurrent use; Run may be called from any number of goroutines.
type Pipeline struct {
	snapshot   *device.Snapshot
	status     *device.StatusCell
	mapper     *mapper.Mapper
	translator *translator.Translator
	backend    backend.Backend
	store      state.Store
	sem        *semaphore.Weighted
	logger     *slog.Logger
}

// Config holds pipeline construction parameters.
type Config struct {
	Snapshot *device.Snapshot
	Status   *device.StatusCell
	Backend  backend.Backend

	// Store, when non-nil, records terminal jobs. Store failures are logged
	// and never change a job's result.
	Store state.Store

	// MaxConcurrent caps jobs executing on the backend at once; zero or
	// negative means unlimited.
	MaxConcurrent int

	Logger *slog.Logger
}

// New creates a pipeline.
func New(cfg Config) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	var sem *semaphore.Weighted
	if cfg.MaxConcurrent > 0 {
		sem = semaphore.NewWeighted(int64(cfg.MaxConcurrent))
	}
	return &Pipeline{
		snapshot:   cfg.Snapshot,
		status:     cfg.Status,
		mapper:     mapper.New(cfg.Snapshot.Topology, cfg.Snapshot.MaxQubits, logger),
		translator: translator.New(cfg.Snapshot.Calibration, logger),
		backend:    cfg.Backend,
		store:      cfg.Store,
		sem:        sem,
		logger:     logger,
	}
}

// Backend returns the backend the pipeline executes on.
func (p *Pipeline) Backend() backend.Backend { return p.backend }

// Snapshot returns the device snapshot the pipeline compiles against.
func (p *Pipeline) Snapshot() *device.Snapshot { return p.snapshot }

// Status returns the device status cell.
func (p *Pipeline) Status() *device.StatusCell { return p.status }

// Run executes one job to a terminal state and returns it. The returned job
// is always terminal: completed with a histogram, or failed with a kinded
// error. explicit optionally pins virtual qubits to physical qubits and
// takes precedence over automatic assignment.
func (p *Pipeline) Run(ctx context.Context, job *core.Job, explicit map[int]int) *core.Job {
	start := time.Now()
	p.logger.Info("job started", "job_id", job.ID, "shots", job.Shots, "operations", len(job.Program))

	p.run(ctx, job, explicit)

	if job.Err != nil {
		p.logger.Error("job failed", "job_id", job.ID, "kind", job.ErrorKind(), "error", job.Err, "elapsed", time.Since(start).Round(time.Millisecond))
	} else {
		p.logger.Info("job completed", "job_id", job.ID, "outcomes", len(job.Histogram), "elapsed", time.Since(start).Round(time.Millisecond))
	}

	p.record(job)
	return job
}

func (p *Pipeline) run(ctx context.Context, job *core.Job, explicit map[int]int) {
	// Admission: the status gate is consulted exactly once. A status change
	// after this point does not abort the job.
	if err := p.status.Admit(); err != nil {
		job.Fail(err)
		return
	}
	if job.Shots <= 0 {
		job.Fail(&core.ProgramError{Reason: "shots must be positive"})
		return
	}
	if job.Shots > p.snapshot.MaxShots {
		job.Fail(&core.CapacityError{Resource: "shots", Requested: job.Shots, Limit: p.snapshot.MaxShots})
		return
	}

	mapping, err := p.mapper.Map(job.Program, explicit)
	if err != nil {
		job.Fail(err)
		return
	}
	job.Mapping = mapping
	if err := job.Advance(core.JobMapped); err != nil {
		job.Fail(err)
		return
	}

	res, err := p.translator.Translate(job.Program, mapping)
	if err != nil {
		job.Fail(err)
		return
	}
	job.Commands = res.Commands
	job.Slots = res.Slots
	if err := job.Advance(core.JobTranslated); err != nil {
		job.Fail(err)
		return
	}

	if err := job.Advance(core.JobExecuting); err != nil {
		job.Fail(err)
		return
	}
	outcomes, err := p.execute(ctx, job)
	if err != nil {
		job.Fail(&core.BackendError{Cause: err})
		return
	}
	job.Outcomes = outcomes

	hist, err := Aggregate(outcomes, job.Slots)
	if err != nil {
		job.Fail(&core.BackendError{Cause: err})
		return
	}
	job.Histogram = hist
	if err := job.Advance(core.JobCompleted); err != nil {
		job.Fail(err)
	}
}

// execute is the pipeline's only suspension point; everything else is pure
// in-memory computation.
func (p *Pipeline) execute(ctx context.Context, job *core.Job) ([]core.ShotOutcome, error) {
	if p.sem != nil {
		if err := p.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer p.sem.Release(1)
	}
	return p.backend.Execute(ctx, job.Commands, job.Shots)
}

func (p *Pipeline) record(job *core.Job) {
	if p.store == nil {
		return
	}
	if err := p.store.RecordJob(job); err != nil {
		p.logger.Warn("failed to record job in state store", "job_id", job.ID, "error", err)
	}
}
