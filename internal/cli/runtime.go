package cli

import (
	"fmt"

	"github.com/qbridge-labs/qbridge/internal/device"
	"github.com/qbridge-labs/qbridge/internal/pipeline"
	"github.com/qbridge-labs/qbridge/internal/state"
	"github.com/qbridge-labs/qbridge/pkg/backend"

	// Register the built-in backends.
	_ "github.com/qbridge-labs/qbridge/pkg/backends/controller"
	_ "github.com/qbridge-labs/qbridge/pkg/backends/simulator"
)

// runtime bundles the wired gateway components built from configuration.
type runtime struct {
	snapshot *device.Snapshot
	status   *device.StatusCell
	backend  backend.Backend
	store    state.Store
	pipeline *pipeline.Pipeline
}

// buildRuntime assembles the device snapshot, status cell, backend, store
// and pipeline from the loaded config.
func buildRuntime() (*runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	snapshot, err := device.Load(cfg.Device.TopologyPath, device.Limits{
		ProviderID: cfg.Device.Provider,
		MaxQubits:  cfg.Device.MaxQubits,
		MaxShots:   cfg.Device.MaxShots,
	})
	if err != nil {
		return nil, err
	}
	if cfg.Device.ID != "" {
		snapshot.DeviceID = cfg.Device.ID
	}

	initial, err := cfg.InitialStatus()
	if err != nil {
		return nil, err
	}
	// A status file, when configured, is the source of truth at startup.
	if cfg.Device.StatusPath != "" {
		if fileStatus, err := device.ReadStatusFile(cfg.Device.StatusPath); err == nil {
			initial = fileStatus
		} else {
			logger.Warn("using configured initial status", "error", err)
		}
	}
	cell := device.NewStatusCell(initial)

	be, err := backend.New(backend.Config{
		Name:           cfg.Backend.Name,
		Seed:           cfg.Backend.Seed,
		Command:        cfg.Backend.Command,
		TimeoutSeconds: cfg.Backend.TimeoutSeconds,
	}, logger)
	if err != nil {
		return nil, err
	}

	var store state.Store
	if cfg.State.Path != "" {
		st := state.NewSQLiteStore(logger)
		if err := st.Open(cfg.State.Path); err != nil {
			return nil, fmt.Errorf("failed to open job history store: %w", err)
		}
		if err := st.InitSchema(); err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("failed to initialize job history schema: %w", err)
		}
		store = st
	}

	p := pipeline.New(pipeline.Config{
		Snapshot:      snapshot,
		Status:        cell,
		Backend:       be,
		Store:         store,
		MaxConcurrent: cfg.Server.MaxConcurrentJobs,
		Logger:        logger,
	})

	logger.Info("gateway initialized",
		"device_id", snapshot.DeviceID,
		"backend", be.Name(),
		"qubits", snapshot.Topology.NumQubits(),
		"status", cell.Get())

	return &runtime{
		snapshot: snapshot,
		status:   cell,
		backend:  be,
		store:    store,
		pipeline: p,
	}, nil
}

// close releases runtime resources.
func (rt *runtime) close() {
	if rt.store != nil {
		if err := rt.store.Close(); err != nil {
			logger.Warn("failed to close job history store", "error", err)
		}
	}
}
