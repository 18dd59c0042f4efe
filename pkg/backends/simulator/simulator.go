// Package simulator provides the built-in state-vector simulator backend.
// It executes the device gate set (x, sx, rz, cx) exactly and samples
// measurement outcomes from the final state, one draw per shot.
package simulator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"sync/atomic"
	"time"

	"github.com/qbridge-labs/qbridge/pkg/backend"
	"github.com/qbridge-labs/qbridge/pkg/core"
)

// BackendName is the registry name of the simulator backend.
const BackendName = "simulator"

// maxSimQubits bounds the state vector; beyond this the dense representation
// needs gigabytes of memory per job.
const maxSimQubits = 25

func init() {
	backend.Register(BackendName, func(cfg backend.Config, logger *slog.Logger) (backend.Backend, error) {
		return New(cfg.Seed, logger), nil
	})
}

// Simulator is a state-vector simulator backend. Safe for concurrent use:
// each Execute call derives its own random stream, so concurrent jobs share
// no mutable sampling state.
type Simulator struct {
	seed   uint64
	jobSeq atomic.Uint64
	logger *slog.Logger
}

// New creates a simulator. A zero seed selects time-based entropy.
func New(seed uint64, logger *slog.Logger) *Simulator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Simulator{seed: seed, logger: logger}
}

// Name returns the registry name.
func (s *Simulator) Name() string { return BackendName }

// Simulator reports true.
func (s *Simulator) Simulator() bool { return true }

// Execute runs the command sequence and returns exactly shots outcomes.
func (s *Simulator) Execute(ctx context.Context, commands []core.TranslatedCommand, shots int) ([]core.ShotOutcome, error) {
	if shots <= 0 {
		return nil, fmt.Errorf("shots must be positive, got %d", shots)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	index, err := qubitIndex(commands)
	if err != nil {
		return nil, err
	}
	n := len(index)
	if n > maxSimQubits {
		return nil, fmt.Errorf("circuit touches %d qubits, simulator limit is %d", n, maxSimQubits)
	}

	sv := newStatevector(n)
	var measures []core.TranslatedCommand
	for _, cmd := range commands {
		switch cmd.Kind {
		case core.GateX:
			sv.applyX(index[cmd.Qubits[0]])
		case core.GateSX:
			sv.applySX(index[cmd.Qubits[0]])
		case core.GateRZ:
			if len(cmd.Params) != 1 {
				return nil, fmt.Errorf("rz command has %d params, want 1", len(cmd.Params))
			}
			sv.applyRZ(index[cmd.Qubits[0]], cmd.Params[0])
		case core.GateCX:
			sv.applyCX(index[cmd.Qubits[0]], index[cmd.Qubits[1]])
		case core.GateMeasure:
			measures = append(measures, cmd)
		default:
			return nil, fmt.Errorf("simulator cannot execute command kind %q", cmd.Kind)
		}
	}

	// Independent stream per job: base seed plus a process-unique sequence.
	seq := s.jobSeq.Add(1)
	rng := rand.New(rand.NewPCG(s.seed, seq))

	s.logger.Debug("sampling circuit", "qubits", n, "commands", len(commands), "shots", shots, "norm", sv.norm())

	outcomes := make([]core.ShotOutcome, shots)
	for i := 0; i < shots; i++ {
		basis := sv.sample(rng)
		outcome := make(core.ShotOutcome, len(measures))
		for _, m := range measures {
			outcome[m.Slot] = uint8(basis >> index[m.Qubits[0]] & 1)
		}
		outcomes[i] = outcome
	}
	return outcomes, nil
}

// qubitIndex maps the physical qubit ids referenced by the command list to
// dense local indices, smallest id first.
func qubitIndex(commands []core.TranslatedCommand) (map[int]int, error) {
	seen := make(map[int]bool)
	for _, cmd := range commands {
		if len(cmd.Qubits) == 0 {
			return nil, fmt.Errorf("%s command references no qubits", cmd.Kind)
		}
		for _, q := range cmd.Qubits {
			seen[q] = true
		}
	}
	ids := make([]int, 0, len(seen))
	for q := range seen {
		ids = append(ids, q)
	}
	sort.Ints(ids)
	index := make(map[int]int, len(ids))
	for i, q := range ids {
		index[q] = i
	}
	return index, nil
}
