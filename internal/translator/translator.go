// Package translator rewrites a mapped program into the backend command
// sequence, resolving calibration parameters and allocating classical
// result slots. Command order is the execution order contract the backend
// must honor.
package translator

import (
	"fmt"
	"log/slog"

	"github.com/qbridge-labs/qbridge/internal/device"
	"github.com/qbridge-labs/qbridge/pkg/core"
)

// Translator translates programs against one device snapshot. Safe for
// concurrent use; it holds only read-only state.
type Translator struct {
	calibration *device.CalibrationStore
	logger      *slog.Logger
}

// New creates a translator over the given calibration store.
func New(calibration *device.CalibrationStore, logger *slog.Logger) *Translator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Translator{calibration: calibration, logger: logger}
}

// Result is the output of a successful translation.
type Result struct {
	Commands []core.TranslatedCommand

	// Slots maps each measured classical bit index to its result slot.
	Slots map[int]int
}

// Translate produces the ordered command list and the classical-bit
// allocation table for a program under the given mapping. barrier and delay
// operations are timing hints with no backend command.
func (t *Translator) Translate(program core.Program, mapping map[int]int) (*Result, error) {
	res := &Result{Slots: make(map[int]int)}
	nextSlot := 0

	for i, op := range program {
		if !op.Gate.Supported() {
			return nil, &core.ProgramError{Reason: fmt.Sprintf("operation %d: unsupported gate %q", i, op.Gate)}
		}
		if op.Gate == core.GateBarrier || op.Gate == core.GateDelay {
			continue
		}
		if err := checkParams(op, i); err != nil {
			return nil, err
		}

		physical, err := t.resolve(op, mapping)
		if err != nil {
			return nil, err
		}

		switch op.Gate {
		case core.GateMeasure:
			if _, taken := res.Slots[op.Bit]; taken {
				return nil, &core.BitReuseError{Bit: op.Bit}
			}
			entry, err := t.calibration.For(core.GateMeasure, physical[0])
			if err != nil {
				return nil, err
			}
			res.Slots[op.Bit] = nextSlot
			res.Commands = append(res.Commands, core.TranslatedCommand{
				Kind:        core.GateMeasure,
				Qubits:      physical,
				Calibration: entry.Params,
				Slot:        nextSlot,
			})
			nextSlot++

		default:
			entry, err := t.calibration.For(op.Gate, physical...)
			if err != nil {
				return nil, err
			}
			res.Commands = append(res.Commands, core.TranslatedCommand{
				Kind:        op.Gate,
				Qubits:      physical,
				Params:      op.Params,
				Calibration: entry.Params,
			})
		}
	}

	t.logger.Debug("program translated", "operations", len(program), "commands", len(res.Commands), "slots", len(res.Slots))
	return res, nil
}

// checkParams validates gate parameter arity. rz takes exactly one angle;
// every other translatable gate takes none. A mismatch must surface as an
// invalid program here, not as an execution failure inside the backend.
func checkParams(op core.Operation, i int) error {
	want := 0
	if op.Gate == core.GateRZ {
		want = 1
	}
	if len(op.Params) != want {
		return &core.ProgramError{Reason: fmt.Sprintf("operation %d: %s takes %d parameters, got %d", i, op.Gate, want, len(op.Params))}
	}
	return nil
}

// resolve maps an operation's virtual operands to physical qubits. The
// mapper guarantees coverage, so a miss here is a pipeline bug; it is still
// checked rather than trusted.
func (t *Translator) resolve(op core.Operation, mapping map[int]int) ([]int, error) {
	if len(op.Qubits) == 0 {
		return nil, &core.ProgramError{Reason: fmt.Sprintf("%s operation has no operands", op.Gate)}
	}
	physical := make([]int, len(op.Qubits))
	for i, v := range op.Qubits {
		p, ok := mapping[v]
		if !ok {
			return nil, &core.ProgramError{Reason: fmt.Sprintf("virtual qubit %d is not mapped", v)}
		}
		physical[i] = p
	}
	return physical, nil
}
