// Package mapper assigns the virtual qubits of a program to physical qubits
// on the device, validating connectivity for two-qubit operations.
//
// The assignment policy is deliberately simple and deterministic: explicit
// caller-supplied entries win, every remaining virtual qubit keeps its own
// index as the physical qubit when that qubit exists and is free, and only
// virtual qubits without such an identity slot get the lowest-indexed unused
// physical qubit, in order of first appearance. No search or cost
// optimization is attempted; mapping only has to be valid.
package mapper

import (
	"fmt"
	"log/slog"

	"github.com/qbridge-labs/qbridge/internal/device"
	"github.com/qbridge-labs/qbridge/pkg/core"
)

// Mapper builds virtual-to-physical qubit mappings against one device
// snapshot. Safe for concurrent use; it holds only read-only state.
type Mapper struct {
	topology  *device.Topology
	maxQubits int
	logger    *slog.Logger
}

// New creates a mapper for the given topology and device qubit limit.
func New(topology *device.Topology, maxQubits int, logger *slog.Logger) *Mapper {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Mapper{topology: topology, maxQubits: maxQubits, logger: logger}
}

// Map produces an injective mapping covering exactly the virtual qubits the
// program references, or fails. The explicit table takes precedence for any
// virtual qubit it covers; entries for virtual qubits the program never
// references are ignored.
func (m *Mapper) Map(program core.Program, explicit map[int]int) (map[int]int, error) {
	virtuals := program.VirtualQubits()

	if len(virtuals) > m.maxQubits {
		return nil, &core.CapacityError{Resource: "qubits", Requested: len(virtuals), Limit: m.maxQubits}
	}
	if len(virtuals) > m.topology.NumQubits() {
		return nil, &core.CapacityError{Resource: "qubits", Requested: len(virtuals), Limit: m.topology.NumQubits()}
	}

	mapping := make(map[int]int, len(virtuals))
	used := make(map[int]bool, len(virtuals))

	// Explicit entries first: validate existence and injectivity.
	for _, v := range virtuals {
		p, ok := explicit[v]
		if !ok {
			continue
		}
		if !m.topology.HasQubit(p) {
			return nil, &core.ProgramError{Reason: fmt.Sprintf("mapping assigns virtual qubit %d to unknown physical qubit %d", v, p)}
		}
		if used[p] {
			return nil, &core.ProgramError{Reason: fmt.Sprintf("mapping assigns physical qubit %d to more than one virtual qubit", p)}
		}
		mapping[v] = p
		used[p] = true
	}

	// Remaining virtual qubits keep their own index when that physical
	// qubit exists and is unused; identity claims happen before fallback so
	// a compacted qubit can never steal another qubit's identity slot.
	for _, v := range virtuals {
		if _, ok := mapping[v]; ok {
			continue
		}
		if m.topology.HasQubit(v) && !used[v] {
			mapping[v] = v
			used[v] = true
		}
	}

	// Whatever is left falls back to the lowest-indexed unused physical
	// qubit, in first-appearance order.
	free := m.topology.PhysicalQubits()
	next := 0
	for _, v := range virtuals {
		if _, ok := mapping[v]; ok {
			continue
		}
		for next < len(free) && used[free[next]] {
			next++
		}
		if next >= len(free) {
			return nil, &core.CapacityError{Resource: "qubits", Requested: len(virtuals), Limit: len(free)}
		}
		mapping[v] = free[next]
		used[free[next]] = true
		next++
	}

	// Every two-qubit operation must land on a hardware coupling.
	for _, op := range program {
		if !op.Gate.IsTwoQubit() {
			continue
		}
		if len(op.Qubits) != 2 {
			return nil, &core.ProgramError{Reason: fmt.Sprintf("%s operation has %d operands, want 2", op.Gate, len(op.Qubits))}
		}
		a, b := op.Qubits[0], op.Qubits[1]
		pa, pb := mapping[a], mapping[b]
		if !m.topology.IsCoupled(pa, pb) {
			return nil, &core.CouplingError{A: a, B: b, PhysicalA: pa, PhysicalB: pb}
		}
	}

	m.logger.Debug("qubit mapping built", "virtual_qubits", len(virtuals), "mapping", mapping)
	return mapping, nil
}
