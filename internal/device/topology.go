// Package device holds the read-only device model shared by all concurrent
// jobs: topology, calibration, identity and limits, and the mutable status
// cell. Everything except the status cell is loaded once per configuration
// and never mutated; status changes install a new value rather than writing
// in place.
package device

import (
	"fmt"
	"sort"

	"github.com/qbridge-labs/qbridge/pkg/core"
)

// Topology is the fixed graph of physical qubits and allowed two-qubit
// couplings for a device. Couplings are undirected.
type Topology struct {
	qubits    map[int]bool
	couplings map[[2]int]bool
}

// NewTopology builds a topology from qubit ids and coupling pairs. Every
// coupling endpoint must be a declared qubit.
func NewTopology(qubits []int, couplings [][2]int) (*Topology, error) {
	t := &Topology{
		qubits:    make(map[int]bool, len(qubits)),
		couplings: make(map[[2]int]bool, len(couplings)),
	}
	for _, q := range qubits {
		t.qubits[q] = true
	}
	for _, c := range couplings {
		if !t.qubits[c[0]] || !t.qubits[c[1]] {
			return nil, fmt.Errorf("coupling (%d, %d) references an undeclared qubit", c[0], c[1])
		}
		t.couplings[normalize(c[0], c[1])] = true
	}
	return t, nil
}

func normalize(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// PhysicalQubits returns the physical qubit ids in ascending order.
func (t *Topology) PhysicalQubits() []int {
	ids := make([]int, 0, len(t.qubits))
	for q := range t.qubits {
		ids = append(ids, q)
	}
	sort.Ints(ids)
	return ids
}

// NumQubits returns the number of physical qubits.
func (t *Topology) NumQubits() int { return len(t.qubits) }

// HasQubit reports whether q is a physical qubit of the device.
func (t *Topology) HasQubit(q int) bool { return t.qubits[q] }

// IsCoupled reports whether a two-qubit operation between a and b is
// supported by the hardware. Symmetric.
func (t *Topology) IsCoupled(a, b int) bool {
	return t.couplings[normalize(a, b)]
}

// Couplings returns the undirected coupling edges in deterministic order.
func (t *Topology) Couplings() [][2]int {
	edges := make([][2]int, 0, len(t.couplings))
	for c := range t.couplings {
		edges = append(edges, c)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i][0] != edges[j][0] {
			return edges[i][0] < edges[j][0]
		}
		return edges[i][1] < edges[j][1]
	})
	return edges
}

// CalibrationEntry holds the tuned parameters for one gate on specific
// physical qubit(s). The payload is opaque to the pipeline and passed
// through to the backend.
type CalibrationEntry struct {
	Gate   core.GateKind
	Qubits []int
	Params map[string]float64
}

// CalibrationStore is the per-qubit and per-coupling parameter table
// consumed during translation. Read-only after load.
type CalibrationStore struct {
	entries map[string]CalibrationEntry
}

// NewCalibrationStore creates an empty store.
func NewCalibrationStore() *CalibrationStore {
	return &CalibrationStore{entries: make(map[string]CalibrationEntry)}
}

func calKey(gate core.GateKind, qubits []int) string {
	key := string(gate)
	for _, q := range qubits {
		key = fmt.Sprintf("%s:%d", key, q)
	}
	return key
}

// Put adds an entry. Only used at load time.
func (s *CalibrationStore) Put(gate core.GateKind, qubits []int, params map[string]float64) {
	s.entries[calKey(gate, qubits)] = CalibrationEntry{Gate: gate, Qubits: qubits, Params: params}
}

// For looks up the calibration entry for a gate on the given physical
// qubits. A missing entry is a translation error, never a silent default:
// an uncalibrated qubit must not be scheduled.
func (s *CalibrationStore) For(gate core.GateKind, qubits ...int) (CalibrationEntry, error) {
	e, ok := s.entries[calKey(gate, qubits)]
	if !ok {
		return CalibrationEntry{}, &core.CalibrationError{Gate: gate, Qubits: qubits}
	}
	return e, nil
}

// Has reports whether an entry exists for the gate on the given qubits.
func (s *CalibrationStore) Has(gate core.GateKind, qubits ...int) bool {
	_, ok := s.entries[calKey(gate, qubits)]
	return ok
}

// Len returns the number of entries.
func (s *CalibrationStore) Len() int { return len(s.entries) }
