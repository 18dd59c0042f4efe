package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qbridge-labs/qbridge/internal/device"
	"github.com/qbridge-labs/qbridge/internal/testutil"
	"github.com/qbridge-labs/qbridge/pkg/core"
)

func lineMapper(t *testing.T, numQubits, maxQubits int) *Mapper {
	t.Helper()
	qubits := make([]int, numQubits)
	var couplings [][2]int
	for i := 0; i < numQubits; i++ {
		qubits[i] = i
		if i > 0 {
			couplings = append(couplings, [2]int{i - 1, i})
		}
	}
	topo, err := device.NewTopology(qubits, couplings)
	require.NoError(t, err)
	return New(topo, maxQubits, testutil.NewTestLogger(t))
}

func TestMap_IdentityPreferred(t *testing.T) {
	m := lineMapper(t, 3, 3)
	program := core.Program{
		{Gate: core.GateX, Qubits: []int{2}},
		{Gate: core.GateMeasure, Qubits: []int{2}, Bit: 0},
	}

	mapping, err := m.Map(program, nil)
	require.NoError(t, err)

	// A virtual qubit whose index is a free physical qubit keeps it; it is
	// not compacted down to the lowest free index.
	assert.Equal(t, map[int]int{2: 2}, mapping)
}

func TestMap_AutomaticAssignment(t *testing.T) {
	m := lineMapper(t, 4, 4)
	program := core.Program{
		{Gate: core.GateSX, Qubits: []int{7}},
		{Gate: core.GateX, Qubits: []int{3}},
		{Gate: core.GateMeasure, Qubits: []int{7}, Bit: 0},
	}

	mapping, err := m.Map(program, nil)
	require.NoError(t, err)

	// Qubit 3 keeps its identity slot; the out-of-range qubit 7 falls back
	// to the lowest free physical qubit.
	assert.Equal(t, map[int]int{7: 0, 3: 3}, mapping)
}

func TestMap_IdentityNotStolenByFallback(t *testing.T) {
	m := lineMapper(t, 2, 2)
	program := core.Program{
		{Gate: core.GateX, Qubits: []int{9}},
		{Gate: core.GateX, Qubits: []int{0}},
	}

	mapping, err := m.Map(program, nil)
	require.NoError(t, err)

	// Identity claims resolve before fallback even though qubit 9 appears
	// first, so qubit 0 still lands on physical 0.
	assert.Equal(t, map[int]int{0: 0, 9: 1}, mapping)
}

func TestMap_ExplicitEntriesWin(t *testing.T) {
	m := lineMapper(t, 4, 4)
	program := core.Program{
		{Gate: core.GateX, Qubits: []int{0}},
		{Gate: core.GateX, Qubits: []int{1}},
	}

	mapping, err := m.Map(program, map[int]int{0: 3})
	require.NoError(t, err)

	assert.Equal(t, 3, mapping[0])
	assert.Equal(t, 1, mapping[1], "unpinned qubits keep their identity slot")
}

func TestMap_ExplicitEntryDisplacesIdentity(t *testing.T) {
	m := lineMapper(t, 2, 2)
	program := core.Program{
		{Gate: core.GateX, Qubits: []int{0}},
		{Gate: core.GateX, Qubits: []int{1}},
	}

	mapping, err := m.Map(program, map[int]int{0: 1})
	require.NoError(t, err)

	// Qubit 1's identity slot is pinned away, so it falls back to the
	// lowest free physical qubit.
	assert.Equal(t, map[int]int{0: 1, 1: 0}, mapping)
}

func TestMap_ExplicitUnknownPhysical(t *testing.T) {
	m := lineMapper(t, 2, 2)
	program := core.Program{{Gate: core.GateX, Qubits: []int{0}}}

	_, err := m.Map(program, map[int]int{0: 9})
	require.Error(t, err)
	assert.Equal(t, core.ErrInvalidProgram, core.KindOf(err))
}

func TestMap_ExplicitCollision(t *testing.T) {
	m := lineMapper(t, 3, 3)
	program := core.Program{{Gate: core.GateCX, Qubits: []int{0, 1}}}

	_, err := m.Map(program, map[int]int{0: 1, 1: 1})
	require.Error(t, err)
	assert.Equal(t, core.ErrInvalidProgram, core.KindOf(err))
	assert.Contains(t, err.Error(), "more than one virtual qubit")
}

func TestMap_IgnoresUnreferencedExplicitEntries(t *testing.T) {
	m := lineMapper(t, 2, 2)
	program := core.Program{{Gate: core.GateX, Qubits: []int{0}}}

	mapping, err := m.Map(program, map[int]int{0: 1, 5: 0})
	require.NoError(t, err)
	assert.Equal(t, map[int]int{0: 1}, mapping)
}

func TestMap_CapacityExceeded(t *testing.T) {
	m := lineMapper(t, 2, 2)
	program := core.Program{
		{Gate: core.GateX, Qubits: []int{0}},
		{Gate: core.GateX, Qubits: []int{1}},
		{Gate: core.GateX, Qubits: []int{2}},
	}

	_, err := m.Map(program, nil)
	require.Error(t, err)

	var capErr *core.CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, "qubits", capErr.Resource)
	assert.Equal(t, 3, capErr.Requested)
	assert.Equal(t, 2, capErr.Limit)
}

func TestMap_UnsupportedCoupling(t *testing.T) {
	// Line 0-1-2: qubits 0 and 2 are not directly coupled, and the
	// identity assignment puts cx(q0, q2) on exactly that missing edge.
	m := lineMapper(t, 3, 3)
	program := core.Program{
		{Gate: core.GateCX, Qubits: []int{0, 2}},
	}

	_, err := m.Map(program, nil)
	require.Error(t, err)

	var cplErr *core.CouplingError
	require.ErrorAs(t, err, &cplErr)
	assert.Equal(t, 0, cplErr.A)
	assert.Equal(t, 2, cplErr.B)
	assert.Equal(t, core.ErrUnsupportedCoupling, core.KindOf(err))
}

func TestMap_CouplingDirectionIrrelevant(t *testing.T) {
	m := lineMapper(t, 2, 2)
	program := core.Program{
		{Gate: core.GateCX, Qubits: []int{1, 0}},
	}

	_, err := m.Map(program, nil)
	assert.NoError(t, err, "cx against the coupling's declared direction is still valid")
}

func TestMap_EmptyProgram(t *testing.T) {
	m := lineMapper(t, 2, 2)

	mapping, err := m.Map(core.Program{}, nil)
	require.NoError(t, err)
	assert.Empty(t, mapping)
}
