package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qbridge-labs/qbridge/pkg/core"
)

func lineTopology(t *testing.T) *Topology {
	t.Helper()
	topo, err := NewTopology([]int{0, 1, 2, 3}, [][2]int{{0, 1}, {1, 2}, {2, 3}})
	require.NoError(t, err)
	return topo
}

func TestNewTopology_RejectsUndeclaredEndpoint(t *testing.T) {
	_, err := NewTopology([]int{0, 1}, [][2]int{{0, 5}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undeclared qubit")
}

func TestTopologyIsCoupled_Symmetric(t *testing.T) {
	topo := lineTopology(t)

	assert.True(t, topo.IsCoupled(0, 1))
	assert.True(t, topo.IsCoupled(1, 0), "couplings are undirected")
	assert.False(t, topo.IsCoupled(0, 2))
	assert.False(t, topo.IsCoupled(0, 0))
}

func TestTopologyPhysicalQubits_Sorted(t *testing.T) {
	topo, err := NewTopology([]int{3, 0, 2, 1}, nil)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2, 3}, topo.PhysicalQubits())
	assert.Equal(t, 4, topo.NumQubits())
}

func TestTopologyCouplings_Deterministic(t *testing.T) {
	topo := lineTopology(t)

	edges := topo.Couplings()
	assert.Equal(t, [][2]int{{0, 1}, {1, 2}, {2, 3}}, edges)
}

func TestCalibrationStore_ForMiss(t *testing.T) {
	store := NewCalibrationStore()
	store.Put(core.GateX, []int{0}, map[string]float64{"fidelity": 0.99})

	_, err := store.For(core.GateX, 1)
	require.Error(t, err)

	var calErr *core.CalibrationError
	require.ErrorAs(t, err, &calErr)
	assert.Equal(t, core.GateX, calErr.Gate)
	assert.Equal(t, []int{1}, calErr.Qubits)
	assert.Equal(t, core.ErrUncalibratedGate, core.KindOf(err))
}

func TestCalibrationStore_DirectedPairs(t *testing.T) {
	store := NewCalibrationStore()
	store.Put(core.GateCX, []int{0, 1}, map[string]float64{"fidelity": 0.98})

	entry, err := store.For(core.GateCX, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.98, entry.Params["fidelity"])

	// Pair keys are ordered; the reverse direction is its own entry.
	_, err = store.For(core.GateCX, 1, 0)
	require.Error(t, err)
}
