package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qbridge-labs/qbridge/pkg/core"
)

func TestAggregate(t *testing.T) {
	slots := map[int]int{0: 0, 1: 1}
	outcomes := []core.ShotOutcome{
		{0: 0, 1: 0},
		{0: 1, 1: 1},
		{0: 1, 1: 1},
		{0: 1, 1: 0},
	}

	hist, err := Aggregate(outcomes, slots)
	require.NoError(t, err)

	// Bit 0 is the rightmost character.
	assert.Equal(t, core.Histogram{
		"00": 1,
		"11": 2,
		"01": 1,
	}, hist)
}

func TestAggregate_BitZeroRightmost(t *testing.T) {
	// Single measurement into bit 0, outcome 1: the key is "1", and with a
	// second bit assigned the same shot reads "01" with bit 1 leftmost.
	hist, err := Aggregate([]core.ShotOutcome{{0: 1, 1: 0}}, map[int]int{0: 0, 1: 1})
	require.NoError(t, err)
	assert.Equal(t, core.Histogram{"01": 1}, hist)
}

func TestAggregate_PadsUnassignedBits(t *testing.T) {
	// Only bit 2 is measured; bits 0 and 1 pad with '0'.
	hist, err := Aggregate([]core.ShotOutcome{{0: 1}}, map[int]int{2: 0})
	require.NoError(t, err)
	assert.Equal(t, core.Histogram{"100": 1}, hist)
}

func TestAggregate_OmitsZeroCounts(t *testing.T) {
	outcomes := []core.ShotOutcome{{0: 0}, {0: 0}}
	hist, err := Aggregate(outcomes, map[int]int{0: 0})
	require.NoError(t, err)

	assert.Equal(t, core.Histogram{"0": 2}, hist)
	_, present := hist["1"]
	assert.False(t, present, "unobserved outcomes must not appear")
}

func TestAggregate_CountsSumToShots(t *testing.T) {
	outcomes := make([]core.ShotOutcome, 100)
	for i := range outcomes {
		outcomes[i] = core.ShotOutcome{0: uint8(i % 2)}
	}

	hist, err := Aggregate(outcomes, map[int]int{0: 0})
	require.NoError(t, err)

	var total uint64
	for _, c := range hist {
		total += c
	}
	assert.Equal(t, uint64(100), total)
}

func TestAggregate_MissingSlot(t *testing.T) {
	_, err := Aggregate([]core.ShotOutcome{{0: 1}}, map[int]int{0: 0, 1: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing result slot")
}

func TestAggregate_NoMeasurements(t *testing.T) {
	hist, err := Aggregate([]core.ShotOutcome{{}, {}}, map[int]int{})
	require.NoError(t, err)

	// Every shot collapses to the empty bitstring.
	assert.Equal(t, core.Histogram{"": 2}, hist)
}
