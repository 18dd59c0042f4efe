package pipeline

import (
	"fmt"

	"github.com/qbridge-labs/qbridge/pkg/core"
)

// Aggregate reduces per-shot outcomes into a histogram keyed by classical
// bit-string. Bit-strings put classical bit 0 in the rightmost position and
// the highest assigned bit index leftmost; classical bits below the highest
// assigned index that no measurement wrote are padded with '0'. Zero-count
// keys never appear. Deterministic: no randomness is introduced here.
func Aggregate(outcomes []core.ShotOutcome, slots map[int]int) (core.Histogram, error) {
	width := 0
	for bit := range slots {
		if bit+1 > width {
			width = bit + 1
		}
	}

	hist := make(core.Histogram)
	buf := make([]byte, width)
	for i, outcome := range outcomes {
		for j := range buf {
			buf[j] = '0'
		}
		for bit, slot := range slots {
			v, ok := outcome[slot]
			if !ok {
				return nil, fmt.Errorf("shot %d is missing result slot %d", i, slot)
			}
			// bit 0 is rightmost
			buf[width-1-bit] = '0' + v
		}
		hist[string(buf)]++
	}
	return hist, nil
}
