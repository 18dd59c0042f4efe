package device

import (
	"sync/atomic"

	"github.com/qbridge-labs/qbridge/pkg/core"
)

// StatusCell holds the process-wide device status. Reads are lock-free; the
// single writer path (administrative set or the status file watcher)
// installs a new value rather than mutating in place. Jobs read the cell
// once, at admission.
type StatusCell struct {
	v atomic.Value // core.DeviceStatus
}

// NewStatusCell creates a cell with the given initial status.
func NewStatusCell(initial core.DeviceStatus) *StatusCell {
	c := &StatusCell{}
	c.v.Store(initial)
	return c
}

// Get returns the current status.
func (c *StatusCell) Get() core.DeviceStatus {
	return c.v.Load().(core.DeviceStatus)
}

// Set installs a new status. Idempotent; takes effect for subsequently
// admitted jobs only.
func (c *StatusCell) Set(s core.DeviceStatus) {
	c.v.Store(s)
}

// Admit returns nil if the device accepts new jobs, or an AdmissionError
// carrying the rejecting status.
func (c *StatusCell) Admit() error {
	if s := c.Get(); s != core.StatusActive {
		return &core.AdmissionError{Status: s}
	}
	return nil
}
