// Package backend defines the execution capability contract for the device
// gateway. A backend accepts a translated command sequence and a shot count
// and returns one outcome per shot; adding a control-software variant means
// registering a new backend, not touching the translator.
package backend

import (
	"context"

	"github.com/qbridge-labs/qbridge/pkg/core"
)

// Backend is the seam between the compilation pipeline and the control
// software executing commands on a simulator or hardware controller.
type Backend interface {
	// Name returns the backend identifier used in configuration.
	Name() string

	// Simulator reports whether the backend is a simulator rather than a
	// hardware controller.
	Simulator() bool

	// Execute runs the command sequence for the given number of shots and
	// returns exactly one outcome per shot, each covering every allocated
	// result slot. Partial results are not valid: a backend that cannot
	// complete all shots must return an error instead.
	Execute(ctx context.Context, commands []core.TranslatedCommand, shots int) ([]core.ShotOutcome, error)
}

// Config carries backend construction parameters from process
// configuration. Fields are interpreted per backend.
type Config struct {
	// Name selects the registered backend.
	Name string

	// Seed is the base entropy for simulator sampling. Each job derives an
	// independent stream from it.
	Seed uint64

	// Command is the external command template for controller backends.
	Command string

	// TimeoutSeconds bounds one external execution; zero means no limit.
	TimeoutSeconds int
}
