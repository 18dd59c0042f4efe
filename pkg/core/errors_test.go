package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"admission", &AdmissionError{Status: StatusMaintenance}, ErrAdmissionRejected},
		{"capacity", &CapacityError{Resource: "shots", Requested: 10, Limit: 5}, ErrCapacityExceeded},
		{"coupling", &CouplingError{A: 0, B: 2, PhysicalA: 0, PhysicalB: 2}, ErrUnsupportedCoupling},
		{"calibration", &CalibrationError{Gate: GateCX, Qubits: []int{0, 3}}, ErrUncalibratedGate},
		{"bit reuse", &BitReuseError{Bit: 1}, ErrDuplicateBitAssignment},
		{"backend", &BackendError{Cause: errors.New("boom")}, ErrBackendExecution},
		{"program", &ProgramError{Reason: "empty"}, ErrInvalidProgram},
		{"unclassified", errors.New("boom"), ErrBackendExecution},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestBackendErrorUnwrap(t *testing.T) {
	cause := errors.New("subprocess exited 1")
	err := &BackendError{Cause: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "subprocess exited 1")
}

func TestCouplingError_NamesVirtualQubits(t *testing.T) {
	err := &CouplingError{A: 0, B: 2, PhysicalA: 4, PhysicalB: 7}

	// The message must speak in the caller's terms, virtual indices first.
	assert.Contains(t, err.Error(), "(0, 2)")
	assert.Contains(t, err.Error(), "(4, 7)")
}
