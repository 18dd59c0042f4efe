package core

import "fmt"

// ErrorKind classifies a terminal job failure. Kinds are caller-visible and
// never collapsed into a generic error.
type ErrorKind string

// Failure kinds reported to callers.
const (
	ErrAdmissionRejected      ErrorKind = "admission_rejected"
	ErrCapacityExceeded       ErrorKind = "capacity_exceeded"
	ErrUnsupportedCoupling    ErrorKind = "unsupported_coupling"
	ErrUncalibratedGate       ErrorKind = "uncalibrated_gate"
	ErrDuplicateBitAssignment ErrorKind = "duplicate_bit_assignment"
	ErrBackendExecution       ErrorKind = "backend_execution_failure"
	ErrInvalidProgram         ErrorKind = "invalid_program"
)

// KindedError is implemented by all pipeline errors so callers can recover
// the failure kind without matching on concrete types.
type KindedError interface {
	error
	Kind() ErrorKind
}

// KindOf returns the error kind for err, or ErrBackendExecution if err does
// not carry one (an unclassified failure can only come from the backend seam).
func KindOf(err error) ErrorKind {
	if ke, ok := err.(KindedError); ok {
		return ke.Kind()
	}
	return ErrBackendExecution
}

// AdmissionError rejects a job submitted while the device is not active.
type AdmissionError struct {
	Status DeviceStatus
}

func (e *AdmissionError) Error() string {
	return fmt.Sprintf("job rejected: device is %s", e.Status)
}

// Kind returns ErrAdmissionRejected.
func (e *AdmissionError) Kind() ErrorKind { return ErrAdmissionRejected }

// CapacityError rejects a job that exceeds a device limit.
type CapacityError struct {
	Resource  string // "qubits" or "shots"
	Requested int
	Limit     int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("capacity exceeded: %d %s requested, device limit is %d", e.Requested, e.Resource, e.Limit)
}

// Kind returns ErrCapacityExceeded.
func (e *CapacityError) Kind() ErrorKind { return ErrCapacityExceeded }

// CouplingError reports a two-qubit operation whose operands resolve to
// physical qubits with no coupling between them. A and B are the virtual
// qubit indices as written in the program.
type CouplingError struct {
	A, B                 int
	PhysicalA, PhysicalB int
}

func (e *CouplingError) Error() string {
	return fmt.Sprintf("unsupported coupling: virtual qubits (%d, %d) map to physical (%d, %d) which are not connected",
		e.A, e.B, e.PhysicalA, e.PhysicalB)
}

// Kind returns ErrUnsupportedCoupling.
func (e *CouplingError) Kind() ErrorKind { return ErrUnsupportedCoupling }

// CalibrationError reports a gate with no calibration entry for its resolved
// physical qubits.
type CalibrationError struct {
	Gate   GateKind
	Qubits []int
}

func (e *CalibrationError) Error() string {
	return fmt.Sprintf("uncalibrated gate: no calibration entry for %s on physical qubits %v", e.Gate, e.Qubits)
}

// Kind returns ErrUncalibratedGate.
func (e *CalibrationError) Kind() ErrorKind { return ErrUncalibratedGate }

// BitReuseError reports a classical bit assigned by more than one
// measurement. Last-write-wins is deliberately not supported; silently
// dropping an earlier measurement loses data.
type BitReuseError struct {
	Bit int
}

func (e *BitReuseError) Error() string {
	return fmt.Sprintf("duplicate bit assignment: classical bit %d is assigned by more than one measurement", e.Bit)
}

// Kind returns ErrDuplicateBitAssignment.
func (e *BitReuseError) Kind() ErrorKind { return ErrDuplicateBitAssignment }

// BackendError wraps a failure from the backend capability.
type BackendError struct {
	Cause error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend execution failed: %v", e.Cause)
}

func (e *BackendError) Unwrap() error { return e.Cause }

// Kind returns ErrBackendExecution.
func (e *BackendError) Kind() ErrorKind { return ErrBackendExecution }

// ProgramError reports a structurally invalid program or request.
type ProgramError struct {
	Reason string
}

func (e *ProgramError) Error() string {
	return fmt.Sprintf("invalid program: %s", e.Reason)
}

// Kind returns ErrInvalidProgram.
func (e *ProgramError) Kind() ErrorKind { return ErrInvalidProgram }
