// Package core defines the shared contract types for the QBridge device
// gateway: virtual programs, translated command sequences, job lifecycle
// state, device information, and the error taxonomy reported to callers.
package core

// GateKind identifies an operation in the device's instruction set.
type GateKind string

// Supported instruction kinds. The gate set matches what the device can
// execute natively; everything else must be decomposed by the caller.
const (
	GateX       GateKind = "x"
	GateSX      GateKind = "sx"
	GateRZ      GateKind = "rz"
	GateCX      GateKind = "cx"
	GateMeasure GateKind = "measure"
	GateBarrier GateKind = "barrier"
	GateDelay   GateKind = "delay"
)

// IsTwoQubit reports whether the gate operates on a qubit pair.
func (g GateKind) IsTwoQubit() bool {
	return g == GateCX
}

// Supported reports whether the gate kind is part of the device gate set.
func (g GateKind) Supported() bool {
	switch g {
	case GateX, GateSX, GateRZ, GateCX, GateMeasure, GateBarrier, GateDelay:
		return true
	}
	return false
}

// Operation is a single instruction over virtual qubit indices.
// Single-qubit gates use Qubits[0]; two-qubit gates use Qubits[0] (control)
// and Qubits[1] (target); measure uses Qubits[0] and Bit as the destination
// classical bit index.
type Operation struct {
	Gate   GateKind  `json:"gate"`
	Qubits []int     `json:"qubits"`
	Params []float64 `json:"params,omitempty"`
	Bit    int       `json:"bit,omitempty"`
}

// Program is an ordered sequence of operations over virtual qubits,
// as produced by the parser collaborator. It is immutable once handed
// to the pipeline.
type Program []Operation

// VirtualQubits returns the distinct virtual qubit indices referenced by the
// program, in order of first appearance.
func (p Program) VirtualQubits() []int {
	seen := make(map[int]bool)
	var order []int
	for _, op := range p {
		for _, q := range op.Qubits {
			if !seen[q] {
				seen[q] = true
				order = append(order, q)
			}
		}
	}
	return order
}

// BitCount returns the number of classical bits the program addresses,
// i.e. the highest measure destination index plus one. Zero if the program
// contains no measurements.
func (p Program) BitCount() int {
	count := 0
	for _, op := range p {
		if op.Gate == GateMeasure && op.Bit+1 > count {
			count = op.Bit + 1
		}
	}
	return count
}

// Measurements returns the measure operations in program order.
func (p Program) Measurements() []Operation {
	var ms []Operation
	for _, op := range p {
		if op.Gate == GateMeasure {
			ms = append(ms, op)
		}
	}
	return ms
}
