package core

// TranslatedCommand is a backend-executable instruction. It references only
// physical qubits; Calibration carries the parameters resolved for those
// qubits and is passed through to the backend opaquely.
type TranslatedCommand struct {
	Kind        GateKind           `json:"kind"`
	Qubits      []int              `json:"qubits"`
	Params      []float64          `json:"params,omitempty"`
	Calibration map[string]float64 `json:"calibration,omitempty"`

	// Slot is the classical result slot for measure commands.
	Slot int `json:"slot,omitempty"`
}

// ShotOutcome maps a classical result slot to its measured 0/1 value for
// one shot.
type ShotOutcome map[int]uint8

// Histogram maps classical bit-strings to occurrence counts. Bit-strings are
// ordered with classical bit 0 as the rightmost character and the highest
// allocated bit index as the most significant (leftmost) bit.
type Histogram map[string]uint64
