package device

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/qbridge-labs/qbridge/pkg/core"
)

// Document mirrors the on-disk device topology JSON. It carries both the
// coupling graph and the calibration parameters measured for each qubit and
// coupling, as produced by the calibration tooling.
type Document struct {
	Name         string         `json:"name"`
	DeviceID     string         `json:"device_id"`
	Qubits       []QubitInfo    `json:"qubits"`
	Couplings    []CouplingInfo `json:"couplings"`
	CalibratedAt string         `json:"calibrated_at"`
}

// QubitInfo is one qubit record in the topology document.
type QubitInfo struct {
	ID         int     `json:"id"`
	PhysicalID int     `json:"physical_id"`
	Fidelity   float64 `json:"fidelity"`
	MeasError  struct {
		ProbMeas1Prep0 float64 `json:"prob_meas1_prep0"`
		ProbMeas0Prep1 float64 `json:"prob_meas0_prep1"`
	} `json:"meas_error"`
	QubitLifetime struct {
		T1 float64 `json:"t1"`
		T2 float64 `json:"t2"`
	} `json:"qubit_lifetime"`
	GateDuration map[string]float64 `json:"gate_duration"`
}

// CouplingInfo is one coupling record in the topology document.
type CouplingInfo struct {
	Control      int                `json:"control"`
	Target       int                `json:"target"`
	Fidelity     float64            `json:"fidelity"`
	GateDuration map[string]float64 `json:"gate_duration"`
}

// Snapshot is the immutable device model built from one topology document.
// It is shared by all concurrent jobs and replaced wholesale when a new
// configuration is loaded; readers never observe a partial update.
type Snapshot struct {
	DeviceID     string
	ProviderID   string
	MaxQubits    int
	MaxShots     int
	CalibratedAt string

	Topology    *Topology
	Calibration *CalibrationStore
}

// Limits carries the configured identity and capacity applied on top of the
// topology document.
type Limits struct {
	ProviderID string
	MaxQubits  int
	MaxShots   int
}

// Load reads a topology document from path and builds a snapshot.
func Load(path string, limits Limits) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read device topology: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse device topology %s: %w", path, err)
	}
	return FromDocument(&doc, limits)
}

// FromDocument builds a snapshot from an already-parsed topology document.
// Every qubit must carry calibration for the full single-qubit gate set and
// measurement, and every coupling for cx; a gap here would otherwise surface
// mid-job as an uncalibrated gate, so it fails the load instead.
func FromDocument(doc *Document, limits Limits) (*Snapshot, error) {
	if len(doc.Qubits) == 0 {
		return nil, fmt.Errorf("device topology declares no qubits")
	}
	if limits.MaxQubits > 0 && len(doc.Qubits) > limits.MaxQubits {
		return nil, fmt.Errorf("device topology declares %d qubits, configured limit is %d", len(doc.Qubits), limits.MaxQubits)
	}

	qubits := make([]int, 0, len(doc.Qubits))
	for _, q := range doc.Qubits {
		qubits = append(qubits, q.ID)
	}
	couplings := make([][2]int, 0, len(doc.Couplings))
	for _, c := range doc.Couplings {
		couplings = append(couplings, [2]int{c.Control, c.Target})
	}
	topo, err := NewTopology(qubits, couplings)
	if err != nil {
		return nil, fmt.Errorf("invalid device topology: %w", err)
	}

	cal := NewCalibrationStore()
	for _, q := range doc.Qubits {
		for _, gate := range []core.GateKind{core.GateX, core.GateSX, core.GateRZ} {
			duration, ok := q.GateDuration[string(gate)]
			if !ok {
				return nil, fmt.Errorf("qubit %d has no %s gate duration in calibration data", q.ID, gate)
			}
			cal.Put(gate, []int{q.ID}, map[string]float64{
				"fidelity":    q.Fidelity,
				"duration_ns": duration,
				"t1_us":       q.QubitLifetime.T1,
				"t2_us":       q.QubitLifetime.T2,
			})
		}
		cal.Put(core.GateMeasure, []int{q.ID}, map[string]float64{
			"prob_meas1_prep0": q.MeasError.ProbMeas1Prep0,
			"prob_meas0_prep1": q.MeasError.ProbMeas0Prep1,
		})
	}
	for _, c := range doc.Couplings {
		duration := c.GateDuration["rzx90"]
		params := map[string]float64{
			"fidelity":    c.Fidelity,
			"duration_ns": duration,
		}
		// cx calibration is stored per ordered pair; both directions share
		// the measured coupling parameters.
		cal.Put(core.GateCX, []int{c.Control, c.Target}, params)
		cal.Put(core.GateCX, []int{c.Target, c.Control}, params)
	}

	maxQubits := limits.MaxQubits
	if maxQubits == 0 {
		maxQubits = len(doc.Qubits)
	}

	return &Snapshot{
		DeviceID:     doc.DeviceID,
		ProviderID:   limits.ProviderID,
		MaxQubits:    maxQubits,
		MaxShots:     limits.MaxShots,
		CalibratedAt: doc.CalibratedAt,
		Topology:     topo,
		Calibration:  cal,
	}, nil
}

// Info assembles the device-info view exposed to callers. The status and
// device type are observed at call time; everything else is immutable.
func (s *Snapshot) Info(status core.DeviceStatus, simulator bool) core.DeviceInfo {
	deviceType := "QPU"
	if simulator {
		deviceType = "simulator"
	}
	return core.DeviceInfo{
		DeviceID:     s.DeviceID,
		ProviderID:   s.ProviderID,
		Type:         deviceType,
		MaxQubits:    s.MaxQubits,
		MaxShots:     s.MaxShots,
		Status:       status,
		CalibratedAt: s.CalibratedAt,
	}
}
