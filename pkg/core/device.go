package core

// DeviceStatus is the tri-state availability flag read at job admission.
type DeviceStatus string

// Device status values. Only an active device admits new jobs.
const (
	StatusActive      DeviceStatus = "active"
	StatusInactive    DeviceStatus = "inactive"
	StatusMaintenance DeviceStatus = "maintenance"
)

// Valid reports whether s is one of the recognized status values.
func (s DeviceStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusMaintenance:
		return true
	}
	return false
}

// DeviceInfo is the immutable identity and capacity of a device, plus its
// current status as observed when the info was assembled.
type DeviceInfo struct {
	DeviceID     string       `json:"device_id"`
	ProviderID   string       `json:"provider_id"`
	Type         string       `json:"type"` // "simulator" or "QPU"
	MaxQubits    int          `json:"max_qubits"`
	MaxShots     int          `json:"max_shots"`
	Status       DeviceStatus `json:"status"`
	CalibratedAt string       `json:"calibrated_at,omitempty"`
}
