package types

import "time"

// HealthState is the tri-state outcome of a component health probe.
type HealthState string

const (
	HealthStateHealthy   HealthState = "healthy"
	HealthStateDegraded  HealthState = "degraded"
	HealthStateUnhealthy HealthState = "unhealthy"
)

// String returns the string representation of HealthState.
func (s HealthState) String() string {
	return string(s)
}

// HealthStatus is one component's probe result: its state, an optional
// human-readable message, and when the probe ran.
type HealthStatus struct {
	State     HealthState `json:"state"`
	Message   string      `json:"message,omitempty"`
	CheckedAt time.Time   `json:"checked_at"`
}

func newStatus(state HealthState, message string) HealthStatus {
	return HealthStatus{
		State:     state,
		Message:   message,
		CheckedAt: time.Now(),
	}
}

// Healthy reports a fully operational component.
func Healthy(message string) HealthStatus {
	return newStatus(HealthStateHealthy, message)
}

// Degraded reports a component that is operational but impaired, such as a
// registry where only some providers answer their probes.
func Degraded(message string) HealthStatus {
	return newStatus(HealthStateDegraded, message)
}

// Unhealthy reports a component that cannot serve requests.
func Unhealthy(message string) HealthStatus {
	return newStatus(HealthStateUnhealthy, message)
}

// IsHealthy reports whether the state is healthy.
func (h HealthStatus) IsHealthy() bool {
	return h.State == HealthStateHealthy
}

// IsDegraded reports whether the state is degraded.
func (h HealthStatus) IsDegraded() bool {
	return h.State == HealthStateDegraded
}

// IsUnhealthy reports whether the state is unhealthy.
func (h HealthStatus) IsUnhealthy() bool {
	return h.State == HealthStateUnhealthy
}
