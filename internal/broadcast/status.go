// Package broadcast drives the antenna lifecycle: it owns the
// idle/starting/live/stopping/stopped state machine per channel and talks
// to the external FFmpeg orchestration collaborator.
package broadcast

// Status represents the current state of a broadcast session
type Status string

// Broadcast status constants
const (
	StatusIdle     Status = "idle"     // No active broadcast
	StatusStarting Status = "starting" // Start request in flight
	StatusLive     Status = "live"     // Collaborator confirmed the stream
	StatusStopping Status = "stopping" // Stop request in flight
	StatusStopped  Status = "stopped"  // Terminal, reset to idle next
)

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// IsValid checks if the status is a known valid value
func (s Status) IsValid() bool {
	switch s {
	case StatusIdle, StatusStarting, StatusLive, StatusStopping, StatusStopped:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a transition from the current status to
// newStatus is valid. Transitions run strictly forward except the
// terminal stopped -> idle reset and the reverts used when a
// collaborator call fails (starting -> idle, stopping -> live).
func (s Status) CanTransitionTo(newStatus Status) bool {
	switch s {
	case StatusIdle:
		return newStatus == StatusStarting
	case StatusStarting:
		// Success goes live; failure reverts to idle
		return newStatus == StatusLive || newStatus == StatusIdle
	case StatusLive:
		// Stop request, or the collaborator reported a terminal state
		return newStatus == StatusStopping || newStatus == StatusStopped
	case StatusStopping:
		// Success stops; failure reverts to live for operator retry
		return newStatus == StatusStopped || newStatus == StatusLive
	case StatusStopped:
		return newStatus == StatusIdle
	default:
		return false
	}
}
