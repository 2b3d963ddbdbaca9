package broadcast

import (
	"errors"
	"fmt"
)

// Custom broadcast errors
var (
	// ErrEmptyPlaylist indicates activation was attempted with no playlist items
	ErrEmptyPlaylist = errors.New("playlist is empty")

	// ErrNotLive indicates an operation that requires a live broadcast
	ErrNotLive = errors.New("broadcast is not live")

	// ErrOperationInFlight indicates a start/stop call is already running for the session
	ErrOperationInFlight = errors.New("broadcast operation already in flight")

	// ErrInvalidTransition indicates a status change the state machine forbids
	ErrInvalidTransition = errors.New("invalid broadcast status transition")

	// ErrUnsupportedProtocol indicates a transmission protocol outside the allowed set
	ErrUnsupportedProtocol = errors.New("unsupported transmission protocol")

	// ErrInvalidDestination indicates a destination that is neither a URL nor host:port
	ErrInvalidDestination = errors.New("invalid transmission destination")

	// ErrCollaboratorUnreachable indicates a network-level failure reaching the collaborator
	ErrCollaboratorUnreachable = errors.New("broadcast collaborator unreachable")

	// ErrCollaboratorRejected indicates the collaborator answered with an error
	ErrCollaboratorRejected = errors.New("broadcast collaborator rejected the request")
)

// IsEmptyPlaylist checks if the error is an empty playlist error
func IsEmptyPlaylist(err error) bool {
	return errors.Is(err, ErrEmptyPlaylist)
}

// IsUnsupportedProtocol checks if the error is an unsupported protocol error
func IsUnsupportedProtocol(err error) bool {
	return errors.Is(err, ErrUnsupportedProtocol)
}

// IsInvalidDestination checks if the error is an invalid destination error
func IsInvalidDestination(err error) bool {
	return errors.Is(err, ErrInvalidDestination)
}

// IsCollaboratorError checks if the error originated at the collaborator
// boundary, either network-level or an explicit rejection
func IsCollaboratorError(err error) bool {
	return errors.Is(err, ErrCollaboratorUnreachable) || errors.Is(err, ErrCollaboratorRejected)
}

// rejectionError wraps the collaborator's own message so it can be
// surfaced verbatim to the operator
func rejectionError(statusCode int, message string) error {
	return fmt.Errorf("%w: %d %s", ErrCollaboratorRejected, statusCode, message)
}
