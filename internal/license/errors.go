package license

import "errors"

// Custom entitlement errors
var (
	// ErrKeyRequired indicates an empty activation or license key
	ErrKeyRequired = errors.New("key is required")

	// ErrKeyRejected indicates the validator declared the key invalid
	ErrKeyRejected = errors.New("key rejected by validator")

	// ErrValidatorUnreachable indicates a network-level failure reaching the validator
	ErrValidatorUnreachable = errors.New("validator unreachable")

	// ErrNotActivated indicates no valid activation record exists
	ErrNotActivated = errors.New("no valid activation")
)

// IsKeyRejected checks if the error is a key rejection
func IsKeyRejected(err error) bool {
	return errors.Is(err, ErrKeyRejected)
}

// IsNotActivated checks if the error is a missing activation error
func IsNotActivated(err error) bool {
	return errors.Is(err, ErrNotActivated)
}
