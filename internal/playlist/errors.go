package playlist

import "errors"

// Custom playlist errors
var (
	// ErrEmptyPlaylist indicates the playlist has no items
	ErrEmptyPlaylist = errors.New("playlist is empty")

	// ErrIndexOutOfRange indicates an index outside [0, length)
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvalidPlayMode indicates an unknown play mode value
	ErrInvalidPlayMode = errors.New("invalid play mode")
)

// IsEmptyPlaylist checks if the error is an empty playlist error
func IsEmptyPlaylist(err error) bool {
	return errors.Is(err, ErrEmptyPlaylist)
}

// IsIndexOutOfRange checks if the error is an index out of range error
func IsIndexOutOfRange(err error) bool {
	return errors.Is(err, ErrIndexOutOfRange)
}
