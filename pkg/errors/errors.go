package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrEmptyPlaylist     = errors.New("playlist is empty")
	ErrTrackIndexRange   = errors.New("track index out of range")
	ErrInvalidFormat     = errors.New("unsupported audio format")
	ErrPlaybackFailed    = errors.New("playback failed")
	ErrNoSource          = errors.New("track has no playable source")
	ErrGalleryNotEnabled = errors.New("gallery store is not configured")
)

// PlaybackError wraps device-level failures with the operation and
// the track source they occurred on.
type PlaybackError struct {
	Op  string // Operation that failed
	Src string // Track source if applicable
	Err error  // Underlying error
}

func (e *PlaybackError) Error() string {
	if e.Src != "" {
		return fmt.Sprintf("%s failed for %s: %v", e.Op, e.Src, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PlaybackError) Unwrap() error {
	return e.Err
}

// NewPlaybackError creates a new PlaybackError
func NewPlaybackError(op, src string, err error) *PlaybackError {
	return &PlaybackError{Op: op, Src: src, Err: err}
}

// ListError represents a failure while listing the gallery bucket
type ListError struct {
	Key string
	Err error
}

func (e *ListError) Error() string {
	return fmt.Sprintf("gallery list error at %s: %v", e.Key, e.Err)
}

func (e *ListError) Unwrap() error {
	return e.Err
}
