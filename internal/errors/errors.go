package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for expected failure modes
var (
	ErrFileNotFound      = errors.New("file not found")
	ErrUnsupportedFormat = errors.New("file type not supported")
	ErrFileTooLarge      = errors.New("file exceeds size limit")
	ErrNoAudioFile       = errors.New("no audio file provided")
	ErrServiceDown       = errors.New("transcription service unavailable")
	ErrServiceInternal   = errors.New("transcription service internal error")
)

// ParseError represents a failure to decode a MIDI byte buffer
type ParseError struct {
	Source string // filename or upload label, for messages only
	Cause  error
}

func (e *ParseError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("parse MIDI %q: %v", e.Source, e.Cause)
	}
	return fmt.Sprintf("parse MIDI: %v", e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NewParseError creates a ParseError
func NewParseError(source string, cause error) *ParseError {
	return &ParseError{Source: source, Cause: cause}
}

// IsParseError reports whether err is (or wraps) a ParseError
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
