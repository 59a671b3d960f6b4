package serialization

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrChecksumMismatch  = errors.New("checksum mismatch: file may be corrupted")
	ErrUnsupportedDType  = errors.New("unsupported array dtype")
	ErrUnsupportedRank   = errors.New("unsupported array rank")
	ErrMissingParameter  = errors.New("missing parameter file")
	ErrMalformedManifest = errors.New("malformed manifest")
)

// ArrayError provides detailed information about a rejected array file.
type ArrayError struct {
	File    string // File name (empty when reading from a stream)
	Details string // Additional details
	Err     error  // Underlying sentinel
}

// Error implements the error interface.
func (e *ArrayError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%v: %q: %s", e.Err, e.File, e.Details)
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Details)
}

// Unwrap allows errors.Is against the sentinel.
func (e *ArrayError) Unwrap() error {
	return e.Err
}
