package main

import "errors"

// CLI-level sentinel errors.
var (
	ErrUsage       = errors.New("usage error")
	ErrReadRoster  = errors.New("failed to read roster")
	ErrEmptyRoster = errors.New("roster has no patients")
	ErrWritePDF    = errors.New("failed to write PDF")
	ErrWriteFile   = errors.New("failed to write file")
	ErrAborted     = errors.New("aborted by user")

	// ErrUnsupportedShell is returned when an unknown shell is requested.
	ErrUnsupportedShell = errors.New("unsupported shell")
)
