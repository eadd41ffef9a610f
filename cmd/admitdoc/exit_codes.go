package main

import (
	"errors"
	"os"

	admitdoc "github.com/alnah/go-admitdoc"
	"github.com/alnah/go-admitdoc/internal/assets"
	"github.com/alnah/go-admitdoc/internal/config"
	"github.com/alnah/go-admitdoc/internal/dateutil"
	"github.com/alnah/go-admitdoc/internal/templatestore"
)

// Exit codes for the admitdoc CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Document(s) generated
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or patient data
	ExitIO      = 3 // File not found, permission denied, store failure
	ExitRender  = 4 // PDF backend errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Render errors (exit 4)
	if errors.Is(err, admitdoc.ErrRender) {
		return ExitRender
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadRoster) ||
		errors.Is(err, ErrWritePDF) ||
		errors.Is(err, ErrWriteFile) ||
		errors.Is(err, templatestore.ErrStore) ||
		errors.Is(err, templatestore.ErrNoCache) ||
		errors.Is(err, assets.ErrImageNotFound) ||
		errors.Is(err, assets.ErrImageFetch) ||
		errors.Is(err, assets.ErrImageTimeout) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, ErrEmptyRoster) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, admitdoc.ErrValidation) ||
		errors.Is(err, admitdoc.ErrInvalidGeometry) ||
		errors.Is(err, admitdoc.ErrInvalidDateFormat) ||
		errors.Is(err, admitdoc.ErrImportFormat) ||
		errors.Is(err, dateutil.ErrInvalidDate) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) ||
		errors.Is(err, templatestore.ErrInvalidConfig) ||
		errors.Is(err, templatestore.ErrUnknownAdmissionType) {
		return ExitUsage
	}

	return ExitGeneral
}
