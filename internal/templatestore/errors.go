package templatestore

import "errors"

// Sentinel errors for template store operations.
var (
	// ErrNotFound indicates a source holds no configuration.
	ErrNotFound = errors.New("template configuration not found")

	// ErrInvalidConfig indicates a configuration lacks an admission type or
	// is not valid JSON.
	ErrInvalidConfig = errors.New("invalid template configuration")

	// ErrImportFormat indicates an import bundle lacks templates or config.
	ErrImportFormat = errors.New("invalid import format")

	// ErrUnknownAdmissionType indicates a key other than voluntaria/involuntaria.
	ErrUnknownAdmissionType = errors.New("unknown admission type")

	// ErrStore indicates the local cache could not be read or written.
	ErrStore = errors.New("template store failure")

	// ErrNoCache indicates an operation needs a writable cache but none is set.
	ErrNoCache = errors.New("no template cache configured")
)
