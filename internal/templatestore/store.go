package templatestore

import "context"

// Source provides a template configuration.
type Source interface {
	// Load returns the configuration, ErrNotFound when the source is empty,
	// or ErrInvalidConfig when its content is unusable.
	Load(ctx context.Context) (*Config, error)
}

// Store is a writable Source that also keeps the plain template texts.
type Store interface {
	Source

	// Save replaces the stored configuration.
	Save(ctx context.Context, cfg *Config) error

	// LoadTemplates returns the stored template texts or ErrNotFound.
	LoadTemplates(ctx context.Context) (*Templates, error)

	// SaveTemplates replaces the stored template texts.
	SaveTemplates(ctx context.Context, t *Templates) error

	// ReplaceAll stores templates and configuration together: either both
	// are written or neither is.
	ReplaceAll(ctx context.Context, t *Templates, cfg *Config) error
}
