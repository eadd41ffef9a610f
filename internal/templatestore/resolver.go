package templatestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/alnah/go-admitdoc/internal/assets"
)

// Resolver picks the active configuration: the override source when it
// yields a valid configuration, else the cache, else the built-in defaults.
// A successful override read is written through to the cache.
type Resolver struct {
	// Override is the durable, read-only source. Optional.
	Override Source
	// Cache is the local read/write store. Optional.
	Cache Store
	// Defaults provides template texts for missing content.
	// Nil means the embedded defaults.
	Defaults assets.TemplateLoader
	// Logger receives non-fatal failures. Nil means slog.Default().
	Logger *slog.Logger
}

// Load returns the active configuration. It fails only when the defaults
// themselves cannot be loaded or ctx is done.
func (r *Resolver) Load(ctx context.Context) (*Config, error) {
	if r.Override != nil {
		cfg, err := r.Override.Load(ctx)
		switch {
		case err == nil:
			if err := r.fillDefaults(cfg); err != nil {
				return nil, err
			}
			r.writeThrough(ctx, cfg)
			return cfg, nil
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case errors.Is(err, ErrNotFound):
			r.logger().Debug("no override configuration", "error", err)
		default:
			r.logger().Warn("override configuration unusable, using cache", "error", err)
		}
	}

	if r.Cache != nil {
		cfg, err := r.Cache.Load(ctx)
		switch {
		case err == nil:
			if err := r.fillDefaults(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case errors.Is(err, ErrNotFound):
			r.logger().Debug("no cached configuration", "error", err)
		default:
			r.logger().Warn("cached configuration unusable, using defaults", "error", err)
		}
	}

	return r.DefaultConfig()
}

// Templates returns the cached template texts, or the defaults.
func (r *Resolver) Templates(ctx context.Context) (*Templates, error) {
	if r.Cache != nil {
		t, err := r.Cache.LoadTemplates(ctx)
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, ErrNotFound) {
			r.logger().Warn("cached templates unusable, using defaults", "error", err)
		}
	}

	t := &Templates{}
	var err error
	if t.Voluntary, err = r.defaults().LoadTemplate(KeyVoluntary); err != nil {
		return nil, fmt.Errorf("loading default template: %w", err)
	}
	if t.Involuntary, err = r.defaults().LoadTemplate(KeyInvoluntary); err != nil {
		return nil, fmt.Errorf("loading default template: %w", err)
	}
	return t, nil
}

// DefaultConfig builds a configuration from the default template texts,
// with no header images and no bold phrases.
func (r *Resolver) DefaultConfig() (*Config, error) {
	cfg := &Config{Voluntary: &Entry{}, Involuntary: &Entry{}}
	if err := r.fillDefaults(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save stores cfg in the cache.
func (r *Resolver) Save(ctx context.Context, cfg *Config) error {
	if r.Cache == nil {
		return ErrNoCache
	}
	cfg = cfg.Clone()
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg.normalize()
	return r.Cache.Save(ctx, cfg)
}

// fillDefaults gives every entry with empty content the default text.
func (r *Resolver) fillDefaults(cfg *Config) error {
	for _, key := range Keys {
		e, err := cfg.Entry(key)
		if err != nil {
			return err
		}
		if e.Content == "" {
			text, err := r.defaults().LoadTemplate(key)
			if err != nil {
				return fmt.Errorf("loading default template: %w", err)
			}
			e.Content = text
		}
		if e.BoldTexts == nil {
			e.BoldTexts = []string{}
		} else {
			e.BoldTexts = slices.Clone(e.BoldTexts)
		}
	}
	return nil
}

func (r *Resolver) writeThrough(ctx context.Context, cfg *Config) {
	if r.Cache == nil {
		return
	}
	if err := r.Cache.Save(ctx, cfg); err != nil {
		r.logger().Warn("caching override configuration failed", "error", err)
	}
}

func (r *Resolver) defaults() assets.TemplateLoader {
	if r.Defaults == nil {
		return assets.NewEmbeddedLoader()
	}
	return r.Defaults
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// Compile-time interface check.
var _ Source = (*Resolver)(nil)
