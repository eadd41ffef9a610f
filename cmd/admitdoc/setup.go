package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	admitdoc "github.com/alnah/go-admitdoc"
	"github.com/alnah/go-admitdoc/internal/assets"
	"github.com/alnah/go-admitdoc/internal/config"
	"github.com/alnah/go-admitdoc/internal/fileutil"
	"github.com/alnah/go-admitdoc/internal/hints"
	"github.com/alnah/go-admitdoc/internal/templatestore"
)

// defaultStoreFile is the cache filename under the user cache directory.
const defaultStoreFile = "templates.db"

// settings is the merged configuration of one command run.
type settings struct {
	cfg     *config.Config
	workers int // from ADMITDOC_WORKERS; flags win
}

// loadSettings merges defaults, the config file, and ADMITDOC_* variables.
// Flags are applied by the caller.
func loadSettings(common commonFlags, env *Environment) (*settings, error) {
	envCfg := loadEnvConfig()
	if !common.quiet {
		warnUnknownEnvVars(env.Stderr)
	}

	path := common.config
	if path == "" {
		path = envCfg.ConfigPath
	}

	var cfg *config.Config
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(nil))
		}
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		base := config.DefaultConfig()
		if env.Config != nil {
			*base = *env.Config
		}
		cfg = base
	}

	applyEnvConfig(envCfg, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &settings{cfg: cfg, workers: envCfg.Workers}, nil
}

// newLogger builds the stderr logger: --verbose shows Debug, --quiet only
// Error.
func newLogger(common commonFlags, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case common.quiet:
		level = slog.LevelError
	case common.verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// geometryFromConfig overlays the non-zero page fields on the defaults.
func geometryFromConfig(p config.PageConfig) admitdoc.PageGeometry {
	g := admitdoc.DefaultPageGeometry()
	overlay := []struct {
		dst *float64
		src float64
	}{
		{&g.Width, p.Width},
		{&g.Height, p.Height},
		{&g.Margin, p.Margin},
		{&g.LineHeight, p.LineHeight},
		{&g.FontSize, p.FontSize},
		{&g.ImagePaddingPx, p.ImagePaddingPx},
		{&g.PxPerUnit, p.PxPerUnit},
	}
	for _, o := range overlay {
		if o.src != 0 {
			*o.dst = o.src
		}
	}
	return g
}

// resolveImageTimeout returns the --image-timeout value when set, else the
// configured timeout. Zero means the library default.
func resolveImageTimeout(flagValue string, cfg *config.Config) (time.Duration, error) {
	if flagValue != "" {
		d, err := time.ParseDuration(flagValue)
		if err != nil {
			return 0, fmt.Errorf("%w: --image-timeout: %v", ErrUsage, err)
		}
		if d <= 0 {
			return 0, fmt.Errorf("%w: --image-timeout must be positive, got %s", ErrUsage, d)
		}
		return d, nil
	}
	return cfg.ImageTimeout()
}

// newGenerator builds a Generator from the merged configuration.
func newGenerator(s *settings, timeout time.Duration, logger *slog.Logger, env *Environment) (*admitdoc.Generator, error) {
	cfg := s.cfg
	opts := []admitdoc.Option{
		admitdoc.WithGeometry(geometryFromConfig(cfg.Page)),
		admitdoc.WithImageBaseDir(cfg.Images.BaseDir),
		admitdoc.WithMinimumAge(cfg.Patient.MinimumAge),
		admitdoc.WithClock(env.Now),
		admitdoc.WithLogger(logger),
		admitdoc.WithDocumentInfo(admitdoc.DocumentInfo{
			Author:       cfg.Document.Author,
			Organization: cfg.Document.Organization,
		}),
	}
	if cfg.Patient.DateFormat != "" {
		opts = append(opts, admitdoc.WithDateFormat(cfg.Patient.DateFormat))
	}
	if timeout > 0 {
		opts = append(opts, admitdoc.WithImageTimeout(timeout))
	}
	return admitdoc.NewGenerator(opts...)
}

// templateSources is an opened Resolver plus the cache it may hold.
type templateSources struct {
	resolver *templatestore.Resolver
	cache    *templatestore.SQLiteCache // nil when the store could not be opened
}

// Close releases the cache connection.
func (t *templateSources) Close() error {
	if t.cache == nil {
		return nil
	}
	return t.cache.Close()
}

// openTemplateSources wires the override file, the SQLite cache and the
// default texts into a Resolver. An unusable cache is logged and skipped:
// generation still works from the override file or the defaults.
func openTemplateSources(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*templateSources, error) {
	r := &templatestore.Resolver{Logger: logger}

	if dir := cfg.Templates.DefaultsDir; dir != "" {
		defaults, err := assets.NewAssetResolver(dir)
		if err != nil {
			return nil, fmt.Errorf("%w: templates.defaultsDir: %v", config.ErrInvalidValue, err)
		}
		r.Defaults = defaults
	}
	if cfg.Templates.OverrideFile != "" {
		r.Override = &templatestore.FileSource{Path: cfg.Templates.OverrideFile}
	}

	src := &templateSources{resolver: r}
	path, err := storePath(cfg)
	if err != nil {
		logger.Warn("template cache disabled", "error", err)
		return src, nil
	}
	cache, err := templatestore.OpenSQLiteCache(ctx, path, logger)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("template cache disabled", "path", path, "error", err)
		return src, nil
	}
	logger.Debug("template cache opened", "path", path)
	src.cache = cache
	r.Cache = cache
	return src, nil
}

// storePath returns templates.storePath, or the file under the user cache
// directory when unset.
func storePath(cfg *config.Config) (string, error) {
	if cfg.Templates.StorePath != "" {
		return cfg.Templates.StorePath, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%w: %v%s", templatestore.ErrStore, err, hints.ForStoreOpen())
	}
	return filepath.Join(dir, "go-admitdoc", defaultStoreFile), nil
}

// inputFor builds the generation input of one patient from the active
// template configuration.
func inputFor(tc *templatestore.Config, a admitdoc.AdmissionType, name string, birth time.Time) (admitdoc.Input, error) {
	entry, err := tc.Entry(a.Key())
	if err != nil {
		return admitdoc.Input{}, err
	}
	return admitdoc.Input{
		PatientName: name,
		BirthDate:   birth,
		Admission:   a,
		Template:    entry.Content,
		BoldPhrases: entry.BoldTexts,
		HeaderImage: entry.HeaderImage,
	}, nil
}

// resolveOutputPath picks where a generated PDF goes. An empty output uses
// the default directory; an existing directory or a path ending in a
// separator receives the suggested filename.
func resolveOutputPath(output, defaultDir, filename string) string {
	if output == "" {
		if defaultDir == "" {
			return filename
		}
		return filepath.Join(defaultDir, filename)
	}
	if strings.HasSuffix(output, "/") || strings.HasSuffix(output, string(filepath.Separator)) || isDir(output) {
		return filepath.Join(output, filename)
	}
	return output
}

// writePDF writes a generated document to path, creating parent directories.
func writePDF(path string, data []byte) error {
	return writeOutput(path, data, ErrWritePDF)
}

// writeOutput writes data to path, creating parent directories. Failures
// wrap kind.
func writeOutput(path string, data []byte, kind error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := fileutil.EnsureDir(dir); err != nil {
			return fmt.Errorf("%w: %v%s", kind, err, hints.ForOutputDirectory())
		}
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", kind, err)
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
