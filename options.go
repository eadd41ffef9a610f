package admitdoc

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/alnah/go-admitdoc/internal/assets"
	"github.com/alnah/go-admitdoc/internal/dateutil"
)

// Generator defaults.
const (
	DefaultImageTimeout = assets.DefaultImageTimeout
	DefaultImageDir     = assets.DefaultImageDir
	DefaultMinimumAge   = 18
	DefaultDateFormat   = dateutil.DefaultDateFormat
)

// BirthDateNotInformed replaces {{DATA_NASCIMENTO}} when no birth date is given.
const BirthDateNotInformed = "Não informado"

// DocumentInfo is written into the PDF metadata.
type DocumentInfo struct {
	Author       string
	Organization string
}

// Option configures a Generator.
type Option func(*Generator)

// generatorConfig holds the settings fixed at construction.
type generatorConfig struct {
	geometry     PageGeometry
	imageTimeout time.Duration
	imageDir     string
	minimumAge   int
	dateFormat   string
	clock        func() time.Time
	httpClient   *http.Client
	info         DocumentInfo
}

func defaultGeneratorConfig() generatorConfig {
	return generatorConfig{
		geometry:     DefaultPageGeometry(),
		imageTimeout: DefaultImageTimeout,
		imageDir:     DefaultImageDir,
		minimumAge:   DefaultMinimumAge,
		dateFormat:   DefaultDateFormat,
		clock:        time.Now,
	}
}

// WithGeometry sets the page profile. NewGenerator validates it.
func WithGeometry(g PageGeometry) Option {
	return func(gen *Generator) {
		gen.cfg.geometry = g
	}
}

// WithImageTimeout bounds each header image load.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithImageTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("admitdoc: WithImageTimeout duration must be positive")
	}
	return func(gen *Generator) {
		gen.cfg.imageTimeout = d
	}
}

// WithImageBaseDir sets the directory bare image filenames resolve against.
func WithImageBaseDir(dir string) Option {
	return func(gen *Generator) {
		gen.cfg.imageDir = dir
	}
}

// WithMinimumAge sets the youngest age accepted when a birth date is given.
// Panics if years < 0.
func WithMinimumAge(years int) Option {
	if years < 0 {
		panic("admitdoc: WithMinimumAge years must not be negative")
	}
	return func(gen *Generator) {
		gen.cfg.minimumAge = years
	}
}

// WithDateFormat sets the format of {{DATA_NASCIMENTO}} and {{DATA_ATUAL}},
// written with DD, MM and YYYY tokens or a preset name ("br", "iso", "us").
func WithDateFormat(format string) Option {
	return func(gen *Generator) {
		gen.cfg.dateFormat = format
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(gen *Generator) {
		if now != nil {
			gen.cfg.clock = now
		}
	}
}

// WithLogger sets the logger for non-fatal failures. Nil means slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(gen *Generator) {
		gen.logger = logger
	}
}

// WithHTTPClient sets the client used for remote header images.
func WithHTTPClient(c *http.Client) Option {
	return func(gen *Generator) {
		gen.cfg.httpClient = c
	}
}

// WithDocumentInfo sets the PDF author and organization metadata.
func WithDocumentInfo(info DocumentInfo) Option {
	return func(gen *Generator) {
		gen.cfg.info = info
	}
}

// withImageSource replaces the header image loader (tests).
func withImageSource(src imageSource) Option {
	return func(gen *Generator) {
		gen.images = src
	}
}

// withRenderer replaces the PDF backend (tests).
func withRenderer(r documentRenderer) Option {
	return func(gen *Generator) {
		gen.renderer = r
	}
}
