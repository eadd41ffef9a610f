// Package config loads the YAML configuration file of the admitdoc CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-admitdoc/internal/dateutil"
	"github.com/alnah/go-admitdoc/internal/fileutil"
	"github.com/alnah/go-admitdoc/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength         = 4096
	MaxDurationLength     = 20 // "5s", "1m30s"
	MaxDateFormatLength   = dateutil.MaxDateFormatLength
	MaxAuthorLength       = 100 // PDF author metadata
	MaxOrganizationLength = 100
)

// Defaults applied by DefaultConfig.
const (
	DefaultImageDir     = "config/images"
	DefaultImageTimeout = "5s"
	DefaultOverrideFile = "config/templates.json"
	DefaultMinimumAge   = 18
	MaxMinimumAge       = 150
)

// Config holds all configuration for admission document generation.
type Config struct {
	Page      PageConfig      `yaml:"page"`
	Images    ImagesConfig    `yaml:"images"`
	Templates TemplatesConfig `yaml:"templates"`
	Patient   PatientConfig   `yaml:"patient"`
	Output    OutputConfig    `yaml:"output"`
	Document  DocumentConfig  `yaml:"document"`
}

// PageConfig overrides the page geometry. Zero fields keep the A4 defaults.
type PageConfig struct {
	Width          float64 `yaml:"width"`          // mm
	Height         float64 `yaml:"height"`         // mm
	Margin         float64 `yaml:"margin"`         // mm
	LineHeight     float64 `yaml:"lineHeight"`     // mm
	FontSize       float64 `yaml:"fontSize"`       // pt
	ImagePaddingPx float64 `yaml:"imagePaddingPx"` // gap below the header image
	PxPerUnit      float64 `yaml:"pxPerUnit"`      // px per mm
}

// ImagesConfig defines header image loading.
type ImagesConfig struct {
	BaseDir string `yaml:"baseDir"` // directory for bare image filenames
	Timeout string `yaml:"timeout"` // Go duration, e.g. "5s"
}

// TemplatesConfig locates the template configuration sources.
type TemplatesConfig struct {
	OverrideFile string `yaml:"overrideFile"` // read-only JSON override, checked first
	StorePath    string `yaml:"storePath"`    // SQLite cache (empty = user cache dir)
	DefaultsDir  string `yaml:"defaultsDir"`  // custom default texts (empty = built-in)
}

// PatientConfig defines patient validation and formatting.
type PatientConfig struct {
	MinimumAge int    `yaml:"minimumAge"`
	DateFormat string `yaml:"dateFormat"` // e.g. "DD/MM/YYYY" or preset "br"
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = current dir)
}

// DocumentConfig sets PDF metadata.
type DocumentConfig struct {
	Author       string `yaml:"author"`
	Organization string `yaml:"organization"`
}

// ImageTimeout parses Images.Timeout. An empty value yields zero, which
// callers treat as "use the default".
func (c *Config) ImageTimeout() (time.Duration, error) {
	if c.Images.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Images.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: images.timeout: %v", ErrInvalidValue, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: images.timeout: must be positive, got %s", ErrInvalidValue, d)
	}
	return d, nil
}

// Validate checks field lengths and value ranges.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	paths := []struct {
		field, value string
	}{
		{"images.baseDir", c.Images.BaseDir},
		{"templates.overrideFile", c.Templates.OverrideFile},
		{"templates.storePath", c.Templates.StorePath},
		{"templates.defaultsDir", c.Templates.DefaultsDir},
		{"output.defaultDir", c.Output.DefaultDir},
	}
	for _, p := range paths {
		if err := validateFieldLength(p.field, p.value, MaxPathLength); err != nil {
			return err
		}
	}

	if err := validateFieldLength("images.timeout", c.Images.Timeout, MaxDurationLength); err != nil {
		return err
	}
	if _, err := c.ImageTimeout(); err != nil {
		return err
	}

	if err := validateFieldLength("patient.dateFormat", c.Patient.DateFormat, MaxDateFormatLength); err != nil {
		return err
	}
	if c.Patient.DateFormat != "" {
		if _, err := dateutil.ParseDateFormat(c.Patient.DateFormat); err != nil {
			return fmt.Errorf("patient.dateFormat: %w", err)
		}
	}
	if c.Patient.MinimumAge < 0 || c.Patient.MinimumAge > MaxMinimumAge {
		return fmt.Errorf("%w: patient.minimumAge: must be between 0 and %d, got %d", ErrInvalidValue, MaxMinimumAge, c.Patient.MinimumAge)
	}

	if err := validateFieldLength("document.author", c.Document.Author, MaxAuthorLength); err != nil {
		return err
	}
	if err := validateFieldLength("document.organization", c.Document.Organization, MaxOrganizationLength); err != nil {
		return err
	}

	page := []struct {
		field string
		value float64
	}{
		{"page.width", c.Page.Width},
		{"page.height", c.Page.Height},
		{"page.margin", c.Page.Margin},
		{"page.lineHeight", c.Page.LineHeight},
		{"page.fontSize", c.Page.FontSize},
		{"page.imagePaddingPx", c.Page.ImagePaddingPx},
		{"page.pxPerUnit", c.Page.PxPerUnit},
	}
	for _, p := range page {
		if p.value < 0 {
			return fmt.Errorf("%w: %s: must not be negative, got %.2f", ErrInvalidValue, p.field, p.value)
		}
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given.
// Page geometry is left zero so the library defaults apply.
func DefaultConfig() *Config {
	return &Config{
		Images: ImagesConfig{
			BaseDir: DefaultImageDir,
			Timeout: DefaultImageTimeout,
		},
		Templates: TemplatesConfig{
			OverrideFile: DefaultOverrideFile,
		},
		Patient: PatientConfig{
			MinimumAge: DefaultMinimumAge,
			DateFormat: dateutil.DefaultDateFormat,
		},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields absent from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()
	if err := yamlutil.DecodeFileStrict(configPath, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Marshal renders cfg as YAML, for display of the effective configuration.
func Marshal(cfg *Config) ([]byte, error) {
	return yamlutil.Marshal(cfg)
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-admitdoc/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-admitdoc", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
