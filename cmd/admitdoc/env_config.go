package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-admitdoc/internal/config"
)

// envPrefix namespaces every variable read by loadEnvConfig.
const envPrefix = "ADMITDOC_"

// envConfig holds configuration from environment variables.
// Provides deployment-friendly overrides without requiring YAML files.
type envConfig struct {
	// Tier 1 - Essential
	ConfigPath   string        // ADMITDOC_CONFIG: config file path
	StorePath    string        // ADMITDOC_STORE_PATH: SQLite cache file
	OverrideFile string        // ADMITDOC_OVERRIDE_FILE: template override JSON
	ImageTimeout time.Duration // ADMITDOC_IMAGE_TIMEOUT: header image load timeout

	// Tier 2 - I/O and identity
	ImageDir     string // ADMITDOC_IMAGE_DIR: directory for bare image names
	OutputDir    string // ADMITDOC_OUTPUT_DIR: default output directory
	Author       string // ADMITDOC_AUTHOR: PDF author metadata
	Organization string // ADMITDOC_ORG: organization metadata

	// Tier 3 - Extended
	DateFormat string // ADMITDOC_DATE_FORMAT: birth date display format
	Workers    int    // ADMITDOC_WORKERS: parallel workers for batch
}

// knownEnvVars lists valid ADMITDOC_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	// Tier 1 - Essential
	"ADMITDOC_CONFIG":        true,
	"ADMITDOC_STORE_PATH":    true,
	"ADMITDOC_OVERRIDE_FILE": true,
	"ADMITDOC_IMAGE_TIMEOUT": true,
	// Tier 2 - I/O and identity
	"ADMITDOC_IMAGE_DIR":  true,
	"ADMITDOC_OUTPUT_DIR": true,
	"ADMITDOC_AUTHOR":     true,
	"ADMITDOC_ORG":        true,
	// Tier 3 - Extended
	"ADMITDOC_DATE_FORMAT": true,
	"ADMITDOC_WORKERS":     true,
}

// loadEnvConfig reads configuration from environment variables.
// Returns a struct with all recognized ADMITDOC_* values.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		// Tier 1
		ConfigPath:   os.Getenv("ADMITDOC_CONFIG"),
		StorePath:    os.Getenv("ADMITDOC_STORE_PATH"),
		OverrideFile: os.Getenv("ADMITDOC_OVERRIDE_FILE"),
		// Tier 2
		ImageDir:     os.Getenv("ADMITDOC_IMAGE_DIR"),
		OutputDir:    os.Getenv("ADMITDOC_OUTPUT_DIR"),
		Author:       os.Getenv("ADMITDOC_AUTHOR"),
		Organization: os.Getenv("ADMITDOC_ORG"),
		// Tier 3
		DateFormat: os.Getenv("ADMITDOC_DATE_FORMAT"),
	}

	// Parse duration for image timeout
	if timeout := os.Getenv("ADMITDOC_IMAGE_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.ImageTimeout = d
		}
	}

	// Parse int for workers
	if workers := os.Getenv("ADMITDOC_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized ADMITDOC_* variables.
// Helps catch typos like ADMITDOC_STORE instead of ADMITDOC_STORE_PATH.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envPrefix) {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to cfg.
// Set variables replace file values.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied later by each command)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	// Tier 1 - Template sources
	if env.StorePath != "" {
		cfg.Templates.StorePath = env.StorePath
	}
	if env.OverrideFile != "" {
		cfg.Templates.OverrideFile = env.OverrideFile
	}
	if env.ImageTimeout > 0 {
		cfg.Images.Timeout = env.ImageTimeout.String()
	}

	// Tier 2 - I/O
	if env.ImageDir != "" {
		cfg.Images.BaseDir = env.ImageDir
	}
	if env.OutputDir != "" {
		cfg.Output.DefaultDir = env.OutputDir
	}

	// Tier 2 - Identity
	if env.Author != "" {
		cfg.Document.Author = env.Author
	}
	if env.Organization != "" {
		cfg.Document.Organization = env.Organization
	}

	// Tier 3 - Patient formatting
	if env.DateFormat != "" {
		cfg.Patient.DateFormat = env.DateFormat
	}
}
