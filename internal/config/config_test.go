package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Images.BaseDir != DefaultImageDir {
		t.Errorf("Images.BaseDir = %q, want %q", cfg.Images.BaseDir, DefaultImageDir)
	}
	if cfg.Templates.OverrideFile != DefaultOverrideFile {
		t.Errorf("Templates.OverrideFile = %q, want %q", cfg.Templates.OverrideFile, DefaultOverrideFile)
	}
	if cfg.Patient.MinimumAge != 18 {
		t.Errorf("Patient.MinimumAge = %d, want 18", cfg.Patient.MinimumAge)
	}
	if cfg.Patient.DateFormat != "DD/MM/YYYY" {
		t.Errorf("Patient.DateFormat = %q, want DD/MM/YYYY", cfg.Patient.DateFormat)
	}
	if cfg.Page != (PageConfig{}) {
		t.Errorf("Page = %+v, want zero value", cfg.Page)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
	if d, _ := cfg.ImageTimeout(); d != 5*time.Second {
		t.Errorf("ImageTimeout() = %s, want 5s", d)
	}
}

func TestValidateFieldLength(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		maxLength int
		wantErr   bool
	}{
		{name: "empty value is valid", value: "", maxLength: 10},
		{name: "value at limit is valid", value: "1234567890", maxLength: 10},
		{name: "value over limit is invalid", value: "12345678901", maxLength: 10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFieldLength("test", tt.value, tt.maxLength)
			if tt.wantErr != errors.Is(err, ErrFieldTooLong) {
				t.Errorf("validateFieldLength() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
		wantMsg string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{
			name:    "images.baseDir too long",
			mutate:  func(c *Config) { c.Images.BaseDir = strings.Repeat("a", MaxPathLength+1) },
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "unparseable timeout",
			mutate:  func(c *Config) { c.Images.Timeout = "soon" },
			wantErr: ErrInvalidValue,
			wantMsg: "images.timeout",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Images.Timeout = "-1s" },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "bad date format",
			mutate:  func(c *Config) { c.Patient.DateFormat = "[DD" },
			wantMsg: "patient.dateFormat",
		},
		{
			name:    "minimum age out of range",
			mutate:  func(c *Config) { c.Patient.MinimumAge = 200 },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "negative margin",
			mutate:  func(c *Config) { c.Page.Margin = -1 },
			wantErr: ErrInvalidValue,
			wantMsg: "page.margin",
		},
		{
			name:    "document.author too long",
			mutate:  func(c *Config) { c.Document.Author = strings.Repeat("x", MaxAuthorLength+1) },
			wantErr: ErrFieldTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == nil && tt.wantMsg == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() error = nil, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Validate() error = %q, want it to mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("empty name returns ErrEmptyConfigName", func(t *testing.T) {
		_, err := LoadConfig("")
		if !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("valid file path loads config over defaults", func(t *testing.T) {
		dir := t.TempDir()
		configPath := filepath.Join(dir, "admitdoc.yaml")
		content := `page:
  margin: 15
images:
  timeout: "2s"
templates:
  storePath: "/var/lib/admitdoc/cache.db"
patient:
  minimumAge: 16
document:
  organization: "Hospital Santa Clara"
`
		if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
			t.Fatalf("setup: %v", err)
		}

		cfg, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Page.Margin != 15 {
			t.Errorf("Page.Margin = %v, want 15", cfg.Page.Margin)
		}
		if d, _ := cfg.ImageTimeout(); d != 2*time.Second {
			t.Errorf("ImageTimeout() = %s, want 2s", d)
		}
		if cfg.Templates.StorePath != "/var/lib/admitdoc/cache.db" {
			t.Errorf("Templates.StorePath = %q", cfg.Templates.StorePath)
		}
		if cfg.Patient.MinimumAge != 16 {
			t.Errorf("Patient.MinimumAge = %d, want 16", cfg.Patient.MinimumAge)
		}
		if cfg.Patient.DateFormat != "DD/MM/YYYY" {
			t.Errorf("Patient.DateFormat = %q, want default kept", cfg.Patient.DateFormat)
		}
		if cfg.Images.BaseDir != DefaultImageDir {
			t.Errorf("Images.BaseDir = %q, want default kept", cfg.Images.BaseDir)
		}
		if cfg.Document.Organization != "Hospital Santa Clara" {
			t.Errorf("Document.Organization = %q", cfg.Document.Organization)
		}
	})

	t.Run("nonexistent file path returns ErrConfigNotFound", func(t *testing.T) {
		_, err := LoadConfig("/nonexistent/path/config.yaml")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("invalid YAML returns ErrConfigParse", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "invalid.yaml")
		if err := os.WriteFile(configPath, []byte("page: [unclosed"), 0o600); err != nil {
			t.Fatalf("setup: %v", err)
		}
		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("unknown field returns ErrConfigParse", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "unknown.yaml")
		if err := os.WriteFile(configPath, []byte("watermark:\n  enabled: true\n"), 0o600); err != nil {
			t.Fatalf("setup: %v", err)
		}
		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid values fail validation", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(configPath, []byte("patient:\n  minimumAge: -3\n"), 0o600); err != nil {
			t.Fatalf("setup: %v", err)
		}
		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
	})

	t.Run("name resolves in current directory", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		if err := os.WriteFile("clinic.yml", []byte("output:\n  defaultDir: out\n"), 0o600); err != nil {
			t.Fatalf("setup: %v", err)
		}

		cfg, err := LoadConfig("clinic")
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Output.DefaultDir != "out" {
			t.Errorf("Output.DefaultDir = %q, want out", cfg.Output.DefaultDir)
		}
	})

	t.Run("unknown name lists tried paths", func(t *testing.T) {
		t.Chdir(t.TempDir())
		_, err := LoadConfig("missing-config-name")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("error = %v, want ErrConfigNotFound", err)
		}
		if !strings.Contains(err.Error(), "missing-config-name.yaml") {
			t.Errorf("error %q does not list tried paths", err)
		}
	})
}

func TestMarshal(t *testing.T) {
	out, err := Marshal(DefaultConfig())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, want := range []string{"minimumAge: 18", "baseDir: config/images"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("Marshal() output missing %q:\n%s", want, out)
		}
	}
}
