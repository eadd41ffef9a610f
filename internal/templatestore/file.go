package templatestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/alnah/go-admitdoc/internal/fileutil"
)

// maxConfigSize bounds configuration files; inline images make them larger
// than plain text but never this large.
const maxConfigSize = 64 << 20

// FileSource reads the durable override file. It never writes to Path.
type FileSource struct {
	Path string
}

// Load reads and validates the override file. A missing file yields
// ErrNotFound; malformed JSON or a missing admission type yields
// ErrInvalidConfig.
func (f *FileSource) Load(ctx context.Context) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Path == "" {
		return nil, fmt.Errorf("%w: no override file configured", ErrNotFound)
	}

	info, err := os.Stat(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, f.Path)
		}
		return nil, fmt.Errorf("reading %s: %w", f.Path, err)
	}
	if info.Size() > maxConfigSize {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", ErrInvalidConfig, f.Path, maxConfigSize)
	}

	data, err := os.ReadFile(f.Path) // #nosec G304 -- operator-configured override path
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Path, err)
	}
	return decodeConfig(data, f.Path)
}

// decodeConfig parses configuration JSON and requires both admission types.
func decodeConfig(data []byte, origin string) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, origin, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", origin, err)
	}
	cfg.normalize()
	return &cfg, nil
}

// WriteOverrideFile writes cfg to path in the override file format, after
// NormalizeForStorage. Inline images are replaced by their filenames and
// returned so the caller can write them next to the file.
func WriteOverrideFile(path string, cfg *Config) ([]Image, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	normalized, images := NormalizeForStorage(cfg)
	data, err := json.MarshalIndent(normalized, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding configuration: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, append(data, '\n'), 0o644); err != nil {
		return nil, err
	}
	return images, nil
}

// Compile-time interface check.
var _ Source = (*FileSource)(nil)
