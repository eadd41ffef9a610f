package templatestore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// BundleVersion is written to every export bundle.
const BundleVersion = "1.0.0"

// exportDateLayout matches the millisecond UTC timestamps of earlier exports.
const exportDateLayout = "2006-01-02T15:04:05.000Z07:00"

// Bundle is the export/import file format.
type Bundle struct {
	Templates  *Templates `json:"templates"`
	Config     *Config    `json:"config"`
	Version    string     `json:"version"`
	ExportDate string     `json:"exportDate"`
}

// ExportFilename returns the conventional bundle filename for now.
func ExportFilename(now time.Time) string {
	return "config_templates_" + now.UTC().Format(time.DateOnly) + ".json"
}

// Export writes the active templates and configuration as an indented
// JSON bundle.
func (r *Resolver) Export(ctx context.Context, w io.Writer, now time.Time) error {
	cfg, err := r.Load(ctx)
	if err != nil {
		return err
	}
	templates, err := r.Templates(ctx)
	if err != nil {
		return err
	}

	b := Bundle{
		Templates:  templates,
		Config:     cfg,
		Version:    BundleVersion,
		ExportDate: now.UTC().Format(exportDateLayout),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("writing bundle: %w", err)
	}
	return nil
}

// DecodeBundle parses and checks an import bundle. A bundle without
// templates or config, or whose config lacks an admission type, is
// rejected with ErrImportFormat.
func DecodeBundle(rd io.Reader) (*Bundle, error) {
	data, err := io.ReadAll(io.LimitReader(rd, maxConfigSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading bundle: %w", err)
	}
	if len(data) > maxConfigSize {
		return nil, fmt.Errorf("%w: bundle larger than %d bytes", ErrImportFormat, maxConfigSize)
	}

	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFormat, err)
	}
	if b.Templates == nil || b.Config == nil {
		return nil, fmt.Errorf("%w: bundle needs both \"templates\" and \"config\"", ErrImportFormat)
	}
	if err := b.Config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFormat, err)
	}
	b.Config.normalize()
	return &b, nil
}

// Import replaces the cached templates and configuration with the bundle
// read from rd. Nothing is stored unless the whole bundle is valid, and both
// parts are stored in one transaction.
func (r *Resolver) Import(ctx context.Context, rd io.Reader) (*Bundle, error) {
	if r.Cache == nil {
		return nil, ErrNoCache
	}
	b, err := DecodeBundle(rd)
	if err != nil {
		return nil, err
	}
	if err := r.Cache.ReplaceAll(ctx, b.Templates, b.Config); err != nil {
		return nil, err
	}
	return b, nil
}
