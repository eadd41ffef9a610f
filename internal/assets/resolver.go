package assets

import (
	"errors"
)

// AssetResolver combines custom and embedded template loaders with fallback
// logic. When a custom loader is configured, it tries custom first, then
// falls back to embedded if the template is not found there.
type AssetResolver struct {
	custom   TemplateLoader // nil if no custom path configured
	embedded TemplateLoader
}

// NewAssetResolver creates an AssetResolver.
// If customBasePath is empty, only embedded templates are used.
// Returns error if customBasePath is set but invalid.
func NewAssetResolver(customBasePath string) (*AssetResolver, error) {
	resolver := &AssetResolver{
		embedded: NewEmbeddedLoader(),
	}

	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		resolver.custom = fsLoader
	}

	return resolver, nil
}

// LoadTemplate loads a template text, trying the custom loader first.
func (r *AssetResolver) LoadTemplate(name string) (string, error) {
	if r.custom == nil {
		return r.embedded.LoadTemplate(name)
	}

	content, err := r.custom.LoadTemplate(name)
	if err == nil {
		return content, nil
	}

	// Only fall back for "not found" errors, not validation or I/O errors.
	if !errors.Is(err, ErrTemplateNotFound) {
		return "", err
	}

	return r.embedded.LoadTemplate(name)
}

// HasCustomLoader returns true if a custom template loader is configured.
func (r *AssetResolver) HasCustomLoader() bool {
	return r.custom != nil
}

// Compile-time interface check.
var _ TemplateLoader = (*AssetResolver)(nil)
