package assets

// TemplateLoader defines the contract for loading default template texts.
// Implementations may load from embedded assets, the filesystem, etc.
type TemplateLoader interface {
	// LoadTemplate loads a template text by name (without .txt extension).
	// Returns ErrTemplateNotFound if the template doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadTemplate(name string) (string, error)
}
