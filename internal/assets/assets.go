package assets

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// DefaultTemplate loads a built-in template text by name using the embedded
// loader. Names are admission type keys such as "voluntaria".
// Returns ErrTemplateNotFound if the template does not exist.
func DefaultTemplate(name string) (string, error) {
	return defaultLoader.LoadTemplate(name)
}
