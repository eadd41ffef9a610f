package assets

import (
	"embed"
	"fmt"
)

//go:embed templates/*.txt
var templates embed.FS

// EmbeddedLoader loads template texts from the embedded filesystem.
// Implements TemplateLoader interface.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadTemplate loads a template text from embedded assets by name.
// The name should not include the .txt extension.
func (e *EmbeddedLoader) LoadTemplate(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	content, err := templates.ReadFile("templates/" + name + ".txt")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}

	return trimFinalNewline(string(content)), nil
}

// trimFinalNewline drops the single newline editors append to text files.
func trimFinalNewline(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\n' {
		s = s[:n-1]
		if n := len(s); n > 0 && s[n-1] == '\r' {
			s = s[:n-1]
		}
	}
	return s
}

// Compile-time interface check.
var _ TemplateLoader = (*EmbeddedLoader)(nil)
