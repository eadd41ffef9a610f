package templatestore

import (
	"fmt"
	"slices"

	"github.com/alnah/go-admitdoc/internal/assets"
)

// Admission type keys used in configuration files.
const (
	KeyVoluntary   = "voluntaria"
	KeyInvoluntary = "involuntaria"
)

// Keys lists the admission type keys in display order.
var Keys = []string{KeyVoluntary, KeyInvoluntary}

// Storage keys inherited from the browser version of the tool.
const (
	TemplatesKey = "leitura_normas_templates"
	ConfigKey    = "leitura_normas_template_config"
)

// Entry configures the document of one admission type.
type Entry struct {
	Content     string          `json:"content"`
	HeaderImage assets.ImageRef `json:"headerImage,omitzero"`
	BoldTexts   []string        `json:"boldTexts"`
}

// Config holds one Entry per admission type. A nil entry means the source
// did not provide it.
type Config struct {
	Voluntary   *Entry `json:"voluntaria"`
	Involuntary *Entry `json:"involuntaria"`
}

// Templates holds the plain template texts kept next to Config.
type Templates struct {
	Voluntary   string `json:"voluntaria"`
	Involuntary string `json:"involuntaria"`
}

// Entry returns the entry for an admission type key.
func (c *Config) Entry(key string) (*Entry, error) {
	var e *Entry
	switch key {
	case KeyVoluntary:
		e = c.Voluntary
	case KeyInvoluntary:
		e = c.Involuntary
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAdmissionType, key)
	}
	if e == nil {
		return nil, fmt.Errorf("%w: missing %q", ErrInvalidConfig, key)
	}
	return e, nil
}

// SetEntry replaces the entry for an admission type key.
func (c *Config) SetEntry(key string, e *Entry) error {
	switch key {
	case KeyVoluntary:
		c.Voluntary = e
	case KeyInvoluntary:
		c.Involuntary = e
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAdmissionType, key)
	}
	return nil
}

// Validate requires both admission types to be present.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: empty", ErrInvalidConfig)
	}
	for _, key := range Keys {
		if _, err := c.Entry(key); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := &Config{}
	for _, key := range Keys {
		if e, err := c.Entry(key); err == nil {
			cp := *e
			cp.BoldTexts = slices.Clone(e.BoldTexts)
			_ = out.SetEntry(key, &cp)
		}
	}
	return out
}

// normalize replaces nil bold lists with empty ones so JSON output carries
// [] rather than null.
func (c *Config) normalize() {
	for _, key := range Keys {
		if e, err := c.Entry(key); err == nil && e.BoldTexts == nil {
			e.BoldTexts = []string{}
		}
	}
}

// Text returns the template text for an admission type key.
func (t *Templates) Text(key string) (string, error) {
	switch key {
	case KeyVoluntary:
		return t.Voluntary, nil
	case KeyInvoluntary:
		return t.Involuntary, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAdmissionType, key)
}
