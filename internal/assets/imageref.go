package assets

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// RefKind tags the variant held by an ImageRef.
type RefKind int

const (
	// RefNone means no header image is configured.
	RefNone RefKind = iota
	// RefStored names an image by filename, absolute path or URL.
	RefStored
	// RefInline carries the image bytes in the configuration itself.
	RefInline
)

// String returns the variant name.
func (k RefKind) String() string {
	switch k {
	case RefStored:
		return "stored"
	case RefInline:
		return "inline"
	}
	return "none"
}

const dataURIPrefix = "data:"

// ImageRef references a header image. The zero value is NoImage.
//
// In JSON an ImageRef is a single string: empty for NoImage, a data: URI for
// InlinePayload and anything else for StoredFilename.
type ImageRef struct {
	kind   RefKind
	name   string
	data   []byte
	format Format
}

// NoImage returns the empty reference.
func NoImage() ImageRef {
	return ImageRef{}
}

// StoredFilename references an image by name. An empty name yields NoImage.
func StoredFilename(name string) ImageRef {
	name = strings.TrimSpace(name)
	if name == "" {
		return ImageRef{}
	}
	return ImageRef{kind: RefStored, name: name}
}

// InlinePayload references image bytes held in memory. An empty payload
// yields NoImage. An unknown format is sniffed from the bytes.
func InlinePayload(data []byte, format Format) ImageRef {
	if len(data) == 0 {
		return ImageRef{}
	}
	if format == FormatUnknown {
		format = SniffFormat(data)
	}
	return ImageRef{kind: RefInline, data: data, format: format}
}

// ParseImageRef decodes the string form used in configuration files.
func ParseImageRef(s string) (ImageRef, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return NoImage(), nil
	case strings.HasPrefix(s, dataURIPrefix):
		data, format, err := ParseDataURI(s)
		if err != nil {
			return ImageRef{}, err
		}
		return InlinePayload(data, format), nil
	default:
		return StoredFilename(s), nil
	}
}

// Kind returns the variant tag.
func (r ImageRef) Kind() RefKind { return r.kind }

// IsZero reports whether r is NoImage.
func (r ImageRef) IsZero() bool { return r.kind == RefNone }

// Name returns the stored filename, or "" for other variants.
func (r ImageRef) Name() string { return r.name }

// Data returns the inline bytes, or nil for other variants.
func (r ImageRef) Data() []byte { return r.data }

// Format returns the declared format of an inline payload, or the format
// implied by a stored filename's extension.
func (r ImageRef) Format() Format {
	if r.kind == RefStored {
		return FormatFromExtension(r.name)
	}
	return r.format
}

// IsRemote reports whether a stored reference is an http(s) URL.
func (r ImageRef) IsRemote() bool {
	if r.kind != RefStored {
		return false
	}
	u, err := url.Parse(r.name)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// String returns the configuration form of r.
func (r ImageRef) String() string {
	switch r.kind {
	case RefStored:
		return r.name
	case RefInline:
		return DataURI(r.data, r.format)
	}
	return ""
}

// Equal reports whether two references hold the same variant and value.
func (r ImageRef) Equal(o ImageRef) bool {
	return r.kind == o.kind && r.name == o.name && r.format == o.format && string(r.data) == string(o.data)
}

// MarshalJSON encodes r as a string.
func (r ImageRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes a string or null into r.
func (r *ImageRef) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("image reference must be a string: %w", err)
	}
	if s == nil {
		*r = NoImage()
		return nil
	}
	ref, err := ParseImageRef(*s)
	if err != nil {
		return err
	}
	*r = ref
	return nil
}

// ParseDataURI decodes a base64 data: URI into bytes and a format.
// The declared media type wins; when absent the bytes are sniffed.
func ParseDataURI(s string) ([]byte, Format, error) {
	if !strings.HasPrefix(s, dataURIPrefix) {
		return nil, FormatUnknown, fmt.Errorf("%w: missing %q prefix", ErrInvalidDataURI, dataURIPrefix)
	}
	meta, payload, ok := strings.Cut(s[len(dataURIPrefix):], ",")
	if !ok {
		return nil, FormatUnknown, fmt.Errorf("%w: missing comma", ErrInvalidDataURI)
	}

	params := strings.Split(meta, ";")
	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}

	var data []byte
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
		if err != nil {
			return nil, FormatUnknown, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
		}
		data = decoded
	} else {
		decoded, err := url.PathUnescape(payload)
		if err != nil {
			return nil, FormatUnknown, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
		}
		data = []byte(decoded)
	}
	if len(data) == 0 {
		return nil, FormatUnknown, fmt.Errorf("%w: empty payload", ErrInvalidDataURI)
	}

	format := FormatFromMIME(params[0])
	if format == FormatUnknown {
		format = SniffFormat(data)
	}
	return data, format, nil
}

// DataURI encodes data as a base64 data: URI.
func DataURI(data []byte, format Format) string {
	mime := format.MIMEType()
	if mime == "" {
		mime = "application/octet-stream"
	}
	return dataURIPrefix + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
