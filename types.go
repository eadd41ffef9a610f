package admitdoc

import (
	"fmt"
	"strings"
	"time"

	"github.com/alnah/go-admitdoc/internal/assets"
	"github.com/alnah/go-admitdoc/internal/pipeline"
	"github.com/alnah/go-admitdoc/internal/templatestore"
)

// ---------------------------------------------------------------------------
// Admission type
// ---------------------------------------------------------------------------

// AdmissionType selects which notice template applies.
type AdmissionType string

// Admission types. The values double as configuration keys.
const (
	Voluntary   AdmissionType = templatestore.KeyVoluntary
	Involuntary AdmissionType = templatestore.KeyInvoluntary
)

// AdmissionTypes lists every admission type in display order.
var AdmissionTypes = []AdmissionType{Voluntary, Involuntary}

// ParseAdmissionType accepts the configuration keys and their English names,
// ignoring case and accents.
func ParseAdmissionType(s string) (AdmissionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "voluntaria", "voluntária", "voluntary":
		return Voluntary, nil
	case "involuntaria", "involuntária", "involuntary":
		return Involuntary, nil
	}
	return "", fmt.Errorf("%w: %q (use voluntaria or involuntaria)", ErrInvalidAdmissionType, s)
}

// Valid reports whether a is a known admission type.
func (a AdmissionType) Valid() bool {
	return a == Voluntary || a == Involuntary
}

// Key returns the configuration key for a.
func (a AdmissionType) Key() string { return string(a) }

// Title is the human-readable notice title.
func (a AdmissionType) Title() string {
	switch a {
	case Voluntary:
		return "Leitura de Normas - Internação Voluntária"
	case Involuntary:
		return "Leitura de Normas - Internação Involuntária"
	}
	return "Leitura de Normas"
}

// ---------------------------------------------------------------------------
// Header image references
// ---------------------------------------------------------------------------

// ImageRef names the header image of a template: none, a stored filename
// (or URL), or an inline payload.
type ImageRef = assets.ImageRef

// ImageFormat is the declared format of an inline image payload.
type ImageFormat = assets.Format

// Image formats accepted for header images.
const (
	ImagePNG  = assets.FormatPNG
	ImageJPEG = assets.FormatJPEG
	ImageSVG  = assets.FormatSVG
	ImageGIF  = assets.FormatGIF
	ImageWEBP = assets.FormatWEBP
	ImageBMP  = assets.FormatBMP
)

// NoImage is the empty ImageRef.
func NoImage() ImageRef { return assets.NoImage() }

// StoredFilename references an image by filename, absolute path or URL.
// Bare filenames are resolved against the generator's image directory.
func StoredFilename(name string) ImageRef { return assets.StoredFilename(name) }

// InlinePayload references image bytes held in memory. An empty format is
// sniffed from the bytes.
func InlinePayload(data []byte, format ImageFormat) ImageRef {
	return assets.InlinePayload(data, format)
}

// ---------------------------------------------------------------------------
// Page geometry
// ---------------------------------------------------------------------------

// Default A4 page profile, in millimeters.
const (
	DefaultPageWidth      = 210.0
	DefaultPageHeight     = 297.0
	DefaultMargin         = 20.0
	DefaultLineHeight     = 7.0
	DefaultFontSize       = 10.0
	DefaultImagePaddingPx = 10.0
	DefaultPxPerUnit      = 2.83465
)

// PageGeometry is the page profile. Lengths are in millimeters; FontSize is
// in points. The gap below the header image is ImagePaddingPx device pixels,
// converted with PxPerUnit.
type PageGeometry struct {
	Width          float64
	Height         float64
	Margin         float64
	LineHeight     float64
	FontSize       float64
	ImagePaddingPx float64
	PxPerUnit      float64
}

// DefaultPageGeometry returns the A4 profile.
func DefaultPageGeometry() PageGeometry {
	return PageGeometry{
		Width:          DefaultPageWidth,
		Height:         DefaultPageHeight,
		Margin:         DefaultMargin,
		LineHeight:     DefaultLineHeight,
		FontSize:       DefaultFontSize,
		ImagePaddingPx: DefaultImagePaddingPx,
		PxPerUnit:      DefaultPxPerUnit,
	}
}

// Validate checks that at least one line of text fits on a page.
func (g PageGeometry) Validate() error {
	switch {
	case g.Width <= 0 || g.Height <= 0:
		return fmt.Errorf("%w: page size %.2fx%.2f must be positive", ErrInvalidGeometry, g.Width, g.Height)
	case g.Margin < 0:
		return fmt.Errorf("%w: negative margin %.2f", ErrInvalidGeometry, g.Margin)
	case 2*g.Margin >= g.Width:
		return fmt.Errorf("%w: margin %.2f leaves no room for text", ErrInvalidGeometry, g.Margin)
	case g.LineHeight <= 0:
		return fmt.Errorf("%w: line height %.2f must be positive", ErrInvalidGeometry, g.LineHeight)
	case g.Margin+g.LineHeight > g.Height-g.Margin:
		return fmt.Errorf("%w: line height %.2f does not fit between margins", ErrInvalidGeometry, g.LineHeight)
	case g.FontSize <= 0:
		return fmt.Errorf("%w: font size %.2f must be positive", ErrInvalidGeometry, g.FontSize)
	case g.ImagePaddingPx < 0:
		return fmt.Errorf("%w: negative image padding %.2f", ErrInvalidGeometry, g.ImagePaddingPx)
	case g.PxPerUnit <= 0:
		return fmt.Errorf("%w: pixel ratio %.5f must be positive", ErrInvalidGeometry, g.PxPerUnit)
	}
	return nil
}

// ImagePadding is the gap below the header image in page units.
func (g PageGeometry) ImagePadding() float64 {
	return g.ImagePaddingPx / g.PxPerUnit
}

func (g PageGeometry) layoutGeometry() pipeline.Geometry {
	return pipeline.Geometry{
		Width:        g.Width,
		Height:       g.Height,
		Margin:       g.Margin,
		LineHeight:   g.LineHeight,
		ImagePadding: g.ImagePadding(),
	}
}

// ---------------------------------------------------------------------------
// Input and result
// ---------------------------------------------------------------------------

// Input holds one patient's admission data and the template to merge it into.
type Input struct {
	PatientName string        // required; markup is stripped
	BirthDate   time.Time     // zero means not informed
	Admission   AdmissionType // required
	Template    string        // required; placeholders are {{NOME_PACIENTE}} etc.
	BoldPhrases []string      // literal phrases rendered in bold
	HeaderImage ImageRef      // drawn only where the template has {{CABECALHO_IMAGEM}}
}

// Result is one generated notice.
type Result struct {
	ID          string        // random UUID
	Filename    string        // suggested filename
	PDF         []byte        // document bytes
	Pages       int           // page count
	Admission   AdmissionType // admission type of the notice
	GeneratedAt time.Time     // generator clock at generation time
	// ImageDropped is set when a configured header image could not be
	// loaded or drawn and the notice was rendered without it.
	ImageDropped bool
}
