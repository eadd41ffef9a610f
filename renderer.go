package admitdoc

// Notes:
// - gofpdf core fonts index glyph widths by single bytes, so every string is
//   NFC-normalized and encoded to Windows-1252 before it is measured or drawn.
//   Runes outside the code page become '?'.
// - The same encoding feeds fontMeasurer and fpdfRenderer, so layout widths
//   match what is drawn.

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"

	"github.com/alnah/go-admitdoc/internal/assets"
	"github.com/alnah/go-admitdoc/internal/pipeline"
)

const (
	fontFamily      = "Helvetica"
	headerImageName = "header"
	pdfUnit         = "mm"
)

// documentMeta is written into the PDF information dictionary.
type documentMeta struct {
	Title     string
	Author    string
	Creator   string
	Subject   string
	CreatedAt time.Time
}

// renderJob is everything the backend needs to draw one notice.
type renderJob struct {
	Geometry     PageGeometry
	Instructions []pipeline.Instruction
	Image        *assets.HeaderImage
	Meta         documentMeta
}

// documentRenderer draws laid-out instructions into a PDF.
type documentRenderer interface {
	Measurer(g PageGeometry) pipeline.TextMeasurer
	Render(ctx context.Context, job renderJob) ([]byte, error)
}

// Compile-time interface implementation checks.
var (
	_ documentRenderer      = (*fpdfRenderer)(nil)
	_ pipeline.TextMeasurer = (*fontMeasurer)(nil)
)

// fpdfRenderer is the gofpdf backend. It holds no state; each Render call
// builds its own document.
type fpdfRenderer struct{}

func newPDF(g PageGeometry) *gofpdf.Fpdf {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        pdfUnit,
		Size:           gofpdf.SizeType{Wd: g.Width, Ht: g.Height},
	})
	pdf.SetMargins(g.Margin, g.Margin, g.Margin)
	pdf.SetAutoPageBreak(false, 0)
	return pdf
}

// Measurer returns a TextMeasurer using the Helvetica metrics at g.FontSize.
func (fpdfRenderer) Measurer(g PageGeometry) pipeline.TextMeasurer {
	return &fontMeasurer{pdf: newPDF(g), size: g.FontSize, style: -1}
}

// Render draws job and returns the PDF bytes. A header image that cannot be
// drawn yields ErrImageDecode; any other backend failure yields ErrRender.
func (fpdfRenderer) Render(ctx context.Context, job renderJob) ([]byte, error) {
	pdf := newPDF(job.Geometry)
	pdf.SetTitle(job.Meta.Title, true)
	pdf.SetSubject(job.Meta.Subject, true)
	pdf.SetAuthor(job.Meta.Author, true)
	pdf.SetCreator(job.Meta.Creator, true)
	if !job.Meta.CreatedAt.IsZero() {
		pdf.SetCreationDate(job.Meta.CreatedAt)
	}

	page := 0
	style := pipeline.Style(-1)
	for _, in := range job.Instructions {
		for page < in.Page {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			pdf.AddPage()
			page++
			style = -1
		}

		switch in.Kind {
		case pipeline.KindImage:
			if job.Image == nil {
				return nil, fmt.Errorf("%w: image instruction without image", ErrRender)
			}
			if err := drawImage(pdf, job.Image, in); err != nil {
				return nil, err
			}
		case pipeline.KindText:
			if in.Style != style {
				pdf.SetFont(fontFamily, fontStyle(in.Style), job.Geometry.FontSize)
				style = in.Style
			}
			pdf.Text(in.X, in.Y, encodeText(in.Text))
		}
	}
	if page == 0 {
		pdf.AddPage()
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	return buf.Bytes(), nil
}

// drawImage places the header image. gofpdf errors are sticky, so a failure
// here is checked immediately to tell it apart from text failures.
func drawImage(pdf *gofpdf.Fpdf, img *assets.HeaderImage, in pipeline.Instruction) error {
	switch img.Format {
	case assets.FormatSVG:
		sig, err := gofpdf.SVGBasicParse(img.Data)
		if err != nil {
			return fmt.Errorf("%w: svg: %v", ErrImageDecode, err)
		}
		if sig.Wd <= 0 {
			return fmt.Errorf("%w: svg has no width", ErrImageDecode)
		}
		pdf.SetXY(in.X, in.Y)
		pdf.SetLineWidth(0.25)
		pdf.SVGBasicWrite(&sig, in.Width/sig.Wd)

	case assets.FormatPNG, assets.FormatJPEG, assets.FormatGIF:
		opts := gofpdf.ImageOptions{ImageType: string(img.Format)}
		pdf.RegisterImageOptionsReader(headerImageName, opts, bytes.NewReader(img.Data))
		pdf.ImageOptions(headerImageName, in.X, in.Y, in.Width, in.Height, false, opts, 0, "")

	default:
		return fmt.Errorf("%w: format %q", ErrImageDecode, string(img.Format))
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	return nil
}

func fontStyle(s pipeline.Style) string {
	if s == pipeline.StyleBold {
		return "B"
	}
	return ""
}

// fontMeasurer measures text with gofpdf core font metrics. It is not safe
// for concurrent use; Generate creates one per call.
type fontMeasurer struct {
	pdf   *gofpdf.Fpdf
	size  float64
	style pipeline.Style
}

// TextWidth returns the width of text in page units.
func (m *fontMeasurer) TextWidth(style pipeline.Style, text string) float64 {
	if style != m.style {
		m.pdf.SetFont(fontFamily, fontStyle(style), m.size)
		m.style = style
	}
	return m.pdf.GetStringWidth(encodeText(text))
}

// encodeText converts UTF-8 text to the Windows-1252 bytes core fonts expect.
func encodeText(s string) string {
	s = norm.NFC.String(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\t' {
			r = ' '
		}
		if c, ok := charmap.Windows1252.EncodeRune(r); ok {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('?')
	}
	return b.String()
}
