package admitdoc

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/alnah/go-admitdoc/internal/assets"
	"github.com/alnah/go-admitdoc/internal/dateutil"
	"github.com/alnah/go-admitdoc/internal/pipeline"
)

// creator is written into the PDF Creator field.
const creator = "go-admitdoc"

// imageSource resolves header image references.
type imageSource interface {
	Load(ctx context.Context, ref assets.ImageRef, timeout time.Duration) (*assets.HeaderImage, error)
}

// Compile-time interface implementation check.
var _ imageSource = (*assets.ImageLoader)(nil)

// Generator turns admission input into PDF notices.
// It is immutable after NewGenerator and safe for concurrent use.
type Generator struct {
	cfg       generatorConfig
	images    imageSource
	renderer  documentRenderer
	sanitizer *bluemonday.Policy
	logger    *slog.Logger
}

// NewGenerator creates a Generator with the A4 profile and default limits.
// Returns an error if the geometry or date format is invalid.
func NewGenerator(opts ...Option) (*Generator, error) {
	g := &Generator{
		cfg:       defaultGeneratorConfig(),
		sanitizer: bluemonday.StrictPolicy(),
	}
	for _, opt := range opts {
		opt(g)
	}

	if err := g.cfg.geometry.Validate(); err != nil {
		return nil, err
	}
	if _, err := dateutil.ParseDateFormat(g.cfg.dateFormat); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDateFormat, err)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	if g.images == nil {
		g.images = &assets.ImageLoader{BaseDir: g.cfg.imageDir, Client: g.cfg.httpClient}
	}
	if g.renderer == nil {
		g.renderer = fpdfRenderer{}
	}
	return g, nil
}

// Geometry returns the page profile in use.
func (g *Generator) Geometry() PageGeometry { return g.cfg.geometry }

// MinimumAge returns the youngest accepted age.
func (g *Generator) MinimumAge() int { return g.cfg.minimumAge }

// Generate validates in, merges it into its template and renders the notice.
//
// Validation failures wrap ErrValidation and happen before any layout work.
// A header image that cannot be loaded or drawn is logged and dropped; the
// notice is still produced with Result.ImageDropped set. Backend failures
// wrap ErrRender. Internal panics are recovered into errors.
func (g *Generator) Generate(ctx context.Context, in Input) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: internal error: %v", ErrRender, r)
		}
	}()

	now := g.cfg.clock()
	name, err := g.validate(in, now)
	if err != nil {
		return nil, err
	}

	bindings, err := g.bindings(name, in.BirthDate, now)
	if err != nil {
		return nil, err
	}

	content := pipeline.Substitute(pipeline.NormalizeLineEndings(in.Template), bindings)
	wantsImage := pipeline.HasHeaderImage(content)
	content = pipeline.ApplyBold(content, in.BoldPhrases)

	var img *assets.HeaderImage
	dropped := false
	if wantsImage && !in.HeaderImage.IsZero() {
		img, err = g.images.Load(ctx, in.HeaderImage, g.cfg.imageTimeout)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			g.logger.Warn("rendering without header image",
				"admission", in.Admission, "image", in.HeaderImage.String(),
				"error", fmt.Errorf("%w: %v", ErrImageLoad, err))
			img, dropped = nil, true
		}
	}

	content = strings.TrimSpace(pipeline.StripHeaderImage(content))
	segments := pipeline.Split(content)
	g.logger.Debug("content segmented", "admission", in.Admission, "segments", len(segments), "image", img != nil)

	meta := documentMeta{
		Title:     in.Admission.Title(),
		Subject:   name,
		Author:    g.author(),
		Creator:   creator,
		CreatedAt: now,
	}

	pdf, pages, err := g.render(ctx, segments, img, meta)
	if errors.Is(err, ErrImageDecode) && img != nil {
		g.logger.Warn("header image cannot be drawn, rendering without it",
			"admission", in.Admission, "image", in.HeaderImage.String(), "error", err)
		dropped = true
		pdf, pages, err = g.render(ctx, segments, nil, meta)
	}
	if err != nil {
		return nil, err
	}

	return &Result{
		ID:           uuid.NewString(),
		Filename:     Filename(in.Admission, name, now),
		PDF:          pdf,
		Pages:        pages,
		Admission:    in.Admission,
		GeneratedAt:  now,
		ImageDropped: dropped,
	}, nil
}

func (g *Generator) render(ctx context.Context, segments []pipeline.Segment, img *assets.HeaderImage, meta documentMeta) ([]byte, int, error) {
	var box *pipeline.ImageBox
	if img != nil {
		box = &pipeline.ImageBox{NaturalWidth: float64(img.Width), NaturalHeight: float64(img.Height)}
	}

	geo := g.cfg.geometry
	instructions := pipeline.Layout(segments, geo.layoutGeometry(), box, g.renderer.Measurer(geo))
	pages := pipeline.PageCount(instructions)
	g.logger.Debug("layout done", "instructions", len(instructions), "pages", pages)

	pdf, err := g.renderer.Render(ctx, renderJob{
		Geometry:     geo,
		Instructions: instructions,
		Image:        img,
		Meta:         meta,
	})
	if err != nil {
		return nil, 0, err
	}
	return pdf, pages, nil
}

// validate checks in and returns the sanitized patient name.
func (g *Generator) validate(in Input, now time.Time) (string, error) {
	name := g.sanitizeName(in.PatientName)
	if name == "" {
		return "", ErrPatientNameRequired
	}
	if !in.Admission.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidAdmissionType, string(in.Admission))
	}
	if strings.TrimSpace(in.Template) == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyTemplate, in.Admission)
	}

	if !in.BirthDate.IsZero() {
		birth := dateutil.DateOnly(in.BirthDate)
		today := dateutil.DateOnly(now)
		if birth.After(today) {
			return "", fmt.Errorf("%w: %s", ErrBirthDateInFuture, birth.Format(time.DateOnly))
		}
		if age := dateutil.Age(birth, today); age < g.cfg.minimumAge {
			return "", fmt.Errorf("%w: age %d, minimum %d", ErrPatientUnderage, age, g.cfg.minimumAge)
		}
	}
	return name, nil
}

// sanitizeName strips markup and collapses whitespace.
func (g *Generator) sanitizeName(name string) string {
	clean := html.UnescapeString(g.sanitizer.Sanitize(name))
	return strings.Join(strings.Fields(clean), " ")
}

func (g *Generator) bindings(name string, birth, now time.Time) (map[string]string, error) {
	today, err := dateutil.Format(now, g.cfg.dateFormat)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDateFormat, err)
	}
	birthText := BirthDateNotInformed
	if !birth.IsZero() {
		if birthText, err = dateutil.Format(birth, g.cfg.dateFormat); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDateFormat, err)
		}
	}
	return pipeline.Bindings(name, birthText, today), nil
}

func (g *Generator) author() string {
	info := g.cfg.info
	switch {
	case info.Author != "" && info.Organization != "":
		return info.Author + " - " + info.Organization
	case info.Author != "":
		return info.Author
	}
	return info.Organization
}

// ---------------------------------------------------------------------------
// Filenames
// ---------------------------------------------------------------------------

// fallbackSlug names files for patients whose name has no usable characters.
const fallbackSlug = "paciente"

// Filename returns the conventional notice filename:
// <type>_<patient-slug>_<YYYY-MM-DD>.pdf.
func Filename(a AdmissionType, patientName string, at time.Time) string {
	return fmt.Sprintf("%s_%s_%s.pdf", a, Slug(patientName), at.Format(time.DateOnly))
}

// Slug lowercases s, drops accents and joins the remaining letters and
// digits with underscores.
func Slug(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}

	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(plain) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			pendingSep = false
			continue
		}
		pendingSep = true
	}
	if b.Len() == 0 {
		return fallbackSlug
	}
	return b.String()
}
