package pipeline

// Geometry is the page profile used by Layout. All values share one unit.
type Geometry struct {
	Width      float64
	Height     float64
	Margin     float64
	LineHeight float64
	// ImagePadding is the gap left below the header image.
	ImagePadding float64
}

// ContentWidth is the width available to text between the side margins.
func (g Geometry) ContentWidth() float64 {
	return g.Width - 2*g.Margin
}

// TextMeasurer reports the rendered width of text in a given style.
type TextMeasurer interface {
	TextWidth(style Style, text string) float64
}

// ImageBox carries the natural pixel size of the header image.
type ImageBox struct {
	NaturalWidth  float64
	NaturalHeight float64
}

// InstructionKind distinguishes draw instructions.
type InstructionKind int

const (
	KindText InstructionKind = iota
	KindImage
)

// Instruction is one drawing step. Pages are numbered from 1.
// Text instructions use X, Y (baseline), Text, Style and Break; image
// instructions use X, Y, Width and Height.
type Instruction struct {
	Kind    InstructionKind
	Page    int
	X, Y    float64
	Width   float64
	Height  float64
	Text    string
	Style   Style
	Break   BreakKind
	Segment int
}

// Layout wraps segments and places them on pages.
//
// When image is non-nil it is drawn edge to edge at the top of page 1 and
// text starts ImagePadding below it; otherwise text starts at the top margin.
// Every segment starts on a new line at the left margin. Before each line is
// placed, a new page is started if the line would cross the bottom margin.
func Layout(segments []Segment, geo Geometry, image *ImageBox, m TextMeasurer) []Instruction {
	instructions := make([]Instruction, 0, len(segments)*4+1)
	page := 1
	cursor := geo.Margin

	if image != nil && image.NaturalWidth > 0 && image.NaturalHeight > 0 {
		h := image.NaturalHeight * geo.Width / image.NaturalWidth
		instructions = append(instructions, Instruction{
			Kind:   KindImage,
			Page:   1,
			Width:  geo.Width,
			Height: h,
		})
		cursor = h + geo.ImagePadding
	}

	bottom := geo.Height - geo.Margin
	maxWidth := geo.ContentWidth()

	for idx, seg := range segments {
		style := seg.Style
		measure := func(s string) float64 { return m.TextWidth(style, s) }

		for _, line := range Wrap(seg.Text, maxWidth, measure) {
			if cursor+geo.LineHeight > bottom {
				page++
				cursor = geo.Margin
			}
			instructions = append(instructions, Instruction{
				Kind:    KindText,
				Page:    page,
				X:       geo.Margin,
				Y:       cursor,
				Text:    line.Text,
				Style:   style,
				Break:   line.Break,
				Segment: idx,
			})
			cursor += geo.LineHeight
		}
	}

	return instructions
}

// PageCount returns the number of pages the instructions span (at least 1).
func PageCount(instructions []Instruction) int {
	pages := 1
	for _, in := range instructions {
		if in.Page > pages {
			pages = in.Page
		}
	}
	return pages
}

// TextOf reassembles the text carried by text instructions, restoring the
// newlines recorded as hard breaks.
func TextOf(instructions []Instruction) string {
	var n int
	for _, in := range instructions {
		n += len(in.Text) + 1
	}
	buf := make([]byte, 0, n)
	for _, in := range instructions {
		if in.Kind != KindText {
			continue
		}
		buf = append(buf, in.Text...)
		if in.Break == BreakHard {
			buf = append(buf, '\n')
		}
	}
	return string(buf)
}
