package pipeline

import "strings"

// BoldDelimiter opens and closes a bold run.
const BoldDelimiter = "**"

// Style selects the font weight of a run of text.
type Style int

const (
	StyleNormal Style = iota
	StyleBold
)

// String returns the style name used in logs and test output.
func (s Style) String() string {
	if s == StyleBold {
		return "bold"
	}
	return "normal"
}

// Segment is a contiguous run of text sharing one style.
type Segment struct {
	Style Style
	Text  string
}

// Split splits marked-up content into normal and bold runs.
//
// Delimiter pairs are matched left to right, non-greedily, and a pair never
// spans a line break. A "**" without a partner on the same line stays in the
// surrounding normal text. The result is never empty: content without any
// pair, including the empty string, yields a single normal segment.
func Split(content string) []Segment {
	var segments []Segment
	last := 0
	i := 0
	for {
		start, end, ok := nextBoldPair(content, i)
		if !ok {
			break
		}
		if start > last {
			segments = append(segments, Segment{Style: StyleNormal, Text: content[last:start]})
		}
		segments = append(segments, Segment{
			Style: StyleBold,
			Text:  content[start+len(BoldDelimiter) : end],
		})
		last = end + len(BoldDelimiter)
		i = last
	}

	if last < len(content) {
		segments = append(segments, Segment{Style: StyleNormal, Text: content[last:]})
	}
	if len(segments) == 0 {
		return []Segment{{Style: StyleNormal, Text: content}}
	}
	return segments
}

// nextBoldPair finds the first opening delimiter at or after from whose
// closing delimiter sits on the same line. start and end are the byte
// offsets of the opening and closing delimiters.
func nextBoldPair(content string, from int) (start, end int, ok bool) {
	for from <= len(content)-2*len(BoldDelimiter) {
		rel := strings.Index(content[from:], BoldDelimiter)
		if rel < 0 {
			return 0, 0, false
		}
		start = from + rel
		inner := start + len(BoldDelimiter)
		closeRel := strings.Index(content[inner:], BoldDelimiter)
		if closeRel < 0 {
			return 0, 0, false
		}
		if !strings.ContainsAny(content[inner:inner+closeRel], "\r\n") {
			return start, inner + closeRel, true
		}
		from = start + 1
	}
	return 0, 0, false
}

// Join reassembles segments into markup: bold text is wrapped in delimiters
// and normal text is copied as-is. Join(Split(c)) == c for every c.
func Join(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		if s.Style == StyleBold {
			b.WriteString(BoldDelimiter)
			b.WriteString(s.Text)
			b.WriteString(BoldDelimiter)
			continue
		}
		b.WriteString(s.Text)
	}
	return b.String()
}

// PlainText concatenates segment texts without any markup.
func PlainText(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
	}
	return b.String()
}
