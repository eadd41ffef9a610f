package pipeline

import (
	"sort"
	"strings"
)

// span is a half-open byte range [start, end).
type span struct {
	start, end int
}

// ApplyBold wraps every literal occurrence of each phrase in bold markup.
//
// Phrases are matched against the text as it was before marking, never
// against markup inserted by an earlier phrase, so the phrase order does not
// change the result. Overlapping or touching matches are merged into one
// bold run. Text that is already bold is left alone, which makes a second
// application with the same phrases a no-op.
//
// Phrases that are empty or that contain '*' or a line break cannot be
// expressed in the markup and are skipped. Text following an unpaired "**"
// is not marked either, since a new delimiter there would pair with it, and
// neither is an occurrence directly next to a '*' in normal text.
func ApplyBold(content string, phrases []string) string {
	usable := usablePhrases(phrases)
	if len(usable) == 0 || content == "" {
		return content
	}

	var out []Segment
	for _, seg := range Split(content) {
		if seg.Style == StyleBold {
			out = appendMerged(out, seg)
			continue
		}
		for _, piece := range markPhrases(seg.Text, usable) {
			out = appendMerged(out, piece)
		}
	}
	return Join(out)
}

// usablePhrases drops phrases the markup cannot represent and duplicates.
func usablePhrases(phrases []string) []string {
	seen := make(map[string]bool, len(phrases))
	usable := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p == "" || strings.ContainsAny(p, "*\r\n") || seen[p] {
			continue
		}
		seen[p] = true
		usable = append(usable, p)
	}
	return usable
}

// markPhrases splits normal text into normal and bold pieces around every
// phrase occurrence.
func markPhrases(text string, phrases []string) []Segment {
	limit := len(text)
	if stray := strings.Index(text, BoldDelimiter); stray >= 0 {
		limit = stray
	}

	spans := mergeSpans(findSpans(text, limit, phrases))
	if len(spans) == 0 {
		return []Segment{{Style: StyleNormal, Text: text}}
	}

	pieces := make([]Segment, 0, 2*len(spans)+1)
	last := 0
	for _, sp := range spans {
		if sp.start > last {
			pieces = append(pieces, Segment{Style: StyleNormal, Text: text[last:sp.start]})
		}
		pieces = append(pieces, Segment{Style: StyleBold, Text: text[sp.start:sp.end]})
		last = sp.end
	}
	if last < len(text) {
		pieces = append(pieces, Segment{Style: StyleNormal, Text: text[last:]})
	}
	return pieces
}

// findSpans returns the non-overlapping occurrences of each phrase that end
// at or before limit, scanning left to right the way a global literal search
// does. Occurrences with a '*' on either side are dropped.
func findSpans(text string, limit int, phrases []string) []span {
	var spans []span
	for _, p := range phrases {
		from := 0
		for {
			i := strings.Index(text[from:limit], p)
			if i < 0 {
				break
			}
			start := from + i
			end := start + len(p)
			if !touchesAsterisk(text, start, end) {
				spans = append(spans, span{start: start, end: end})
			}
			from = end
		}
	}
	return spans
}

func touchesAsterisk(text string, start, end int) bool {
	return (start > 0 && text[start-1] == '*') || (end < len(text) && text[end] == '*')
}

// mergeSpans sorts spans and coalesces those that overlap or touch.
func mergeSpans(spans []span) []span {
	if len(spans) < 2 {
		return spans
	}
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})

	merged := spans[:1]
	for _, sp := range spans[1:] {
		cur := &merged[len(merged)-1]
		if sp.start <= cur.end {
			if sp.end > cur.end {
				cur.end = sp.end
			}
			continue
		}
		merged = append(merged, sp)
	}
	return merged
}

// appendMerged appends seg, folding it into the previous segment when both
// share a style. Empty bold runs from existing markup are preserved only when
// nothing can absorb them.
func appendMerged(segments []Segment, seg Segment) []Segment {
	if n := len(segments); n > 0 && segments[n-1].Style == seg.Style {
		segments[n-1].Text += seg.Text
		return segments
	}
	return append(segments, seg)
}
