package pipeline

import (
	"strings"
	"unicode/utf8"
)

// BreakKind records how a wrapped line ended.
type BreakKind int

const (
	// BreakNone ends the last line of a segment.
	BreakNone BreakKind = iota
	// BreakSoft ends a line the wrapper broke to fit the width.
	BreakSoft
	// BreakHard ends a line at a newline of the source text.
	BreakHard
)

// Line is one wrapped line. Whitespace at a soft break stays at the end of
// the line it follows, so concatenating Text (plus "\n" after each hard
// break) reproduces the input exactly.
type Line struct {
	Text  string
	Break BreakKind
}

// Wrap breaks text into lines no wider than maxWidth as reported by measure.
// Newlines always start a new line. Words are never split unless a single
// word is wider than maxWidth on its own, in which case it is broken between
// runes. Trailing whitespace does not count toward a line's width.
func Wrap(text string, maxWidth float64, measure func(string) float64) []Line {
	paragraphs := strings.Split(text, "\n")
	lines := make([]Line, 0, len(paragraphs))
	for i, p := range paragraphs {
		wrapped := wrapParagraph(p, maxWidth, measure)
		if i < len(paragraphs)-1 {
			wrapped[len(wrapped)-1].Break = BreakHard
		}
		lines = append(lines, wrapped...)
	}
	return lines
}

// wrapParagraph greedily fills lines with whitespace-terminated tokens.
// It always returns at least one line.
func wrapParagraph(p string, maxWidth float64, measure func(string) float64) []Line {
	var lines []Line
	var cur strings.Builder

	flush := func() {
		lines = append(lines, Line{Text: cur.String(), Break: BreakSoft})
		cur.Reset()
	}

	for _, tok := range tokenize(p) {
		word := strings.TrimRight(tok, " \t")
		if cur.Len() > 0 && measure(cur.String()+word) > maxWidth {
			flush()
		}
		if cur.Len() == 0 && measure(word) > maxWidth {
			chunks := splitRunes(word, maxWidth, measure)
			for _, c := range chunks[:len(chunks)-1] {
				lines = append(lines, Line{Text: c, Break: BreakSoft})
			}
			cur.WriteString(chunks[len(chunks)-1])
			cur.WriteString(tok[len(word):])
			continue
		}
		cur.WriteString(tok)
	}

	lines = append(lines, Line{Text: cur.String(), Break: BreakNone})
	return lines
}

// tokenize splits p into tokens of a word followed by its trailing blanks.
// Leading blanks form a token with an empty word.
func tokenize(p string) []string {
	var tokens []string
	start := 0
	inBlank := false
	for i := 0; i < len(p); i++ {
		blank := p[i] == ' ' || p[i] == '\t'
		if !blank && inBlank {
			tokens = append(tokens, p[start:i])
			start = i
		}
		inBlank = blank
	}
	if start < len(p) {
		tokens = append(tokens, p[start:])
	}
	return tokens
}

// splitRunes breaks a word into chunks that each fit maxWidth, keeping at
// least one rune per chunk.
func splitRunes(word string, maxWidth float64, measure func(string) float64) []string {
	var chunks []string
	start := 0
	for i := 0; i < len(word); {
		_, size := utf8.DecodeRuneInString(word[i:])
		if i > start && measure(word[start:i+size]) > maxWidth {
			chunks = append(chunks, word[start:i])
			start = i
		}
		i += size
	}
	return append(chunks, word[start:])
}
