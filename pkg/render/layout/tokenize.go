package layout

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenize splits a line into alternating runs of non-whitespace and
// whitespace. Concatenating the result yields the input; no token is empty.
func Tokenize(line string) []string {
	var tokens []string
	start := 0
	inSpace := false
	for i, r := range line {
		space := unicode.IsSpace(r)
		if i > start && space != inSpace {
			tokens = append(tokens, line[start:i])
			start = i
		}
		inSpace = space
	}
	if start < len(line) {
		tokens = append(tokens, line[start:])
	}
	return tokens
}

// IsSpace reports whether tok is entirely whitespace.
func IsSpace(tok string) bool {
	return strings.TrimSpace(tok) == ""
}

// splitLines splits text on '\n' and trims a trailing '\r' from each line.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if n := len(l); n > 0 && l[n-1] == '\r' {
			lines[i] = l[:n-1]
		}
	}
	return lines
}

// runeCount is used by the fixed-advance measurer.
func runeCount(s string) int { return utf8.RuneCountInString(s) }
