package outline

import (
	"strings"

	"github.com/dgallion1/docoutline/internal/script"
)

// Fraction of line-leading numbering markers a page must exceed to count as a
// numbered form. Pages containing CJK or RTL text use the higher bar.
const (
	formThreshold             = 0.3
	multilingualFormThreshold = 0.4
)

// IsNumberedForm reports whether pageText looks like an enumerated form rather
// than a document with headings.
func IsNumberedForm(pageText string) bool {
	lines := nonEmptyLines(pageText)
	if len(lines) == 0 {
		return false
	}

	pattern := script.NumberedPattern()
	matched := 0
	for _, line := range lines {
		if pattern.MatchString(line) {
			matched++
		}
	}

	threshold := formThreshold
	if script.ContainsMultilingual(pageText) {
		threshold = multilingualFormThreshold
	}
	return float64(matched)/float64(len(lines)) > threshold
}

// isLineBreak matches every line boundary recognised by Unicode-aware line
// splitting, not only "\n".
func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

// nonEmptyLines splits text into trimmed lines, dropping blank ones.
func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.FieldsFunc(text, isLineBreak) {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// formTitle is the first non-empty line of the page, or fallback.
func formTitle(pageText, fallback string) string {
	if lines := nonEmptyLines(pageText); len(lines) > 0 {
		return lines[0]
	}
	return fallback
}
