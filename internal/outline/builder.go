package outline

import (
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// Page-1 lines ending in one of these read as labels, not top-level headings.
var labelSuffixes = []string{":", "：", "・"}

type entryKey struct {
	level doctree.Level
	text  string
	page  int
}

// BuildOutline assigns each block its heading level and returns the outline
// in block order. Blocks without a level are skipped and repeated
// (level, text, page) triples keep only their first occurrence.
func BuildOutline(blocks []doctree.Block, levels LevelMap) []doctree.Entry {
	outline := []doctree.Entry{}
	seen := make(map[entryKey]bool)

	for _, b := range blocks {
		level, ok := levels.Level(b.Size)
		if !ok {
			continue
		}
		if b.Page == 1 && isLabel(b.Text) {
			level = doctree.H3
		}

		key := entryKey{level: level, text: b.Text, page: b.Page}
		if seen[key] {
			continue
		}
		seen[key] = true
		outline = append(outline, doctree.Entry{Level: level, Text: b.Text, Page: b.Page})
	}
	return outline
}

func isLabel(text string) bool {
	text = strings.TrimRight(text, " \t\r\n")
	for _, suffix := range labelSuffixes {
		if strings.HasSuffix(text, suffix) {
			return true
		}
	}
	return false
}
