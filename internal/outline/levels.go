package outline

import (
	"sort"

	"github.com/dgallion1/docoutline/internal/doctree"
)

var headingLevels = []doctree.Level{doctree.H1, doctree.H2, doctree.H3, doctree.H4}

// LevelMap is the per-document font size to heading level table, largest size
// first. It holds at most four rows.
type LevelMap struct {
	sizes  []float64
	levels []doctree.Level
}

// Level returns the heading level for size, if size is one of the mapped sizes.
func (m LevelMap) Level(size float64) (doctree.Level, bool) {
	for i, s := range m.sizes {
		if s == size {
			return m.levels[i], true
		}
	}
	return "", false
}

// Len returns the number of mapped sizes.
func (m LevelMap) Len() int {
	return len(m.sizes)
}

// Sizes returns the mapped sizes, largest first.
func (m LevelMap) Sizes() []float64 {
	return append([]float64(nil), m.sizes...)
}

// DetermineHeadingLevels maps the four largest distinct block sizes to H1..H4.
// Fewer distinct sizes simply produce fewer levels.
func DetermineHeadingLevels(blocks []doctree.Block) LevelMap {
	seen := make(map[float64]bool)
	var sizes []float64
	for _, b := range blocks {
		if !seen[b.Size] {
			seen[b.Size] = true
			sizes = append(sizes, b.Size)
		}
	}
	sort.SliceStable(sizes, func(i, j int) bool { return sizes[i] > sizes[j] })

	if len(sizes) > len(headingLevels) {
		sizes = sizes[:len(headingLevels)]
	}
	return LevelMap{
		sizes:  sizes,
		levels: headingLevels[:len(sizes)],
	}
}
