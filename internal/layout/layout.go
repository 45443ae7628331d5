// Package layout groups positioned glyphs into spans, lines and blocks.
//
// Input coordinates are PDF user space: X grows to the right and Y grows
// upward, with Y at the glyph baseline. Output bounding boxes are top-down,
// so a smaller Y0 means closer to the top of the page.
package layout

import (
	"math"
	"sort"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// Glyph is a single piece of text drawn on a page.
type Glyph struct {
	S        string
	Font     string
	FontSize float64
	X, Y, W  float64
}

// Config controls grouping thresholds. All values are fractions of a font size
// or line height.
type Config struct {
	// LineTolerance is the maximum baseline difference, as a fraction of the
	// larger font size, for two glyphs to share a line.
	LineTolerance float64

	// WordGap is the horizontal gap, as a fraction of font size, above which a
	// space is inserted between glyphs.
	WordGap float64

	// BlockGap is the vertical gap, as a fraction of the average line height,
	// above which a new block starts.
	BlockGap float64

	// SizeChange is the relative difference in dominant font size between two
	// lines above which they are kept in separate blocks.
	SizeChange float64
}

// DefaultConfig returns thresholds that work for typical single-column documents.
func DefaultConfig() Config {
	return Config{
		LineTolerance: 0.5,
		WordGap:       0.25,
		BlockGap:      1.5,
		SizeChange:    0.15,
	}
}

// Analyzer turns glyphs into layout blocks.
type Analyzer struct {
	cfg Config
}

// NewAnalyzer creates an Analyzer with DefaultConfig.
func NewAnalyzer() *Analyzer {
	return &Analyzer{cfg: DefaultConfig()}
}

// NewAnalyzerWithConfig creates an Analyzer with custom thresholds.
func NewAnalyzerWithConfig(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

type line struct {
	spans []doctree.Span

	top, bottom float64 // PDF space, top > bottom
	left, right float64
	maxSize     float64
}

func (l *line) height() float64 {
	return l.top - l.bottom
}

// Blocks groups the glyphs of one page into text blocks in top-to-bottom order.
// pageTop is the Y coordinate of the page's top edge.
func (a *Analyzer) Blocks(glyphs []Glyph, pageTop float64) []doctree.LayoutBlock {
	lines := a.groupIntoLines(filterGlyphs(glyphs))
	if len(lines) == 0 {
		return nil
	}

	var blocks []doctree.LayoutBlock
	current := []*line{lines[0]}
	for i := 1; i < len(lines); i++ {
		prev, curr := lines[i-1], lines[i]
		if a.startsBlock(prev, curr) {
			blocks = append(blocks, toBlock(current, pageTop))
			current = nil
		}
		current = append(current, curr)
	}
	blocks = append(blocks, toBlock(current, pageTop))
	return blocks
}

// Text renders blocks as plain text, one line per laid-out line.
func Text(blocks []doctree.LayoutBlock) string {
	var lines []string
	for _, b := range blocks {
		for _, l := range b.Lines {
			var sb strings.Builder
			for _, s := range l.Spans {
				sb.WriteString(s.Text)
			}
			if t := strings.TrimSpace(sb.String()); t != "" {
				lines = append(lines, t)
			}
		}
	}
	return strings.Join(lines, "\n")
}

// filterGlyphs drops empty glyphs. Whitespace glyphs are kept as word
// separators.
func filterGlyphs(glyphs []Glyph) []Glyph {
	out := make([]Glyph, 0, len(glyphs))
	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		out = append(out, g)
	}
	return out
}

func isSpace(g Glyph) bool {
	return strings.TrimSpace(g.S) == ""
}

// groupIntoLines sorts glyphs top to bottom and clusters them by baseline.
func (a *Analyzer) groupIntoLines(glyphs []Glyph) []*line {
	if len(glyphs) == 0 {
		return nil
	}

	sorted := make([]Glyph, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var groups [][]Glyph
	current := []Glyph{sorted[0]}
	baseline := sorted[0].Y
	for _, g := range sorted[1:] {
		tolerance := math.Max(g.FontSize, current[0].FontSize) * a.cfg.LineTolerance
		if math.Abs(g.Y-baseline) <= tolerance {
			current = append(current, g)
			continue
		}
		groups = append(groups, current)
		current = []Glyph{g}
		baseline = g.Y
	}
	groups = append(groups, current)

	lines := make([]*line, 0, len(groups))
	for _, group := range groups {
		sort.SliceStable(group, func(i, j int) bool { return group[i].X < group[j].X })
		if l := a.buildLine(group); len(l.spans) > 0 {
			lines = append(lines, l)
		}
	}
	return lines
}

// buildLine merges a baseline-sorted group into spans and records its extent.
// A run of whitespace glyphs becomes one space. Glyphs without widths share an
// X, so the gap rule only applies when there is no explicit space.
func (a *Analyzer) buildLine(glyphs []Glyph) *line {
	l := &line{
		top:    math.Inf(-1),
		bottom: math.Inf(1),
		left:   math.Inf(1),
		right:  math.Inf(-1),
	}

	var span *doctree.Span
	var spanFont string
	prevEnd := 0.0
	pendingSpace := false
	for _, g := range glyphs {
		if isSpace(g) {
			pendingSpace = span != nil
			continue
		}
		size := doctree.RoundSize(g.FontSize)
		needSpace := span != nil && (pendingSpace || g.X-prevEnd > a.cfg.WordGap*math.Max(g.FontSize, 1))
		pendingSpace = false

		if span == nil || g.Font != spanFont || size != span.Size {
			if span != nil {
				if needSpace {
					span.Text += " "
				}
				l.spans = append(l.spans, *span)
			}
			span = &doctree.Span{Size: size}
			spanFont = g.Font
		} else if needSpace {
			span.Text += " "
		}
		span.Text += g.S
		prevEnd = g.X + g.W

		l.top = math.Max(l.top, g.Y+g.FontSize)
		l.bottom = math.Min(l.bottom, g.Y-0.2*g.FontSize)
		l.left = math.Min(l.left, g.X)
		l.right = math.Max(l.right, g.X+g.W)
		l.maxSize = math.Max(l.maxSize, g.FontSize)
	}
	if span != nil {
		l.spans = append(l.spans, *span)
	}
	return l
}

// startsBlock reports whether curr should open a new block after prev.
func (a *Analyzer) startsBlock(prev, curr *line) bool {
	gap := prev.bottom - curr.top
	avgHeight := (prev.height() + curr.height()) / 2
	if gap > avgHeight*a.cfg.BlockGap {
		return true
	}

	overlap := prev.right >= curr.left && curr.right >= prev.left
	if !overlap {
		return true
	}

	larger := math.Max(prev.maxSize, curr.maxSize)
	if larger > 0 && math.Abs(prev.maxSize-curr.maxSize)/larger > a.cfg.SizeChange {
		return true
	}
	return false
}

func toBlock(lines []*line, pageTop float64) doctree.LayoutBlock {
	b := doctree.LayoutBlock{IsText: true}
	top, bottom := math.Inf(-1), math.Inf(1)
	left, right := math.Inf(1), math.Inf(-1)
	for _, l := range lines {
		b.Lines = append(b.Lines, doctree.Line{Spans: l.spans})
		top = math.Max(top, l.top)
		bottom = math.Min(bottom, l.bottom)
		left = math.Min(left, l.left)
		right = math.Max(right, l.right)
	}
	b.BBox = doctree.BBox{
		X0: left,
		Y0: pageTop - top,
		X1: right,
		Y1: pageTop - bottom,
	}
	return b
}
