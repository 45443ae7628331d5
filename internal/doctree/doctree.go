package doctree

import "math"

// Level is a heading level tag such as "H1".
type Level string

const (
	H1 Level = "H1"
	H2 Level = "H2"
	H3 Level = "H3"
	H4 Level = "H4"
)

// Span is a run of characters sharing one font size within a line.
type Span struct {
	Text string
	Size float64
}

// Line is an ordered sequence of spans.
type Line struct {
	Spans []Span
}

// BBox is a rectangle in top-down page coordinates (Y0 is the top edge).
type BBox struct {
	X0, Y0, X1, Y1 float64
}

// LayoutBlock is a laid-out block as reported by a document provider.
type LayoutBlock struct {
	IsText bool // false for images and drawings
	Lines  []Line
	BBox   BBox
}

// TOCEntry is one row of a source-supplied table of contents.
type TOCEntry struct {
	Level int // 1-based nesting depth
	Title string
	Page  int
}

// Block is the unit of heading inference.
type Block struct {
	Text string
	Size float64 // max span size, rounded to one decimal
	Page int     // 1-based
	Y0   float64
}

// Entry is one heading in the emitted outline.
type Entry struct {
	Level Level  `json:"level" yaml:"level"`
	Text  string `json:"text" yaml:"text"`
	Page  int    `json:"page" yaml:"page"`
}

// Result is the outline derived for a single document.
type Result struct {
	Title   string  `json:"title" yaml:"title"`
	Outline []Entry `json:"outline" yaml:"outline"`
}

// NewResult returns a Result whose outline is never nil, so it encodes as [].
func NewResult(title string, outline []Entry) Result {
	if outline == nil {
		outline = []Entry{}
	}
	return Result{Title: title, Outline: outline}
}

// RoundSize rounds a font size to one decimal place.
func RoundSize(size float64) float64 {
	return math.Round(size*10) / 10
}
