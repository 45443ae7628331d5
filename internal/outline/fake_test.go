package outline

import (
	"fmt"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/parser"
)

// fakeDoc is an in-memory parser.Document.
type fakeDoc struct {
	meta   map[string]string
	toc    []doctree.TOCEntry
	tocErr error
	pages  []string
	blocks [][]doctree.LayoutBlock

	tocCalls   int
	blockCalls int
	closed     bool
	panicOn    string
}

var _ parser.Document = (*fakeDoc)(nil)

func (d *fakeDoc) Metadata(key string) string { return d.meta[key] }

func (d *fakeDoc) TOC() ([]doctree.TOCEntry, error) {
	d.tocCalls++
	if d.panicOn == "toc" {
		panic("corrupt outline tree")
	}
	return d.toc, d.tocErr
}

func (d *fakeDoc) PageCount() int { return len(d.pages) }

func (d *fakeDoc) PageText(index int) (string, error) {
	if index < 0 || index >= len(d.pages) {
		return "", fmt.Errorf("page %d out of range", index+1)
	}
	return d.pages[index], nil
}

func (d *fakeDoc) PageBlocks(index int) ([]doctree.LayoutBlock, error) {
	d.blockCalls++
	if d.panicOn == "blocks" {
		panic("bad content stream")
	}
	if index < 0 || index >= len(d.pages) {
		return nil, fmt.Errorf("page %d out of range", index+1)
	}
	if index >= len(d.blocks) {
		return nil, nil
	}
	return d.blocks[index], nil
}

func (d *fakeDoc) Close() error {
	d.closed = true
	return nil
}

// textBlock builds a single-line, single-span text block at y0.
func textBlock(text string, size, y0 float64) doctree.LayoutBlock {
	return doctree.LayoutBlock{
		IsText: true,
		Lines:  []doctree.Line{{Spans: []doctree.Span{{Text: text, Size: size}}}},
		BBox:   doctree.BBox{X0: 72, Y0: y0, X1: 500, Y1: y0 + size},
	}
}

// pagesOf returns a fakeDoc with one page per block slice. Page text is the
// block texts joined by newlines.
func pagesOf(blocks ...[]doctree.LayoutBlock) *fakeDoc {
	d := &fakeDoc{meta: map[string]string{}, blocks: blocks}
	for _, page := range blocks {
		text := ""
		for i, b := range page {
			if i > 0 {
				text += "\n"
			}
			for _, l := range b.Lines {
				for _, s := range l.Spans {
					text += s.Text
				}
			}
		}
		d.pages = append(d.pages, text)
	}
	return d
}
