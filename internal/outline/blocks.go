package outline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/parser"
)

// ExtractBlocks collects the text blocks of every page of doc in reading
// order: by page, then top to bottom.
func ExtractBlocks(doc parser.Document) ([]doctree.Block, error) {
	var blocks []doctree.Block
	for i := 0; i < doc.PageCount(); i++ {
		layout, err := doc.PageBlocks(i)
		if err != nil {
			return nil, fmt.Errorf("read blocks of page %d: %w", i+1, err)
		}
		blocks = append(blocks, pageBlocks(layout, i+1)...)
	}
	SortBlocks(blocks)
	return blocks, nil
}

// SortBlocks stable-sorts blocks by (page, y0).
func SortBlocks(blocks []doctree.Block) {
	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].Page != blocks[j].Page {
			return blocks[i].Page < blocks[j].Page
		}
		return blocks[i].Y0 < blocks[j].Y0
	})
}

func pageBlocks(layout []doctree.LayoutBlock, page int) []doctree.Block {
	var out []doctree.Block
	for _, lb := range layout {
		if !lb.IsText {
			continue
		}
		if b, ok := toBlock(lb, page); ok {
			out = append(out, b)
		}
	}
	return out
}

// toBlock concatenates every span of lb. Blocks with no text are dropped.
func toBlock(lb doctree.LayoutBlock, page int) (doctree.Block, bool) {
	var buf strings.Builder
	var size float64
	spans := 0
	for _, line := range lb.Lines {
		for _, span := range line.Spans {
			buf.WriteString(span.Text)
			if spans == 0 || span.Size > size {
				size = span.Size
			}
			spans++
		}
	}

	text := strings.TrimSpace(buf.String())
	if text == "" {
		return doctree.Block{}, false
	}
	return doctree.Block{
		Text: text,
		Size: doctree.RoundSize(size),
		Page: page,
		Y0:   lb.BBox.Y0,
	}, true
}
