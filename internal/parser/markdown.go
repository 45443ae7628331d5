package parser

import (
	"io"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. ATX and setext
// headings become the document's table of contents.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	root := md.Parser().Parse(reader)

	doc := &staticDocument{
		meta:  map[string]string{},
		pages: []string{string(src)},
	}

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		heading, ok := n.(*ast.Heading)
		if !ok {
			continue
		}
		title := strings.TrimSpace(string(heading.Text(src)))
		if title == "" {
			continue
		}
		doc.toc = append(doc.toc, doctree.TOCEntry{
			Level: heading.Level,
			Title: title,
			Page:  1,
		})
	}

	return doc, nil
}
