package parser

import (
	"io"
	"strings"
)

// TextParser handles plain text files. Form feeds separate pages, matching
// the output of pdftotext. Plain text carries no TOC and no geometry.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	text := strings.ReplaceAll(string(src), "\r\n", "\n")
	doc := &staticDocument{meta: map[string]string{}}
	if strings.TrimSpace(text) == "" {
		return doc, nil
	}
	doc.pages = strings.Split(text, "\f")
	return doc, nil
}
