package parser

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/layout"
	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// US Letter, used when a page carries no usable MediaBox.
const defaultPageTop = 792.0

var disablePdfcpuConfig sync.Once

// PDFParser handles PDF files.
type PDFParser struct{}

// Parse spools r to a temporary file, since both PDF libraries need random
// access. The file is removed when the returned Document is closed.
func (p *PDFParser) Parse(r io.Reader, filename string) (Document, error) {
	tmp, err := os.CreateTemp("", "docoutline-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	doc, err := OpenPDF(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return nil, err
	}
	doc.cleanup = func() { os.Remove(tmpPath) }
	return doc, nil
}

// PDFDocument reads text geometry with ledongthuc/pdf and the outline with pdfcpu.
type PDFDocument struct {
	file    *os.File
	reader  *pdflib.Reader
	layout  *layout.Analyzer
	pages   map[int][]doctree.LayoutBlock
	cleanup func()
}

// OpenPDF opens the PDF at path.
func OpenPDF(path string) (*PDFDocument, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return &PDFDocument{
		file:   f,
		reader: reader,
		layout: layout.NewAnalyzer(),
		pages:  make(map[int][]doctree.LayoutBlock),
	}, nil
}

// Metadata reads key from the trailer /Info dictionary.
func (d *PDFDocument) Metadata(key string) string {
	if key == "" {
		return ""
	}
	info := d.reader.Trailer().Key("Info")
	if info.IsNull() {
		return ""
	}
	return info.Key(strings.ToUpper(key[:1]) + key[1:]).Text()
}

// TOC flattens the document bookmarks depth first, top level = 1.
func (d *PDFDocument) TOC() ([]doctree.TOCEntry, error) {
	disablePdfcpuConfig.Do(api.DisableConfigDir)

	if _, err := d.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind pdf: %w", err)
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	bookmarks, err := api.Bookmarks(d.file, conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutlineUnreadable, err)
	}

	var entries []doctree.TOCEntry
	flattenBookmarks(bookmarks, 1, &entries)
	return entries, nil
}

func flattenBookmarks(bookmarks []pdfcpu.Bookmark, level int, out *[]doctree.TOCEntry) {
	for _, bm := range bookmarks {
		*out = append(*out, doctree.TOCEntry{Level: level, Title: bm.Title, Page: bm.PageFrom})
		flattenBookmarks(bm.Kids, level+1, out)
	}
}

func (d *PDFDocument) PageCount() int {
	return d.reader.NumPage()
}

func (d *PDFDocument) PageText(index int) (string, error) {
	blocks, err := d.PageBlocks(index)
	if err != nil {
		return "", err
	}
	return layout.Text(blocks), nil
}

// PageBlocks lays out the page's glyphs. Results are cached per page.
func (d *PDFDocument) PageBlocks(index int) ([]doctree.LayoutBlock, error) {
	if blocks, ok := d.pages[index]; ok {
		return blocks, nil
	}
	if index < 0 || index >= d.reader.NumPage() {
		return nil, fmt.Errorf("page %d out of range (%d pages)", index+1, d.reader.NumPage())
	}

	page := d.reader.Page(index + 1)
	if page.V.IsNull() {
		d.pages[index] = nil
		return nil, nil
	}

	content := page.Content()
	glyphs := make([]layout.Glyph, 0, len(content.Text))
	for _, t := range content.Text {
		glyphs = append(glyphs, layout.Glyph{
			S:        t.S,
			Font:     t.Font,
			FontSize: t.FontSize,
			X:        t.X,
			Y:        t.Y,
			W:        t.W,
		})
	}

	blocks := d.layout.Blocks(glyphs, pageTop(page))
	d.pages[index] = blocks
	return blocks, nil
}

func (d *PDFDocument) Close() error {
	err := d.file.Close()
	if d.cleanup != nil {
		d.cleanup()
	}
	return err
}

// pageTop returns the upper edge of the page's MediaBox, which may be
// inherited from an ancestor page tree node.
func pageTop(page pdflib.Page) float64 {
	v := page.V
	for depth := 0; depth < 32 && !v.IsNull(); depth++ {
		box := v.Key("MediaBox")
		if box.Kind() == pdflib.Array && box.Len() == 4 {
			return box.Index(3).Float64()
		}
		v = v.Key("Parent")
	}
	return defaultPageTop
}
