package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// ErrUnsupported is returned for file extensions no parser handles.
var ErrUnsupported = errors.New("unsupported file extension")

// ErrOutlineUnreadable marks a document whose embedded outline exists but could
// not be decoded. Callers may treat it as an absent table of contents.
var ErrOutlineUnreadable = errors.New("outline unreadable")

// Document is an open source document.
type Document interface {
	// Metadata returns the metadata value for key (e.g. "title"), or "".
	Metadata(key string) string
	// TOC returns the embedded table of contents, empty when there is none.
	TOC() ([]doctree.TOCEntry, error)
	PageCount() int
	// PageText returns the plain text of the 0-based page, one line per row.
	PageText(index int) (string, error)
	// PageBlocks returns the laid-out blocks of the 0-based page.
	PageBlocks(index int) ([]doctree.LayoutBlock, error)
	Close() error
}

// Parser converts raw document bytes into a Document.
type Parser interface {
	Parse(r io.Reader, filename string) (Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".docx":     true,
	".txt":      true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	case ".txt":
		return &TextParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Open opens the document at path. PDFs are read in place; other formats are
// parsed fully into memory.
func Open(path string) (Document, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return OpenPDF(path)
	}

	p, err := ForFile(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	return p.Parse(f, filepath.Base(path))
}

// staticDocument is a fully parsed document with no layout blocks. Formats
// with explicit heading markup expose those headings as their TOC.
type staticDocument struct {
	meta  map[string]string
	toc   []doctree.TOCEntry
	pages []string
}

func (d *staticDocument) Metadata(key string) string {
	return d.meta[strings.ToLower(key)]
}

func (d *staticDocument) TOC() ([]doctree.TOCEntry, error) {
	return d.toc, nil
}

func (d *staticDocument) PageCount() int {
	return len(d.pages)
}

func (d *staticDocument) PageText(index int) (string, error) {
	if index < 0 || index >= len(d.pages) {
		return "", fmt.Errorf("page %d out of range (%d pages)", index+1, len(d.pages))
	}
	return d.pages[index], nil
}

func (d *staticDocument) PageBlocks(index int) ([]doctree.LayoutBlock, error) {
	if index < 0 || index >= len(d.pages) {
		return nil, fmt.Errorf("page %d out of range (%d pages)", index+1, len(d.pages))
	}
	return nil, nil
}

func (d *staticDocument) Close() error {
	return nil
}
