package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestForFile_Dispatch(t *testing.T) {
	cases := map[string]any{
		"a.pdf":      &PDFParser{},
		"b.MD":       &MarkdownParser{},
		"c.markdown": &MarkdownParser{},
		"d.htm":      &HTMLParser{},
		"e.docx":     &DOCXParser{},
		"f.txt":      &TextParser{},
	}
	for name, want := range cases {
		p, err := ForFile(name)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", name, err)
			continue
		}
		if gotType, wantType := typeName(p), typeName(want); gotType != wantType {
			t.Errorf("%s: expected %s, got %s", name, wantType, gotType)
		}
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *PDFParser:
		return "pdf"
	case *MarkdownParser:
		return "markdown"
	case *HTMLParser:
		return "html"
	case *DOCXParser:
		return "docx"
	case *TextParser:
		return "text"
	}
	return "unknown"
}

func TestForFile_Unsupported(t *testing.T) {
	_, err := ForFile("sheet.csv")
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
	if IsSupportedExtension("sheet.csv") {
		t.Error("expected .csv to be unsupported")
	}
	if !IsSupportedExtension("REPORT.PDF") {
		t.Error("expected extension check to be case-insensitive")
	}
}

func TestOpen_TextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "form.txt")
	if err := os.WriteFile(path, []byte("1. Name\n2. Address"), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer doc.Close()
	if doc.PageCount() != 1 {
		t.Errorf("expected 1 page, got %d", doc.PageCount())
	}
}

func TestOpen_InvalidPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	if err := os.WriteFile(path, []byte("not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Error("expected error opening an invalid pdf")
	}
}

func TestOpen_MissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.md")); err == nil {
		t.Error("expected error opening a missing file")
	}
}
