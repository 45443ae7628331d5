package outline

import (
	"path/filepath"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/parser"
)

const maxTitleParts = 3

// MetadataTitle returns the trimmed "title" metadata of doc, or the filename
// without its extension.
func MetadataTitle(doc parser.Document, filename string) string {
	if title := strings.TrimSpace(doc.Metadata("title")); title != "" {
		return title
	}
	return stem(filename)
}

// ResolveTitle joins the first three page-1 H1/H2 headings of outline. When
// there are none it returns fallback.
func ResolveTitle(outline []doctree.Entry, fallback string) string {
	var parts []string
	for _, e := range outline {
		if e.Page != 1 || (e.Level != doctree.H1 && e.Level != doctree.H2) {
			continue
		}
		parts = append(parts, e.Text)
		if len(parts) == maxTitleParts {
			break
		}
	}

	if title := strings.TrimSpace(strings.Join(parts, " ")); title != "" {
		return title
	}
	return fallback
}

func stem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
