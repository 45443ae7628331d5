package outline

import (
	"strconv"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// FromTOC converts a source table of contents into a title and outline. The
// source is trusted verbatim: every entry is kept, in order, with no
// deduplication and no cap on depth.
func FromTOC(toc []doctree.TOCEntry) (string, []doctree.Entry) {
	if len(toc) == 0 {
		return "", nil
	}

	entries := make([]doctree.Entry, 0, len(toc))
	for _, e := range toc {
		entries = append(entries, doctree.Entry{
			Level: doctree.Level("H" + strconv.Itoa(e.Level)),
			Text:  strings.TrimSpace(e.Title),
			Page:  e.Page,
		})
	}
	return strings.TrimSpace(toc[0].Title), entries
}
