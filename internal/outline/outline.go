// Package outline derives a document title and H1-H4 heading outline from a
// parsed document.
//
// Extraction runs as a short-circuiting sequence: a numbered form check on
// page 1, the embedded table of contents, and finally heading inference from
// block font sizes. Every path ends in a terminal that resolves to a
// doctree.Result; failures of any kind resolve to the filename and an empty
// outline.
package outline

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/parser"
)

// Kind names the terminal an extraction ended in.
type Kind string

const (
	KindForm    Kind = "form"
	KindTOC     Kind = "toc"
	KindBlocks  Kind = "blocks"
	KindEmpty   Kind = "empty"
	KindFailure Kind = "failure"
)

// Kinds lists every terminal kind in pipeline order.
var Kinds = []Kind{KindForm, KindTOC, KindBlocks, KindEmpty, KindFailure}

type terminal interface {
	Kind() Kind
	result() doctree.Result
}

type formTerminal struct{ title string }

func (t formTerminal) Kind() Kind             { return KindForm }
func (t formTerminal) result() doctree.Result { return doctree.NewResult(t.title, nil) }

type tocTerminal struct {
	title   string
	outline []doctree.Entry
}

func (t tocTerminal) Kind() Kind             { return KindTOC }
func (t tocTerminal) result() doctree.Result { return doctree.NewResult(t.title, t.outline) }

type blockTerminal struct {
	title   string
	outline []doctree.Entry
}

func (t blockTerminal) Kind() Kind             { return KindBlocks }
func (t blockTerminal) result() doctree.Result { return doctree.NewResult(t.title, t.outline) }

type emptyTerminal struct{ title string }

func (t emptyTerminal) Kind() Kind             { return KindEmpty }
func (t emptyTerminal) result() doctree.Result { return doctree.NewResult(t.title, nil) }

type failureTerminal struct{ filename string }

func (t failureTerminal) Kind() Kind             { return KindFailure }
func (t failureTerminal) result() doctree.Result { return doctree.NewResult(t.filename, nil) }

// OpenFunc opens the document at path.
type OpenFunc func(path string) (parser.Document, error)

// Extractor runs outline extraction. It holds no per-document state and is
// safe for concurrent use.
type Extractor struct {
	open OpenFunc
	log  *slog.Logger
}

// NewExtractor creates an Extractor. A nil open uses parser.Open.
func NewExtractor(open OpenFunc, log *slog.Logger) *Extractor {
	if open == nil {
		open = parser.Open
	}
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{open: open, log: log}
}

// Extract returns the outline of the document at path. It never fails: any
// error yields the filename as title and an empty outline.
func (e *Extractor) Extract(path string) doctree.Result {
	res, _ := e.ExtractWithKind(path)
	return res
}

// ExtractWithKind is Extract, also reporting which terminal produced the
// result.
func (e *Extractor) ExtractWithKind(path string) (doctree.Result, Kind) {
	name := filepath.Base(path)
	t := e.openAndResolve(path, name, e.log.With("file", name))
	return t.result(), t.Kind()
}

// ExtractDocument runs extraction on an already open document. The caller
// keeps ownership of doc.
func (e *Extractor) ExtractDocument(doc parser.Document, name string) (doctree.Result, Kind) {
	log := e.log.With("file", name)
	t := e.guard(name, log, func() (terminal, error) {
		return resolve(doc, name, log)
	})
	return t.result(), t.Kind()
}

func (e *Extractor) openAndResolve(path, name string, log *slog.Logger) terminal {
	return e.guard(name, log, func() (terminal, error) {
		doc, err := e.open(path)
		if err != nil {
			return nil, fmt.Errorf("open document: %w", err)
		}
		defer doc.Close()

		log.Info("opened document", "pages", doc.PageCount())
		return resolve(doc, name, log)
	})
}

// guard converts an error or a panic from fn into the failure terminal.
func (e *Extractor) guard(name string, log *slog.Logger, fn func() (terminal, error)) (t terminal) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("outline extraction failed", "error", fmt.Sprint(r), "panic", true)
			t = failureTerminal{filename: name}
		}
	}()

	t, err := fn()
	if err != nil {
		log.Error("outline extraction failed", "error", err)
		return failureTerminal{filename: name}
	}
	return t
}

func resolve(doc parser.Document, name string, log *slog.Logger) (terminal, error) {
	var firstPage string
	if doc.PageCount() > 0 {
		text, err := doc.PageText(0)
		if err != nil {
			return nil, fmt.Errorf("read page 1: %w", err)
		}
		firstPage = text
	}

	if IsNumberedForm(firstPage) {
		log.Info("numbered form detected")
		return formTerminal{title: formTitle(firstPage, MetadataTitle(doc, name))}, nil
	}

	toc, err := doc.TOC()
	if err != nil {
		if !errors.Is(err, parser.ErrOutlineUnreadable) {
			return nil, fmt.Errorf("read toc: %w", err)
		}
		log.Warn("ignoring unreadable outline", "error", err)
		toc = nil
	}
	if len(toc) > 0 {
		log.Info("using embedded toc", "entries", len(toc))
		title, entries := FromTOC(toc)
		return tocTerminal{title: title, outline: entries}, nil
	}

	fallback := MetadataTitle(doc, name)
	blocks, err := ExtractBlocks(doc)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return emptyTerminal{title: fallback}, nil
	}

	levels := DetermineHeadingLevels(blocks)
	entries := BuildOutline(blocks, levels)
	log.Info("extracted outline", "headings", len(entries), "levels", levels.Len())
	return blockTerminal{title: ResolveTitle(entries, fallback), outline: entries}, nil
}
