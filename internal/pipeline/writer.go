package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/schema"
	"gopkg.in/yaml.v3"
)

// Format is an output serialisation.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json" or "yaml" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Ext returns the file extension for outputs in this format.
func (f Format) Ext() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

// Writer serialises outline results.
type Writer struct {
	format   Format
	validate bool
}

func NewWriter(format Format, validate bool) *Writer {
	if format == "" {
		format = FormatJSON
	}
	return &Writer{format: format, validate: validate}
}

func (w *Writer) Format() Format {
	return w.format
}

// OutputPath maps a source file to its result path inside dir.
func (w *Writer) OutputPath(dir, source string) string {
	base := filepath.Base(source)
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+w.format.Ext())
}

// Check validates res against the outline schema when validation is on.
// A failed check does not stop the result from being written.
func (w *Writer) Check(res doctree.Result) error {
	if !w.validate {
		return nil
	}
	if res.Outline == nil {
		res.Outline = []doctree.Entry{}
	}
	return schema.Validate(res)
}

// Encode writes res to out. JSON output keeps non-ASCII text literal and is
// indented by two spaces.
func (w *Writer) Encode(out io.Writer, res doctree.Result) error {
	if res.Outline == nil {
		res.Outline = []doctree.Entry{}
	}

	switch w.format {
	case FormatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(out)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}
}

// WriteFile encodes res to path, replacing any existing file only once the
// new content is complete.
func (w *Writer) WriteFile(path string, res doctree.Result) error {
	var buf bytes.Buffer
	if err := w.Encode(&buf, res); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("chmod output: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close output: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}
