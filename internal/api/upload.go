package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docoutline/internal/parser"
)

var (
	errTooLarge        = errors.New("file exceeds max size")
	errUnsupportedType = errors.New("unsupported file type")
)

// upload is a multipart file spooled to a private temp directory.
type upload struct {
	Filename string
	Path     string
	dir      string
}

func (u *upload) Remove() {
	if u.dir != "" {
		os.RemoveAll(u.dir)
	}
}

// parseForm limits the request body and parses the multipart form.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request, files int64) error {
	// Extra 1MB per file for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, files*(s.cfg.MaxUploadBytes+1<<20))
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return fmt.Errorf("invalid multipart form: %w", err)
	}
	return nil
}

// saveUpload writes fh to disk under its sanitised name so the extension
// selects the document parser.
func (s *Server) saveUpload(fh *multipart.FileHeader) (*upload, error) {
	filename := sanitizeFilename(fh.Filename)
	if !parser.IsSupportedExtension(filename) {
		return nil, fmt.Errorf("%w: %s", errUnsupportedType, filepath.Ext(filename))
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dir, err := os.MkdirTemp("", "docoutline-upload-*")
	if err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	u := &upload{Filename: filename, Path: filepath.Join(dir, filename), dir: dir}

	dst, err := os.Create(u.Path)
	if err != nil {
		u.Remove()
		return nil, fmt.Errorf("create upload file: %w", err)
	}
	n, err := io.Copy(dst, io.LimitReader(src, s.cfg.MaxUploadBytes+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		u.Remove()
		return nil, fmt.Errorf("write upload file: %w", err)
	}
	if n > s.cfg.MaxUploadBytes {
		u.Remove()
		return nil, fmt.Errorf("%w (%d bytes)", errTooLarge, s.cfg.MaxUploadBytes)
	}
	return u, nil
}

func uploadStatus(err error) int {
	if errors.Is(err, errTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, errUnsupportedType) {
		return http.StatusUnsupportedMediaType
	}
	return http.StatusBadRequest
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "" || name == "." || name == ".." || name == "/" {
		name = "unnamed"
	}
	return name
}
