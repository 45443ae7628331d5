package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dgallion1/docoutline/internal/schema"
)

// handleOutline extracts the outline of the uploaded file synchronously.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r, 1); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	_, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	up, err := s.saveUpload(header)
	if err != nil {
		jsonError(w, err.Error(), uploadStatus(err))
		return
	}
	defer up.Remove()

	start := time.Now()
	res, kind := s.extractor.ExtractWithKind(up.Path)
	if rec := s.orchestrator.Stats(); rec != nil {
		rec.Record(string(kind), time.Since(start))
	}

	w.Header().Set("X-Outline-Kind", string(kind))
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/schema+json")
	w.Write(schema.Source())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	rec := s.orchestrator.Stats()
	if rec == nil {
		jsonError(w, "extraction stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"extraction":  rec.Snapshot(),
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}

// writeJSON encodes v with HTML escaping off so headings stay literal.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
