package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/stats"
)

// stubExtractor reads the uploaded file and uses its first line as title.
type stubExtractor struct{}

func (stubExtractor) ExtractWithKind(path string) (doctree.Result, outline.Kind) {
	data, err := os.ReadFile(path)
	if err != nil {
		return doctree.NewResult(filepath.Base(path), nil), outline.KindFailure
	}
	title := strings.SplitN(string(data), "\n", 2)[0]
	return doctree.NewResult(title, []doctree.Entry{{Level: doctree.H1, Text: title, Page: 1}}), outline.KindBlocks
}

func newTestServer(t *testing.T, apiKey string) *Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{APIKey: apiKey, MaxUploadBytes: 1 << 20}
	orch := pipeline.NewOrchestrator(pipeline.Options{WorkerCount: 1, MaxQueueSize: 4},
		stubExtractor{}, nil, stats.NewRecorder(time.Hour), log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)
	return NewServer(orch, stubExtractor{}, log, cfg)
}

func multipartBody(t *testing.T, field string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := mw.CreateFormFile(field, name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(content))
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func postFiles(t *testing.T, s *Server, path, field string, files map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, field, files)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, "secret")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != `{"status":"ok"}` {
		t.Errorf("expected ok health, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestAuth_RequiredWhenKeySet(t *testing.T) {
	s := newTestServer(t, "secret")

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with token, got %d", rec.Code)
	}
}

func TestAuth_APIKeyHeader(t *testing.T) {
	s := newTestServer(t, "secret")
	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("X-API-Key", "secret")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with X-API-Key, got %d", rec.Code)
	}
}

func TestRequestLogger_RouteAndKind(t *testing.T) {
	var logs bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&logs, nil))
	orch := pipeline.NewOrchestrator(pipeline.Options{}, stubExtractor{}, nil, stats.NewRecorder(time.Hour), log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)
	s := NewServer(orch, stubExtractor{}, log, config.Config{MaxUploadBytes: 1 << 20})

	if rec := postFiles(t, s, "/api/outline", "file", map[string]string{"a.txt": "A"}); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/abc", nil))

	out := logs.String()
	for _, want := range []string{`"route":"/api/outline"`, `"kind":"blocks"`, `"route":"/api/jobs/{jobID}"`, `"level":"WARN"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log to contain %s, got:\n%s", want, out)
		}
	}
}

func TestOutline_Sync(t *testing.T) {
	s := newTestServer(t, "")
	rec := postFiles(t, s, "/api/outline", "file", map[string]string{"notes.txt": "Überblick <intro>\nbody"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("X-Outline-Kind"); got != "blocks" {
		t.Errorf("expected kind header blocks, got %q", got)
	}
	if !strings.Contains(rec.Body.String(), "Überblick <intro>") {
		t.Errorf("expected literal title in body, got %s", rec.Body.String())
	}

	var res doctree.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Title != "Überblick <intro>" || len(res.Outline) != 1 {
		t.Errorf("unexpected result %+v", res)
	}

	// The synchronous path feeds the stats recorder.
	if snap := s.orchestrator.Stats().Snapshot(); snap.Documents != 1 {
		t.Errorf("expected 1 recorded document, got %d", snap.Documents)
	}
}

func TestOutline_UnsupportedType(t *testing.T) {
	s := newTestServer(t, "")
	rec := postFiles(t, s, "/api/outline", "file", map[string]string{"sheet.csv": "a,b"})
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("expected 415, got %d", rec.Code)
	}
}

func TestOutline_MissingFile(t *testing.T) {
	s := newTestServer(t, "")
	rec := postFiles(t, s, "/api/outline", "other", map[string]string{"a.pdf": "x"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestOutline_TooLarge(t *testing.T) {
	s := newTestServer(t, "")
	s.cfg.MaxUploadBytes = 4
	rec := postFiles(t, s, "/api/outline", "file", map[string]string{"big.txt": "0123456789"})
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rec.Code)
	}
}

func TestJobs_Lifecycle(t *testing.T) {
	s := newTestServer(t, "")
	rec := postFiles(t, s, "/api/jobs", "file", map[string]string{"memo.md": "Memo\ntext"})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d %s", rec.Code, rec.Body.String())
	}
	var accepted map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &accepted); err != nil {
		t.Fatal(err)
	}
	jobID, _ := accepted["job_id"].(string)
	if jobID == "" || accepted["poll_url"] != "/api/jobs/"+jobID {
		t.Fatalf("unexpected accepted body %v", accepted)
	}

	job := s.orchestrator.GetJob(jobID)
	select {
	case <-job.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for job")
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/"+jobID, nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"completed"`) {
		t.Errorf("expected completed status, got %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/"+jobID+"/result", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"title":"Memo"`) {
		t.Errorf("expected result, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestJobs_ResultPending(t *testing.T) {
	s := newTestServer(t, "")
	job := pipeline.NewJob("slow.pdf", "/nowhere/slow.pdf", "")
	// Registered but never queued, so it stays pending.
	stub := pipeline.NewOrchestrator(pipeline.Options{MaxQueueSize: 1}, stubExtractor{}, nil, nil, s.log)
	if err := stub.Submit(job); err != nil {
		t.Fatal(err)
	}
	s.orchestrator = stub

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/"+job.ID+"/result", nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
}

func TestJobs_NotFound(t *testing.T) {
	s := newTestServer(t, "")
	for _, path := range []string{"/api/jobs/missing", "/api/jobs/missing/result"} {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, rec.Code)
		}
	}
}

func TestJobs_Batch(t *testing.T) {
	s := newTestServer(t, "")
	rec := postFiles(t, s, "/api/jobs/batch", "files", map[string]string{
		"a.txt":   "A",
		"b.pdf":   "%PDF",
		"bad.xls": "x",
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	var body struct {
		Jobs []map[string]any `json:"jobs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Jobs) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(body.Jobs))
	}
	errorsSeen := 0
	for _, j := range body.Jobs {
		if _, ok := j["error"]; ok {
			errorsSeen++
		}
	}
	if errorsSeen != 1 {
		t.Errorf("expected 1 rejected file, got %d", errorsSeen)
	}
}

func TestSchemaEndpoint(t *testing.T) {
	s := newTestServer(t, "secret")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/schema", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"outline"`) {
		t.Errorf("expected schema document, got %d", rec.Code)
	}
}

func TestOutline_DoubleDotKeepsExtension(t *testing.T) {
	s := newTestServer(t, "")
	rec := postFiles(t, s, "/api/outline", "file", map[string]string{"notes..txt": "Notes"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"../../etc/passwd.pdf": "passwd.pdf",
		`C:\docs\report.pdf`:   "report.pdf",
		"report..pdf":          "report..pdf",
		"../..":                "unnamed",
		"":                     "unnamed",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q): expected %q, got %q", in, want, got)
		}
	}
}
