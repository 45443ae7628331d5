package api

import (
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

const maxBatchFiles = 10

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
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

	job, status, err := s.submitUpload(header)
	if err != nil {
		jsonError(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusAccepted, jobAccepted(job))
}

func (s *Server) handleCreateJobs(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r, maxBatchFiles); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}
	if len(files) > maxBatchFiles {
		jsonError(w, fmt.Sprintf("at most %d files per batch", maxBatchFiles), http.StatusBadRequest)
		return
	}

	results := make([]map[string]any, 0, len(files))
	for _, fh := range files {
		job, _, err := s.submitUpload(fh)
		if err != nil {
			results = append(results, map[string]any{
				"filename": sanitizeFilename(fh.Filename),
				"error":    err.Error(),
			})
			continue
		}
		results = append(results, jobAccepted(job))
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"jobs": results})
}

// submitUpload spools fh and queues it. The upload is removed once the job
// finishes.
func (s *Server) submitUpload(fh *multipart.FileHeader) (*pipeline.Job, int, error) {
	up, err := s.saveUpload(fh)
	if err != nil {
		return nil, uploadStatus(err), err
	}

	job := pipeline.NewJob(up.Filename, up.Path, "")
	job.OnFinish(up.Remove)
	if err := s.orchestrator.Submit(job); err != nil {
		up.Remove()
		return nil, http.StatusServiceUnavailable, err
	}
	s.log.Info("queued upload", "job_id", job.ID, "file", up.Filename)
	return job, http.StatusAccepted, nil
}

func jobAccepted(job *pipeline.Job) map[string]any {
	snap := job.Snapshot()
	return map[string]any{
		"job_id":   snap.ID,
		"filename": snap.Filename,
		"status":   snap.Status,
		"poll_url": fmt.Sprintf("/api/jobs/%s", snap.ID),
	}
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}

	snap := job.Snapshot()
	switch snap.Status {
	case pipeline.StatusCompleted:
		res, _ := job.Result()
		w.Header().Set("X-Outline-Kind", snap.Kind)
		writeJSON(w, http.StatusOK, res)
	case pipeline.StatusFailed:
		jsonError(w, "job failed: "+snap.Error, http.StatusInternalServerError)
	default:
		jsonError(w, fmt.Sprintf("job %s is %s", jobID, snap.Status), http.StatusConflict)
	}
}
