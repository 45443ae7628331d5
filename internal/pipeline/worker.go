package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/stats"
)

// Extractor is the outline extraction the worker runs per job.
type Extractor interface {
	ExtractWithKind(path string) (doctree.Result, outline.Kind)
}

// Worker processes a single document job.
type Worker struct {
	extractor Extractor
	writer    *Writer
	stats     *stats.Recorder
	log       *slog.Logger
}

func NewWorker(extractor Extractor, writer *Writer, rec *stats.Recorder, log *slog.Logger) *Worker {
	return &Worker{
		extractor: extractor,
		writer:    writer,
		stats:     rec,
		log:       log,
	}
}

// Process extracts the outline of job.Source and writes it to job.Output
// when one is set. Extraction itself never fails; only writing can.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "file", job.Filename)

	if err := ctx.Err(); err != nil {
		job.Fail(fmt.Errorf("cancelled before start: %w", err))
		return
	}

	job.SetStatus(StatusExtracting)
	start := time.Now()
	res, kind := w.extractor.ExtractWithKind(job.Source)
	elapsed := time.Since(start)
	if w.stats != nil {
		w.stats.Record(string(kind), elapsed)
	}
	job.SetResult(res, string(kind))

	if err := w.writer.Check(res); err != nil {
		log.Warn("result does not match outline schema", "kind", kind, "error", err)
		job.SetWarning(err.Error())
	}

	if job.Output != "" {
		job.SetStatus(StatusWriting)
		if err := w.writer.WriteFile(job.Output, res); err != nil {
			log.Error("failed to process", "error", err)
			job.Fail(fmt.Errorf("write %s: %w", job.Output, err))
			return
		}
	}

	log.Info("processed document",
		"kind", kind,
		"headings", len(res.Outline),
		"duration_ms", elapsed.Milliseconds(),
	)
	job.Complete()
}
