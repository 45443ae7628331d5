package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dgallion1/docoutline/internal/outline"
)

// Summary reports the outcome of a batch run.
type Summary struct {
	InputDir  string         `json:"input_dir"`
	OutputDir string         `json:"output_dir"`
	Files     int            `json:"files"`
	Processed int            `json:"processed"`
	Failed    int            `json:"failed"`
	Warnings  int            `json:"warnings"`
	Kinds     map[string]int `json:"kinds"`
	Failures  []FileFailure  `json:"failures,omitempty"`
	Duration  time.Duration  `json:"duration"`
}

// FileFailure names a file whose result could not be written.
type FileFailure struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// ListInputs returns the files directly inside dir whose extension is in
// exts, sorted by name.
func ListInputs(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !HasExtension(e.Name(), exts) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// HasExtension reports whether name ends in one of exts, ignoring case.
func HasExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range exts {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}

// Batch extracts every matching file in inputDir and writes one result per
// file into outputDir. A file that fails is counted and logged; the run
// continues. The orchestrator must be started.
func (o *Orchestrator) Batch(ctx context.Context, inputDir, outputDir string, exts []string) (Summary, error) {
	start := time.Now()
	sum := Summary{InputDir: inputDir, OutputDir: outputDir, Kinds: make(map[string]int)}

	files, err := ListInputs(inputDir, exts)
	if err != nil {
		return sum, err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return sum, fmt.Errorf("create output dir: %w", err)
	}
	o.log.Info("starting batch", "input", inputDir, "output", outputDir, "files", len(files))

	jobs := make([]*Job, 0, len(files))
	for _, path := range files {
		job := NewJob(filepath.Base(path), path, o.Writer().OutputPath(outputDir, path))
		if err := o.Enqueue(ctx, job); err != nil {
			break
		}
		jobs = append(jobs, job)
	}

	for _, job := range jobs {
		select {
		case <-job.Done():
		case <-ctx.Done():
		}
	}

	sum.Files = len(files)
	for _, job := range jobs {
		snap := job.Snapshot()
		if snap.Kind != "" {
			sum.Kinds[snap.Kind]++
		}
		if snap.Warning != "" {
			sum.Warnings++
		}
		if snap.Status == StatusCompleted {
			sum.Processed++
			continue
		}
		sum.Failed++
		msg := snap.Error
		if msg == "" {
			msg = "not finished"
		}
		sum.Failures = append(sum.Failures, FileFailure{File: snap.Filename, Error: msg})
	}
	sum.Failed += len(files) - len(jobs)
	sum.Duration = time.Since(start)

	o.log.Info("completed batch",
		"processed", sum.Processed,
		"failed", sum.Failed,
		"warnings", sum.Warnings,
		"extraction_failures", sum.Kinds[string(outline.KindFailure)],
		"output", outputDir,
		"duration_ms", sum.Duration.Milliseconds(),
	)
	if err := ctx.Err(); err != nil {
		return sum, fmt.Errorf("batch interrupted: %w", err)
	}
	return sum, nil
}
