package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/fsnotify/fsnotify"
)

var errStillWriting = errors.New("file still being written")

// WatchOptions configures a Watcher.
type WatchOptions struct {
	InputDir   string
	OutputDir  string
	Extensions []string
	// A file is ready once its size is unchanged across one Settle interval.
	Settle   time.Duration
	Attempts int
}

// Watcher submits files dropped into a directory to the orchestrator.
type Watcher struct {
	orch *Orchestrator
	opts WatchOptions
	log  *slog.Logger

	mu      sync.Mutex
	pending map[string]bool
	wg      sync.WaitGroup
}

func NewWatcher(orch *Orchestrator, opts WatchOptions, log *slog.Logger) *Watcher {
	if opts.Settle <= 0 {
		opts.Settle = 500 * time.Millisecond
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 10
	}
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{
		orch:    orch,
		opts:    opts,
		log:     log,
		pending: make(map[string]bool),
	}
}

// Run watches InputDir until ctx is done. Files already in the directory are
// not processed; use Batch for those.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.opts.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.opts.InputDir); err != nil {
		return fmt.Errorf("watch %s: %w", w.opts.InputDir, err)
	}
	w.log.Info("watching input directory", "input", w.opts.InputDir, "output", w.opts.OutputDir)

	defer w.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !HasExtension(ev.Name, w.opts.Extensions) || !w.claim(ev.Name) {
				continue
			}
			w.wg.Add(1)
			go func(path string) {
				defer w.wg.Done()
				defer w.release(path)
				w.handle(ctx, path)
			}(ev.Name)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", "error", err)
		}
	}
}

// claim marks path as in flight. Writes to a file already waiting to settle
// do not start a second wait.
func (w *Watcher) claim(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending[path] {
		return false
	}
	w.pending[path] = true
	return true
}

func (w *Watcher) release(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.pending, path)
}

func (w *Watcher) handle(ctx context.Context, path string) {
	log := w.log.With("file", filepath.Base(path))
	if err := w.waitStable(ctx, path); err != nil {
		if ctx.Err() == nil {
			log.Warn("skipping file that never settled", "error", err)
		}
		return
	}

	job := NewJob(filepath.Base(path), path, w.orch.Writer().OutputPath(w.opts.OutputDir, path))
	if err := w.orch.Enqueue(ctx, job); err != nil {
		log.Error("failed to queue file", "error", err)
		return
	}
	log.Info("queued dropped file", "job_id", job.ID)
}

// waitStable polls the size of path until two consecutive reads agree.
func (w *Watcher) waitStable(ctx context.Context, path string) error {
	last := int64(-1)
	return retry.Do(
		func() error {
			info, err := os.Stat(path)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			if info.IsDir() {
				return retry.Unrecoverable(fmt.Errorf("%s is a directory", path))
			}
			size := info.Size()
			if size == 0 || size != last {
				last = size
				return errStillWriting
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(w.opts.Attempts)),
		retry.Delay(w.opts.Settle),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
}
