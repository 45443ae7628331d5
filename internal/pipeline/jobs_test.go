package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/dgallion1/docoutline/internal/doctree"
)

func TestNewJob_Defaults(t *testing.T) {
	job := NewJob("a.pdf", "/in/a.pdf", "/out/a.json")
	if job.ID == "" {
		t.Fatal("expected a job id")
	}
	if job.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, job.Status)
	}
	if other := NewJob("a.pdf", "/in/a.pdf", ""); other.ID == job.ID {
		t.Error("expected unique job ids")
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob("a.pdf", "/in/a.pdf", "/out/a.json")

	for _, status := range []JobStatus{StatusExtracting, StatusWriting} {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(status)

		if job.Status != status {
			t.Errorf("expected status %q, got %q", status, job.Status)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", status)
		}
	}

	job.Complete()
	if job.Status != StatusCompleted {
		t.Errorf("expected status %q, got %q", StatusCompleted, job.Status)
	}
	select {
	case <-job.Done():
	default:
		t.Error("expected Done to be closed after Complete")
	}
}

func TestJob_Fail(t *testing.T) {
	job := NewJob("a.pdf", "/in/a.pdf", "")
	job.Fail(errors.New("disk full"))

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Errorf("expected status %q, got %q", StatusFailed, snap.Status)
	}
	if snap.Error != "disk full" {
		t.Errorf("expected error %q, got %q", "disk full", snap.Error)
	}
}

func TestJob_FinishTwice(t *testing.T) {
	job := NewJob("a.pdf", "/in/a.pdf", "")
	calls := 0
	job.OnFinish(func() { calls++ })
	job.Complete()
	job.Fail(errors.New("late"))
	if calls != 1 {
		t.Errorf("expected cleanup to run once, got %d", calls)
	}
}

func TestJob_Result(t *testing.T) {
	job := &Job{ID: "literal"}
	if _, ok := job.Result(); ok {
		t.Error("expected no result before extraction")
	}

	res := doctree.NewResult("Guide", []doctree.Entry{{Level: doctree.H1, Text: "Intro", Page: 1}})
	job.SetResult(res, "toc")

	got, ok := job.Result()
	if !ok || got.Title != "Guide" {
		t.Fatalf("expected stored result, got %+v (ok=%v)", got, ok)
	}
	snap := job.Snapshot()
	if snap.Kind != "toc" || snap.Headings != 1 || snap.Title != "Guide" {
		t.Errorf("expected snapshot to reflect result, got %+v", snap)
	}

	job.Complete()
	<-job.Done()
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job, got %d", store.Len())
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", Status: StatusCompleted, UpdatedAt: time.Now()}
	running := &Job{ID: "running", Status: StatusExtracting, UpdatedAt: time.Now()}
	store.Put(expired)
	store.Put(running)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	fresh := &Job{ID: "new", Status: StatusCompleted, UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
	if store.Get("running") == nil {
		t.Error("expected unfinished job to survive cleanup")
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	store := NewJobStore(time.Hour)
	// Should not panic on empty store.
	store.Cleanup()
}
