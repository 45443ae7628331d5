package pipeline

import (
	"sync"
	"time"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/google/uuid"
)

// JobStatus represents the state of an outline extraction job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusExtracting JobStatus = "extracting"
	StatusWriting    JobStatus = "writing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Job tracks the extraction of a single document.
type Job struct {
	mu sync.Mutex

	ID       string `json:"job_id"`
	Filename string `json:"filename"`
	Source   string `json:"-"`
	Output   string `json:"output,omitempty"`

	Status   JobStatus `json:"status"`
	Kind     string    `json:"kind,omitempty"`
	Title    string    `json:"title"`
	Headings int       `json:"headings"`
	Warning  string    `json:"warning,omitempty"`
	Error    string    `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	result  *doctree.Result
	cleanup func()
	done    chan struct{}
	once    sync.Once
}

// NewJob creates a queued job reading source. When output is non-empty the
// result is also written there.
func NewJob(filename, source, output string) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Filename:  filename,
		Source:    source,
		Output:    output,
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
		done:      make(chan struct{}),
	}
}

// OnFinish registers fn to run once the job reaches a terminal status.
func (j *Job) OnFinish(fn func()) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cleanup = fn
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.UpdatedAt = time.Now()
}

// SetResult records the extracted outline and the terminal it came from.
func (j *Job) SetResult(res doctree.Result, kind string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = &res
	j.Kind = kind
	j.Title = res.Title
	j.Headings = len(res.Outline)
	j.UpdatedAt = time.Now()
}

// SetWarning records a problem with the result that did not stop the job.
func (j *Job) SetWarning(msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Warning = msg
	j.UpdatedAt = time.Now()
}

// Complete marks the job completed.
func (j *Job) Complete() {
	j.finish(StatusCompleted, "")
}

// Fail marks the job failed with err.
func (j *Job) Fail(err error) {
	j.finish(StatusFailed, err.Error())
}

func (j *Job) finish(status JobStatus, errMsg string) {
	j.mu.Lock()
	j.Status = status
	j.Error = errMsg
	j.UpdatedAt = time.Now()
	cleanup := j.cleanup
	j.cleanup = nil
	if j.done == nil {
		j.done = make(chan struct{})
	}
	done := j.done
	j.mu.Unlock()

	if cleanup != nil {
		cleanup()
	}
	j.once.Do(func() { close(done) })
}

// Done is closed once the job is completed or failed.
func (j *Job) Done() <-chan struct{} {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.done == nil {
		j.done = make(chan struct{})
	}
	return j.done
}

// Result returns the extracted outline, if extraction has finished.
func (j *Job) Result() (doctree.Result, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.result == nil {
		return doctree.Result{}, false
	}
	return *j.result, true
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	Filename  string    `json:"filename"`
	Output    string    `json:"output,omitempty"`
	Status    JobStatus `json:"status"`
	Kind      string    `json:"kind,omitempty"`
	Title     string    `json:"title"`
	Headings  int       `json:"headings"`
	Warning   string    `json:"warning,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobSnapshot{
		ID:        j.ID,
		Filename:  j.Filename,
		Output:    j.Output,
		Status:    j.Status,
		Kind:      j.Kind,
		Title:     j.Title,
		Headings:  j.Headings,
		Warning:   j.Warning,
		Error:     j.Error,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes finished jobs not updated within the TTL.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		snap := job.Snapshot()
		if snap.Status != StatusCompleted && snap.Status != StatusFailed {
			continue
		}
		if now.Sub(snap.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}
