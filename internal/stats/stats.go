// Package stats keeps rolling per-document extraction statistics.
package stats

import (
	"sort"
	"sync"
	"time"
)

type observation struct {
	at       time.Time
	duration time.Duration
	kind     string
}

// Snapshot aggregates the extractions recorded inside the window.
type Snapshot struct {
	Documents int            `json:"documents"`
	MinMs     int64          `json:"min_ms"`
	MaxMs     int64          `json:"max_ms"`
	AvgMs     float64        `json:"avg_ms"`
	P50Ms     float64        `json:"p50_ms"`
	P95Ms     float64        `json:"p95_ms"`
	P99Ms     float64        `json:"p99_ms"`
	Kinds     map[string]int `json:"kinds"`
	Total     int64          `json:"total"`
	Window    string         `json:"window"`
}

// Recorder tracks extraction latencies and terminal kinds within a rolling
// window. Total counts every extraction since creation.
type Recorder struct {
	mu     sync.Mutex
	obs    []observation
	window time.Duration
	total  int64
	now    func() time.Time
}

func NewRecorder(window time.Duration) *Recorder {
	if window <= 0 {
		window = time.Hour
	}
	return &Recorder{
		obs:    make([]observation, 0, 256),
		window: window,
		now:    time.Now,
	}
}

// Record adds one extraction that took d and ended in kind.
func (r *Recorder) Record(kind string, d time.Duration) {
	if d < 0 {
		d = 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.pruneLocked(now)
	r.obs = append(r.obs, observation{at: now, duration: d, kind: kind})
	r.total++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pruneLocked(r.now())
	snap := Snapshot{
		Kinds:  make(map[string]int),
		Total:  r.total,
		Window: r.window.String(),
	}
	if len(r.obs) == 0 {
		return snap
	}

	values := make([]int64, 0, len(r.obs))
	var sum int64
	for _, o := range r.obs {
		ms := o.duration.Milliseconds()
		values = append(values, ms)
		sum += ms
		snap.Kinds[o.kind]++
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	snap.Documents = len(values)
	snap.MinMs = values[0]
	snap.MaxMs = values[len(values)-1]
	snap.AvgMs = float64(sum) / float64(len(values))
	snap.P50Ms = percentile(values, 50)
	snap.P95Ms = percentile(values, 95)
	snap.P99Ms = percentile(values, 99)
	return snap
}

func (r *Recorder) pruneLocked(now time.Time) {
	cutoff := now.Add(-r.window)
	kept := r.obs[:0]
	for _, o := range r.obs {
		if !o.at.Before(cutoff) {
			kept = append(kept, o)
		}
	}
	r.obs = kept
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}

	rank := float64(len(sorted)-1) * pct / 100
	lower := int(rank)
	if lower+1 >= len(sorted) {
		return float64(sorted[lower])
	}
	lo, hi := float64(sorted[lower]), float64(sorted[lower+1])
	return lo + (hi-lo)*(rank-float64(lower))
}
