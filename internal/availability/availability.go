// Package availability tracks per-track playability and detects systemic
// audio failures through a consecutive-failure circuit breaker.
package availability

import "sync"

// DefaultFailureThreshold is the number of consecutive failures after
// which the breaker considers the problem systemic rather than per-track.
const DefaultFailureThreshold = 3

// Tracker caches the last known playability of each track and counts
// consecutive failures process-wide. The counter never persists across
// restarts; it is reset by any success or by an explicit user retry.
type Tracker struct {
	mu        sync.Mutex
	known     map[string]bool
	failures  int
	threshold int
}

// New creates a tracker with the given failure threshold.
// A threshold <= 0 falls back to DefaultFailureThreshold.
func New(threshold int) *Tracker {
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}
	return &Tracker{
		known:     make(map[string]bool),
		threshold: threshold,
	}
}

// MarkUnavailable records a failed playback attempt for the track and
// increments the consecutive-failure counter.
func (t *Tracker) MarkUnavailable(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.known[id] = false
	t.failures++
}

// MarkAvailable records a successful playback for the track and resets the
// consecutive-failure counter.
func (t *Tracker) MarkAvailable(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.known[id] = true
	t.failures = 0
}

// IsAvailable returns the last known playability of the track.
// ok is false if the track has never been observed.
func (t *Tracker) IsAvailable(id string) (available, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	available, ok = t.known[id]
	return available, ok
}

// HasSystemicIssues reports whether consecutive failures have reached the
// threshold. While true, callers should stop auto-skipping and require an
// explicit user retry.
func (t *Tracker) HasSystemicIssues() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failures >= t.threshold
}

// ConsecutiveFailures returns the current failure streak.
func (t *Tracker) ConsecutiveFailures() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failures
}

// Reset zeroes the failure counter. Called on explicit user retry.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures = 0
}
