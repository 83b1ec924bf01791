// Package status keeps an in-memory snapshot of the current sync run,
// served as JSON by the app's HTTP endpoint.
package status

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const maxHistory = 5

type Snapshot struct {
	RunID        string    `json:"run_id,omitempty"`
	Phase        string    `json:"phase"`
	LoggedInUser string    `json:"logged_in_user,omitempty"`
	Processed    int       `json:"processed"`
	Total        int       `json:"total"`
	Fetched      int       `json:"fetched"`
	Skipped      int       `json:"skipped"`
	Failed       int       `json:"failed"`
	StartTime    time.Time `json:"start_time"`
	LastUpdated  time.Time `json:"last_updated"`
	History      []string  `json:"history,omitempty"`
}

type Tracker struct {
	mu   sync.Mutex
	snap Snapshot
}

func NewTracker() *Tracker {
	return &Tracker{snap: Snapshot{Phase: "idle"}}
}

// BeginRun resets counters for a fresh run and returns its id.
func (t *Tracker) BeginRun() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	user := t.snap.LoggedInUser
	history := t.snap.History
	t.snap = Snapshot{
		RunID:        uuid.NewString(),
		Phase:        "starting",
		LoggedInUser: user,
		StartTime:    time.Now().UTC(),
		LastUpdated:  time.Now().UTC(),
		History:      history,
	}
	return t.snap.RunID
}

func (t *Tracker) SetPhase(phase string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.Phase = phase
	t.snap.LastUpdated = time.Now().UTC()
}

func (t *Tracker) SetUser(username string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.LoggedInUser = username
	t.snap.LastUpdated = time.Now().UTC()
}

// AddTotal grows the expected post count as pages arrive.
func (t *Tracker) AddTotal(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.Total += n
	t.snap.LastUpdated = time.Now().UTC()
}

// RecordPost folds one finished post into the counters.
func (t *Tracker) RecordPost(fetched, skipped, failed int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.Processed++
	t.snap.Fetched += fetched
	t.snap.Skipped += skipped
	t.snap.Failed += failed
	t.snap.LastUpdated = time.Now().UTC()
}

// Message prepends a timestamped line to the bounded history.
func (t *Tracker) Message(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now().UTC()
	line := now.Format(time.RFC3339) + " - " + msg
	t.snap.History = append([]string{line}, t.snap.History...)
	if len(t.snap.History) > maxHistory {
		t.snap.History = t.snap.History[:maxHistory]
	}
	t.snap.LastUpdated = now
}

// Snapshot returns a copy safe to serialize concurrently with updates.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := t.snap
	snap.History = append([]string(nil), t.snap.History...)
	return snap
}
