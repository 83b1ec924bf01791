package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeginRunResetsCountersKeepsIdentity(t *testing.T) {
	tr := NewTracker()
	tr.SetUser("tester")
	tr.Message("before")

	runID := tr.BeginRun()
	require.NotEmpty(t, runID)

	tr.AddTotal(3)
	tr.RecordPost(2, 1, 0)

	snap := tr.Snapshot()
	assert.Equal(t, runID, snap.RunID)
	assert.Equal(t, "tester", snap.LoggedInUser, "the logged-in user survives across runs")
	assert.Equal(t, 3, snap.Total)
	assert.Equal(t, 1, snap.Processed)
	assert.Equal(t, 2, snap.Fetched)
	assert.Equal(t, 1, snap.Skipped)

	second := tr.BeginRun()
	assert.NotEqual(t, runID, second)
	snap = tr.Snapshot()
	assert.Equal(t, 0, snap.Processed, "counters reset on a new run")
	assert.NotEmpty(t, snap.History, "history survives across runs")
}

func TestMessageHistoryIsBounded(t *testing.T) {
	tr := NewTracker()
	for i := 0; i < 10; i++ {
		tr.Message("event")
	}
	snap := tr.Snapshot()
	assert.Len(t, snap.History, maxHistory)
}

func TestSnapshotIsACopy(t *testing.T) {
	tr := NewTracker()
	tr.Message("one")

	snap := tr.Snapshot()
	snap.History[0] = "mutated"
	snap.Processed = 99

	fresh := tr.Snapshot()
	assert.NotEqual(t, "mutated", fresh.History[0])
	assert.Equal(t, 0, fresh.Processed)
}
