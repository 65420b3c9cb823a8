package runstore

import (
	"testing"
	"time"

	"github.com/sourceplane/gateci/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(runID string, started time.Time) *model.RunRecord {
	return &model.RunRecord{
		RunID:      runID,
		Workflow:   "ci",
		Event:      model.TriggerEvent{Kind: model.EventPullRequest, Ref: "feature", PRNumber: 9},
		Conclusion: model.ConclusionSuccess,
		Jobs: map[string]model.JobResult{
			"test": {Name: "test", Conclusion: model.ConclusionSuccess},
		},
		StartedAt:  started,
		FinishedAt: started.Add(time.Minute),
	}
}

func TestSaveAndGet(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(record("run-1", time.Now())))

	got, err := store.Get("run-1")
	require.NoError(t, err)
	assert.Equal(t, "ci", got.Workflow)
	assert.Equal(t, model.EventPullRequest, got.Event.Kind)
	assert.Equal(t, 9, got.Event.PRNumber)
	assert.Equal(t, model.ConclusionSuccess, got.Jobs["test"].Conclusion)
}

func TestGet_Missing(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get("absent")
	assert.Error(t, err)
}

func TestListAndLatest(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	base := time.Now()
	require.NoError(t, store.Save(record("run-old", base.Add(-time.Hour))))
	require.NoError(t, store.Save(record("run-new", base)))

	records, err := store.List()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "run-new", records[0].RunID)

	latest, err := store.Latest()
	require.NoError(t, err)
	assert.Equal(t, "run-new", latest.RunID)
}

func TestLatest_Empty(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Latest()
	assert.ErrorIs(t, err, ErrNoRuns)
}

func TestClaim_NewerTriggerSupersedes(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	assert.Empty(t, store.CurrentClaim("ci-main"))

	require.NoError(t, store.Claim("ci-main", "run-1"))
	assert.Equal(t, "run-1", store.CurrentClaim("ci-main"))

	require.NoError(t, store.Claim("ci-main", "run-2"))
	assert.Equal(t, "run-2", store.CurrentClaim("ci-main"))
}

func TestClaim_GroupNameSanitized(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Claim("ci/refs/heads/main", "run-1"))
	assert.Equal(t, "run-1", store.CurrentClaim("ci/refs/heads/main"))
}
