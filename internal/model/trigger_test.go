package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEventKind(t *testing.T) {
	for _, valid := range []string{"push", "pull_request", "merge_group", "workflow_completion"} {
		kind, err := ParseEventKind(valid)
		assert.NoError(t, err)
		assert.Equal(t, EventKind(valid), kind)
	}

	_, err := ParseEventKind("deployment")
	assert.Error(t, err)
}

func TestIsTrunkPush(t *testing.T) {
	tests := []struct {
		name  string
		event TriggerEvent
		trunk string
		want  bool
	}{
		{"push to trunk", TriggerEvent{Kind: EventPush, Ref: "main"}, "main", true},
		{"push to trunk full ref", TriggerEvent{Kind: EventPush, Ref: "refs/heads/main"}, "main", true},
		{"push to feature branch", TriggerEvent{Kind: EventPush, Ref: "feature"}, "main", false},
		{"pull request on trunk ref", TriggerEvent{Kind: EventPullRequest, Ref: "main"}, "main", false},
		{"merge group", TriggerEvent{Kind: EventMergeGroup, Ref: "main"}, "main", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.IsTrunkPush(tt.trunk))
		})
	}
}

func TestWhenClauseAdmits(t *testing.T) {
	open := WhenClause{}
	assert.True(t, open.Admits(EventPush))
	assert.True(t, open.Admits(EventPullRequest))
	assert.True(t, open.Admits(EventMergeGroup))
	assert.False(t, open.Admits(EventWorkflowCompletion), "completion events never admit pipeline jobs")

	gated := WhenClause{Events: []EventKind{EventPullRequest, EventMergeGroup}}
	assert.False(t, gated.Admits(EventPush))
	assert.True(t, gated.Admits(EventPullRequest))
	assert.True(t, gated.Admits(EventMergeGroup))
}

func TestConclusionIsTerminal(t *testing.T) {
	for _, c := range []Conclusion{ConclusionSuccess, ConclusionFailure, ConclusionSkipped, ConclusionCancelled} {
		assert.True(t, c.IsTerminal())
	}
	assert.False(t, Conclusion("running").IsTerminal())
}
