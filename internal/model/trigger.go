package model

import "fmt"

// EventKind identifies the kind of automation event that starts an invocation.
type EventKind string

const (
	EventPush               EventKind = "push"
	EventPullRequest        EventKind = "pull_request"
	EventMergeGroup         EventKind = "merge_group"
	EventWorkflowCompletion EventKind = "workflow_completion"
)

// ParseEventKind converts a CLI/event string into an EventKind.
func ParseEventKind(s string) (EventKind, error) {
	switch EventKind(s) {
	case EventPush, EventPullRequest, EventMergeGroup, EventWorkflowCompletion:
		return EventKind(s), nil
	}
	return "", fmt.Errorf("unknown event kind: %q", s)
}

// CompletionInfo describes the upstream run for workflow_completion events.
type CompletionInfo struct {
	RunID      string     `yaml:"runId" json:"runId"`
	Event      EventKind  `yaml:"event" json:"event"`
	Conclusion Conclusion `yaml:"conclusion" json:"conclusion"`
}

// TriggerEvent is the immutable description of one automation invocation.
// It is created once per invocation and never mutated afterwards.
type TriggerEvent struct {
	Kind       EventKind       `yaml:"kind" json:"kind"`
	Ref        string          `yaml:"ref" json:"ref"`
	BaseRef    string          `yaml:"baseRef,omitempty" json:"baseRef,omitempty"`
	PRNumber   int             `yaml:"prNumber,omitempty" json:"prNumber,omitempty"`
	Completion *CompletionInfo `yaml:"completion,omitempty" json:"completion,omitempty"`
}

// IsTrunkPush reports whether the event is a direct push to the given trunk
// branch. Trunk pushes always run full validation regardless of changed paths.
func (e TriggerEvent) IsTrunkPush(trunk string) bool {
	if e.Kind != EventPush {
		return false
	}
	return e.Ref == trunk || e.Ref == "refs/heads/"+trunk
}
