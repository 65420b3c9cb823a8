package model

import "time"

// Conclusion is the terminal outcome of a job, instance, or whole run.
type Conclusion string

const (
	ConclusionSuccess   Conclusion = "success"
	ConclusionFailure   Conclusion = "failure"
	ConclusionSkipped   Conclusion = "skipped"
	ConclusionCancelled Conclusion = "cancelled"
)

var terminalConclusions = map[Conclusion]bool{
	ConclusionSuccess:   true,
	ConclusionFailure:   true,
	ConclusionSkipped:   true,
	ConclusionCancelled: true,
}

// IsTerminal reports whether the conclusion is a terminal state.
func (c Conclusion) IsTerminal() bool {
	return terminalConclusions[c]
}

// ReasonCode explains a non-success conclusion.
type ReasonCode string

const (
	ReasonStepFailure     ReasonCode = "step_failure"
	ReasonTimeout         ReasonCode = "timeout"
	ReasonDependencyUnmet ReasonCode = "dependency_unmet"
	ReasonNotFound        ReasonCode = "not_found"
	ReasonCancelled       ReasonCode = "cancelled"
	ReasonFiltered        ReasonCode = "filtered"
	ReasonEventNotMatched ReasonCode = "event_not_matched"
	ReasonUpstreamFailed  ReasonCode = "upstream_failed"
)

// StepStatus is the per-step outcome within one instance.
type StepStatus string

const (
	StepSuccess StepStatus = "success"
	StepFailure StepStatus = "failure"
	StepSkipped StepStatus = "skipped"
	StepCached  StepStatus = "cached"
)

// StepResult records one executed (or skipped) step.
type StepResult struct {
	Name     string     `yaml:"name" json:"name"`
	Status   StepStatus `yaml:"status" json:"status"`
	Reason   ReasonCode `yaml:"reason,omitempty" json:"reason,omitempty"`
	ExitCode int        `yaml:"exitCode,omitempty" json:"exitCode,omitempty"`
}

// InstanceResult is the outcome of one matrix point of a job.
type InstanceResult struct {
	ID         string            `yaml:"id" json:"id"`
	Values     map[string]string `yaml:"values,omitempty" json:"values,omitempty"`
	Conclusion Conclusion        `yaml:"conclusion" json:"conclusion"`
	Reason     ReasonCode        `yaml:"reason,omitempty" json:"reason,omitempty"`
	Steps      []StepResult      `yaml:"steps,omitempty" json:"steps,omitempty"`
	ArtifactID string            `yaml:"artifactId,omitempty" json:"artifactId,omitempty"`
}

// JobResult aggregates the instances of one job. A job fails if any of its
// instances failed; one instance's failure never changes a sibling's result.
type JobResult struct {
	Name       string           `yaml:"name" json:"name"`
	Conclusion Conclusion       `yaml:"conclusion" json:"conclusion"`
	Reason     ReasonCode       `yaml:"reason,omitempty" json:"reason,omitempty"`
	Instances  []InstanceResult `yaml:"instances,omitempty" json:"instances,omitempty"`
}

// RunRecord is the persisted outcome of one whole invocation. It is the only
// channel between a completed run and the cross-run notifier.
type RunRecord struct {
	RunID      string               `yaml:"runId" json:"runId"`
	Workflow   string               `yaml:"workflow" json:"workflow"`
	Event      TriggerEvent         `yaml:"event" json:"event"`
	Conclusion Conclusion           `yaml:"conclusion" json:"conclusion"`
	Jobs       map[string]JobResult `yaml:"jobs" json:"jobs"`
	StartedAt  time.Time            `yaml:"startedAt" json:"startedAt"`
	FinishedAt time.Time            `yaml:"finishedAt" json:"finishedAt"`
}

// JobConclusions returns the per-job terminal conclusions, the aggregator's
// input shape.
func (r *RunRecord) JobConclusions() map[string]Conclusion {
	out := make(map[string]Conclusion, len(r.Jobs))
	for name, jr := range r.Jobs {
		out[name] = jr.Conclusion
	}
	return out
}
