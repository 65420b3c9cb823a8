package gate

import (
	"github.com/sourceplane/gateci/internal/filter"
	"github.com/sourceplane/gateci/internal/model"
)

// Context is the gating input computed once per invocation. TrunkPush is
// materialized here, alongside the event, so every job sees the same value
// instead of re-deriving it.
type Context struct {
	Event     model.TriggerEvent
	TrunkPush bool
	Filters   filter.Results
}

// NewContext builds the gating context for one invocation.
func NewContext(event model.TriggerEvent, trunkBranch string, filters filter.Results) Context {
	return Context{
		Event:     event,
		TrunkPush: event.IsTrunkPush(trunkBranch),
		Filters:   filters,
	}
}

// Decision is the gate's verdict for one job.
type Decision struct {
	Run    bool
	Reason model.ReasonCode // set when Run is false
}

// Evaluate decides, per job, whether it runs this invocation. A job runs if
// its when-clause admits the trigger kind AND (the trigger is a direct push
// to the trunk branch OR its associated filter rule reported true). Jobs
// without a filter are gated by the event kind alone.
//
// Dependency outcomes are deliberately not consulted here: a job whose
// dependency failed is still evaluated for gating, and the runner is the one
// that withholds execution (needs semantics).
func Evaluate(pipeline *model.Pipeline, ctx Context) map[string]Decision {
	decisions := make(map[string]Decision, len(pipeline.Jobs))
	for _, job := range pipeline.Jobs {
		decisions[job.Name] = decide(job, ctx)
	}
	return decisions
}

func decide(job model.JobSpec, ctx Context) Decision {
	if !job.When.Admits(ctx.Event.Kind) {
		return Decision{Run: false, Reason: model.ReasonEventNotMatched}
	}
	if ctx.TrunkPush {
		return Decision{Run: true}
	}
	if job.When.Filter == "" {
		return Decision{Run: true}
	}
	if ctx.Filters[job.When.Filter] {
		return Decision{Run: true}
	}
	return Decision{Run: false, Reason: model.ReasonFiltered}
}
