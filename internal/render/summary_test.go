package render

import (
	"testing"
	"time"

	"github.com/sourceplane/gateci/internal/gate"
	"github.com/sourceplane/gateci/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestGateTable(t *testing.T) {
	pipeline := &model.Pipeline{
		Jobs: []model.JobSpec{
			{Name: "lint"},
			{Name: "lockfile-check"},
		},
	}
	decisions := map[string]gate.Decision{
		"lint":           {Run: true},
		"lockfile-check": {Run: false, Reason: model.ReasonEventNotMatched},
	}

	out := GateTable(pipeline, decisions)
	assert.Contains(t, out, "lint")
	assert.Contains(t, out, "run")
	assert.Contains(t, out, "skip (event_not_matched)")
}

func TestRunSummary_ShowsFailingStepAndExitCode(t *testing.T) {
	record := &model.RunRecord{
		RunID:      "run-1",
		Workflow:   "ci",
		Event:      model.TriggerEvent{Kind: model.EventPush, Ref: "main"},
		Conclusion: model.ConclusionFailure,
		Jobs: map[string]model.JobResult{
			"test": {
				Name:       "test",
				Conclusion: model.ConclusionFailure,
				Reason:     model.ReasonStepFailure,
				Instances: []model.InstanceResult{
					{
						ID:         "python-3.12",
						Conclusion: model.ConclusionFailure,
						Steps: []model.StepResult{
							{Name: "pytest", Status: model.StepFailure, Reason: model.ReasonStepFailure, ExitCode: 2},
						},
					},
				},
			},
		},
		StartedAt: time.Now(),
	}

	out := RunSummary(record)
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "[python-3.12] failure")
	assert.Contains(t, out, "step pytest: exit 2")
}

func TestRunSummary_TimeoutMarker(t *testing.T) {
	record := &model.RunRecord{
		RunID:      "run-2",
		Workflow:   "ci",
		Conclusion: model.ConclusionFailure,
		Jobs: map[string]model.JobResult{
			"test": {
				Name:       "test",
				Conclusion: model.ConclusionFailure,
				Instances: []model.InstanceResult{
					{
						ID:         "default",
						Conclusion: model.ConclusionFailure,
						Steps: []model.StepResult{
							{Name: "pytest", Status: model.StepFailure, Reason: model.ReasonTimeout},
						},
					},
				},
			},
		},
	}

	out := RunSummary(record)
	assert.Contains(t, out, "step pytest: timed out")
}

func TestDAG(t *testing.T) {
	pipeline := &model.Pipeline{
		Jobs: []model.JobSpec{
			{Name: "lint"},
			{Name: "test", Needs: []string{"lint"}},
		},
	}

	out := DAG(pipeline)
	assert.Contains(t, out, "test ← lint")
}

func TestRunList_Empty(t *testing.T) {
	assert.Equal(t, "No runs recorded\n", RunList(nil))
}
