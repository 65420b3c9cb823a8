package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sourceplane/gateci/internal/gate"
	"github.com/sourceplane/gateci/internal/model"
)

// GateTable renders the per-job gate decisions as an aligned table
func GateTable(pipeline *model.Pipeline, decisions map[string]gate.Decision) string {
	var b strings.Builder
	b.WriteString("Gate decisions:\n")
	for _, job := range pipeline.Jobs {
		decision := decisions[job.Name]
		if decision.Run {
			fmt.Fprintf(&b, "  %-20s run\n", job.Name)
		} else {
			fmt.Fprintf(&b, "  %-20s skip (%s)\n", job.Name, decision.Reason)
		}
	}
	return b.String()
}

// DAG renders the needs-edges of the pipeline
func DAG(pipeline *model.Pipeline) string {
	var b strings.Builder
	b.WriteString("Job dependencies:\n")
	for _, job := range pipeline.Jobs {
		if len(job.Needs) == 0 {
			fmt.Fprintf(&b, "  %s\n", job.Name)
			continue
		}
		fmt.Fprintf(&b, "  %s ← %s\n", job.Name, strings.Join(job.Needs, ", "))
	}
	return b.String()
}

// RunSummary renders one run record: which job/instance failed and why
// (step name, exit code, or timeout marker)
func RunSummary(record *model.RunRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s (%s, event %s): %s\n", record.RunID, record.Workflow, record.Event.Kind, record.Conclusion)

	names := make([]string, 0, len(record.Jobs))
	for name := range record.Jobs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		job := record.Jobs[name]
		if job.Reason != "" {
			fmt.Fprintf(&b, "  %-20s %s (%s)\n", name, job.Conclusion, job.Reason)
		} else {
			fmt.Fprintf(&b, "  %-20s %s\n", name, job.Conclusion)
		}
		for _, inst := range job.Instances {
			if inst.Conclusion == model.ConclusionSuccess && len(job.Instances) == 1 {
				continue
			}
			fmt.Fprintf(&b, "    [%s] %s\n", inst.ID, inst.Conclusion)
			for _, step := range inst.Steps {
				if step.Status != model.StepFailure {
					continue
				}
				if step.Reason == model.ReasonTimeout {
					fmt.Fprintf(&b, "      step %s: timed out\n", step.Name)
				} else {
					fmt.Fprintf(&b, "      step %s: exit %d\n", step.Name, step.ExitCode)
				}
			}
		}
	}
	return b.String()
}

// RunList renders a one-line-per-run listing, most recent first
func RunList(records []*model.RunRecord) string {
	if len(records) == 0 {
		return "No runs recorded\n"
	}
	var b strings.Builder
	for _, record := range records {
		fmt.Fprintf(&b, "%s  %-12s %-14s %s\n",
			record.StartedAt.Format("2006-01-02 15:04:05"), record.Event.Kind, record.Conclusion, record.RunID)
	}
	return b.String()
}
