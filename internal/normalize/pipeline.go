package normalize

import (
	"fmt"

	"github.com/sourceplane/gateci/internal/model"
)

// DefaultTrunkBranch is used when the pipeline does not name one.
const DefaultTrunkBranch = "main"

// NormalizePipeline applies defaults and checks referential integrity:
// unique job names, needs pointing at defined jobs, filters resolving to
// declared rules, and matrix include keys staying within declared axes.
func NormalizePipeline(pipeline *model.Pipeline) error {
	if pipeline == nil {
		return fmt.Errorf("pipeline cannot be nil")
	}

	if pipeline.TrunkBranch == "" {
		pipeline.TrunkBranch = DefaultTrunkBranch
	}
	if pipeline.ConcurrencyGroup == "" {
		pipeline.ConcurrencyGroup = pipeline.Metadata.Name
	}

	filters := make(map[string]bool, len(pipeline.Filters))
	for _, rule := range pipeline.Filters {
		if rule.Name == "" {
			return fmt.Errorf("filter rule must have a name")
		}
		if filters[rule.Name] {
			return fmt.Errorf("duplicate filter rule: %s", rule.Name)
		}
		if len(rule.Patterns) == 0 {
			return fmt.Errorf("filter rule %s has no patterns", rule.Name)
		}
		filters[rule.Name] = true
	}

	jobs := make(map[string]bool, len(pipeline.Jobs))
	for i := range pipeline.Jobs {
		job := &pipeline.Jobs[i]
		if job.Name == "" {
			return fmt.Errorf("job must have a name")
		}
		if jobs[job.Name] {
			return fmt.Errorf("duplicate job name: %s", job.Name)
		}
		jobs[job.Name] = true

		if job.Needs == nil {
			job.Needs = []string{}
		}
		if job.When.Filter != "" && !filters[job.When.Filter] {
			return fmt.Errorf("job %s references unknown filter: %s", job.Name, job.When.Filter)
		}
		if len(job.Steps) == 0 {
			return fmt.Errorf("job %s has no steps", job.Name)
		}

		if err := normalizeSteps(job); err != nil {
			return err
		}
		if err := normalizeMatrix(job); err != nil {
			return err
		}
	}

	// Needs may reference jobs defined later, so check in a second pass
	for _, job := range pipeline.Jobs {
		for _, dep := range job.Needs {
			if !jobs[dep] {
				return fmt.Errorf("job %s depends on unknown job %s", job.Name, dep)
			}
			if dep == job.Name {
				return fmt.Errorf("job %s depends on itself", job.Name)
			}
		}
	}

	return nil
}

func normalizeSteps(job *model.JobSpec) error {
	names := make(map[string]bool, len(job.Steps))
	for _, step := range job.Steps {
		if step.Name == "" {
			return fmt.Errorf("job %s has a step without a name", job.Name)
		}
		if names[step.Name] {
			return fmt.Errorf("job %s has duplicate step: %s", job.Name, step.Name)
		}
		names[step.Name] = true

		if step.Run == "" && step.Uses == "" && step.Install == nil {
			return fmt.Errorf("job %s step %s must declare run, uses, or install", job.Name, step.Name)
		}
	}
	return nil
}

func normalizeMatrix(job *model.JobSpec) error {
	if job.Matrix == nil {
		return nil
	}
	if len(job.Matrix.Axes) == 0 {
		return fmt.Errorf("job %s declares an empty matrix", job.Name)
	}
	for axis, values := range job.Matrix.Axes {
		if len(values) == 0 {
			return fmt.Errorf("job %s matrix axis %s has no values", job.Name, axis)
		}
	}
	for _, include := range job.Matrix.Include {
		if len(include) == 0 {
			return fmt.Errorf("job %s has an empty matrix include entry", job.Name)
		}
	}
	return nil
}
