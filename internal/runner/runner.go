package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/sourceplane/gateci/internal/aggregate"
	"github.com/sourceplane/gateci/internal/artifact"
	"github.com/sourceplane/gateci/internal/cache"
	"github.com/sourceplane/gateci/internal/gate"
	"github.com/sourceplane/gateci/internal/matrix"
	"github.com/sourceplane/gateci/internal/model"
	"github.com/sourceplane/gateci/internal/runstore"
	"golang.org/x/sync/semaphore"
)

// Runner executes the gated-in jobs of a pipeline in dependency order.
// Matrix instances of one job run in parallel (bounded by Parallelism) and
// are fully independent; jobs form a barrier on their needs.
type Runner struct {
	WorkDir     string
	Cache       *cache.Store
	Artifacts   *artifact.Store
	Runs        *runstore.Store
	Stdout      io.Writer
	Stderr      io.Writer
	Parallelism int64
	DryRun      bool
	GOOS        string
}

// NewRunner creates a runner rooted at workDir.
func NewRunner(workDir string, cacheStore *cache.Store, artifacts *artifact.Store, runs *runstore.Store, stdout, stderr io.Writer, dryRun bool) *Runner {
	return &Runner{
		WorkDir:     workDir,
		Cache:       cacheStore,
		Artifacts:   artifacts,
		Runs:        runs,
		Stdout:      stdout,
		Stderr:      stderr,
		Parallelism: 4,
		DryRun:      dryRun,
		GOOS:        runtime.GOOS,
	}
}

// Run executes one invocation: every job in topological order, gated by the
// evaluator's decisions, then aggregates and persists the run record. The
// returned record's Conclusion is failure iff at least one job failed;
// skipped and cancelled jobs never count.
func (r *Runner) Run(ctx context.Context, pipeline *model.Pipeline, event model.TriggerEvent, decisions map[string]gate.Decision, runID string) (*model.RunRecord, error) {
	if pipeline == nil {
		return nil, fmt.Errorf("pipeline cannot be nil")
	}

	graph := NewGraph(pipeline.Jobs)
	if err := graph.DetectCycles(); err != nil {
		return nil, err
	}
	ordered, err := graph.TopologicalSort()
	if err != nil {
		return nil, err
	}

	record := &model.RunRecord{
		RunID:     runID,
		Workflow:  pipeline.Metadata.Name,
		Event:     event,
		Jobs:      make(map[string]model.JobResult, len(pipeline.Jobs)),
		StartedAt: time.Now(),
	}

	if r.Runs != nil && pipeline.ConcurrencyGroup != "" {
		if err := r.Runs.Claim(pipeline.ConcurrencyGroup, runID); err != nil {
			return nil, err
		}
	}

	jobsByName := make(map[string]model.JobSpec, len(pipeline.Jobs))
	for _, job := range pipeline.Jobs {
		jobsByName[job.Name] = job
	}

	for _, name := range ordered {
		job := jobsByName[name]
		fmt.Fprintf(r.Stdout, "→ Job %s\n", name)
		result := r.runJob(ctx, pipeline, job, event, decisions[name], record)
		record.Jobs[name] = result
		fmt.Fprintf(r.Stdout, "  %s: %s\n", name, result.Conclusion)
	}

	record.Conclusion = aggregate.Aggregate(record.JobConclusions())
	record.FinishedAt = time.Now()

	if r.Runs != nil {
		if err := r.Runs.Save(record); err != nil {
			return record, err
		}
	}
	return record, nil
}

// runJob executes all matrix instances of one job, or records a skip. A job
// whose decision is negative, or whose dependency reached failure, is never
// executed; only the aggregator observes upstream failures transitively.
func (r *Runner) runJob(ctx context.Context, pipeline *model.Pipeline, job model.JobSpec, event model.TriggerEvent, decision gate.Decision, record *model.RunRecord) model.JobResult {
	if !decision.Run {
		return model.JobResult{Name: job.Name, Conclusion: model.ConclusionSkipped, Reason: decision.Reason}
	}

	for _, dep := range job.Needs {
		depConclusion := record.Jobs[dep].Conclusion
		if depConclusion == model.ConclusionFailure || depConclusion == model.ConclusionCancelled {
			return model.JobResult{Name: job.Name, Conclusion: model.ConclusionSkipped, Reason: model.ReasonUpstreamFailed}
		}
	}

	instances := matrix.Expand(job.Matrix)
	results := make([]model.InstanceResult, len(instances))

	parallelism := r.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}
	sem := semaphore.NewWeighted(parallelism)
	var wg sync.WaitGroup

	// fail-fast is off: one instance's failure never blocks its siblings
	for i := range instances {
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = model.InstanceResult{
				ID:         instances[i].ID,
				Values:     instances[i].Values,
				Conclusion: model.ConclusionCancelled,
				Reason:     model.ReasonCancelled,
			}
			continue
		}
		wg.Add(1)
		go func(i int, inst matrix.Instance) {
			defer wg.Done()
			defer sem.Release(1)
			results[i] = r.runInstance(ctx, pipeline, job, event, inst, record.RunID)
		}(i, instances[i])
	}
	wg.Wait()

	return summarizeJob(job.Name, results)
}

// summarizeJob folds instance results into one job result
func summarizeJob(name string, instances []model.InstanceResult) model.JobResult {
	result := model.JobResult{Name: name, Conclusion: model.ConclusionSuccess, Instances: instances}
	for _, inst := range instances {
		switch inst.Conclusion {
		case model.ConclusionFailure:
			result.Conclusion = model.ConclusionFailure
			if result.Reason == "" || result.Reason == model.ReasonCancelled {
				result.Reason = inst.Reason
			}
		case model.ConclusionCancelled:
			if result.Conclusion != model.ConclusionFailure {
				result.Conclusion = model.ConclusionCancelled
				result.Reason = model.ReasonCancelled
			}
		}
	}
	return result
}

// runInstance executes one matrix point: strictly sequential steps, aborting
// on the first failure that is not marked best-effort.
func (r *Runner) runInstance(ctx context.Context, pipeline *model.Pipeline, job model.JobSpec, event model.TriggerEvent, inst matrix.Instance, runID string) model.InstanceResult {
	result := model.InstanceResult{ID: inst.ID, Values: inst.Values, Conclusion: model.ConclusionSuccess}

	vars := map[string]string{"event": string(event.Kind)}
	for k, v := range inst.Values {
		vars["matrix."+k] = v
	}

	failed := false
	for _, step := range job.Steps {
		// Cooperative cancellation at step boundaries only
		if ctx.Err() != nil || r.superseded(pipeline, runID) {
			result.Conclusion = model.ConclusionCancelled
			result.Reason = model.ReasonCancelled
			return result
		}

		stepResult, abort := r.runStep(ctx, step, vars, failed)
		result.Steps = append(result.Steps, stepResult)

		if stepResult.Status == model.StepFailure {
			failed = true
			if abort {
				result.Conclusion = model.ConclusionFailure
				result.Reason = stepResult.Reason
				return result
			}
		}
	}

	if job.Artifact != nil {
		if err := r.emitArtifact(pipeline, job, inst, vars, failed, runID, &result); err != nil {
			result.Conclusion = model.ConclusionFailure
			result.Reason = model.ReasonStepFailure
			fmt.Fprintf(r.Stderr, "artifact upload failed for %s/%s: %v\n", job.Name, inst.ID, err)
		}
	}

	return result
}

// emitArtifact persists the instance's declared artifact when its condition
// holds (concrete policy: coverage-flagged instance on a pull request)
func (r *Runner) emitArtifact(pipeline *model.Pipeline, job model.JobSpec, inst matrix.Instance, vars map[string]string, failed bool, runID string, result *model.InstanceResult) error {
	ok, err := EvalCondition(job.Artifact.When, failed, vars)
	if err != nil {
		return err
	}
	if !ok || r.DryRun {
		return nil
	}

	id, err := r.Artifacts.Upload(pipeline.Metadata.Name, runID, job.Artifact.Name, r.WorkDir, job.Artifact.Paths)
	if err != nil {
		return err
	}
	result.ArtifactID = id
	return nil
}

// runStep executes one step and reports whether a failure aborts the
// instance (best-effort steps never abort)
func (r *Runner) runStep(ctx context.Context, step model.Step, vars map[string]string, failed bool) (model.StepResult, bool) {
	result := model.StepResult{Name: step.Name, Status: model.StepSuccess}

	if step.If != "" {
		ok, err := EvalCondition(step.If, failed, vars)
		if err != nil {
			result.Status = model.StepFailure
			result.Reason = model.ReasonStepFailure
			fmt.Fprintf(r.Stderr, "step %s: %v\n", step.Name, err)
			return result, !step.ContinueOnError
		}
		if !ok {
			result.Status = model.StepSkipped
			return result, false
		}
	}

	if step.Install != nil {
		return r.runInstallStep(ctx, step, vars, result)
	}

	if r.DryRun {
		fmt.Fprintf(r.Stdout, "  - Step %s (dry-run)\n", step.Name)
		return result, false
	}

	// External-action references are opaque collaborators; the orchestrator
	// only sequences them
	if step.Run == "" && step.Uses != "" {
		fmt.Fprintf(r.Stdout, "  - Step %s (uses %s)\n", step.Name, step.Uses)
		return result, false
	}

	return r.execStep(ctx, step, vars, result)
}

// runInstallStep applies the caching protocol around an install-type step:
// hit ⇒ restore and skip the install entirely; miss ⇒ run it, then write the
// entry under the same key for later instances and runs.
func (r *Runner) runInstallStep(ctx context.Context, step model.Step, vars map[string]string, result model.StepResult) (model.StepResult, bool) {
	lockfile := filepath.Join(r.WorkDir, step.Install.Lockfile)
	key, err := cache.Key(r.GOOS, step.Install.Tool, lockfile)
	if err != nil {
		result.Status = model.StepFailure
		result.Reason = model.ReasonDependencyUnmet
		fmt.Fprintf(r.Stderr, "step %s: %v\n", step.Name, err)
		return result, !step.ContinueOnError
	}

	if r.DryRun {
		fmt.Fprintf(r.Stdout, "  - Step %s (dry-run, cache key %s)\n", step.Name, key)
		return result, false
	}

	if r.Cache.Hit(key) {
		if err := r.Cache.Restore(key, filepath.Join(r.WorkDir, step.Install.Path)); err == nil {
			result.Status = model.StepCached
			return result, false
		}
		// A corrupt entry falls through to a plain miss
	}

	if step.Run != "" {
		result, abort := r.execStep(ctx, step, vars, result)
		if result.Status == model.StepFailure {
			return result, abort
		}
	}

	if err := r.Cache.Save(key, filepath.Join(r.WorkDir, step.Install.Path)); err != nil {
		result.Status = model.StepFailure
		result.Reason = model.ReasonStepFailure
		fmt.Fprintf(r.Stderr, "step %s: %v\n", step.Name, err)
		return result, !step.ContinueOnError
	}

	return result, false
}

// execStep runs the step's command under its timeout, with the instance
// context exported as environment (GATECI_EVENT, MATRIX_<AXIS>)
func (r *Runner) execStep(ctx context.Context, step model.Step, vars map[string]string, result model.StepResult) (model.StepResult, bool) {
	stepCtx := ctx
	if step.Timeout != "" {
		timeout, err := time.ParseDuration(step.Timeout)
		if err != nil {
			result.Status = model.StepFailure
			result.Reason = model.ReasonStepFailure
			fmt.Fprintf(r.Stderr, "step %s has invalid timeout %q: %v\n", step.Name, step.Timeout, err)
			return result, !step.ContinueOnError
		}
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(stepCtx, "sh", "-c", step.Run)
	cmd.Dir = r.WorkDir
	cmd.Env = stepEnv(vars)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Run(); err != nil {
		result.Status = model.StepFailure
		if errors.Is(stepCtx.Err(), context.DeadlineExceeded) {
			result.Reason = model.ReasonTimeout
		} else {
			result.Reason = model.ReasonStepFailure
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				result.ExitCode = exitErr.ExitCode()
			}
		}
		return result, !step.ContinueOnError
	}

	return result, false
}

// stepEnv exports the instance context to step commands
func stepEnv(vars map[string]string) []string {
	env := os.Environ()
	for k, v := range vars {
		if k == "event" {
			env = append(env, "GATECI_EVENT="+v)
			continue
		}
		if axis, ok := strings.CutPrefix(k, "matrix."); ok {
			env = append(env, "MATRIX_"+envName(axis)+"="+v)
		}
	}
	return env
}

func envName(axis string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, axis)
}

// superseded reports whether a newer trigger has claimed this run's
// concurrency group
func (r *Runner) superseded(pipeline *model.Pipeline, runID string) bool {
	if r.Runs == nil || pipeline.ConcurrencyGroup == "" {
		return false
	}
	current := r.Runs.CurrentClaim(pipeline.ConcurrencyGroup)
	return current != "" && current != runID
}
