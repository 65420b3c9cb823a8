package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sourceplane/gateci/internal/model"
	"github.com/sourceplane/gateci/internal/render"
	"github.com/sourceplane/gateci/internal/runner"
	"github.com/spf13/cobra"
)

var (
	runEvent    string
	runRef      string
	runBase     string
	runPR       int
	runTrunk    string
	runParallel int64
	runExecute  bool
	runID       string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Evaluate gates and execute the pipeline",
	Long:  "Evaluate the trigger against the pipeline's path filters, execute the gated-in jobs, and exit 0 only when the aggregated result is success.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline()
	},
}

func registerRunCommand(root *cobra.Command) {
	root.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runEvent, "event", "e", "push", "Trigger event kind (push/pull_request/merge_group)")
	runCmd.Flags().StringVar(&runRef, "ref", "main", "Branch or head ref of the trigger")
	runCmd.Flags().StringVar(&runBase, "base", "", "Base ref for change detection (defaults to the trunk branch)")
	runCmd.Flags().IntVar(&runPR, "pr", 0, "Pull request number (pull_request/merge_group events)")
	runCmd.Flags().StringVar(&runTrunk, "trunk", "", "Override the pipeline's always-run trunk branch")
	runCmd.Flags().Int64Var(&runParallel, "parallel", 4, "Maximum concurrent matrix instances")
	runCmd.Flags().BoolVarP(&runExecute, "execute", "x", false, "Actually execute step commands (default is dry-run)")
	runCmd.Flags().StringVar(&runID, "run-id", "", "Run identifier (generated when empty)")
}

func runPipeline() error {
	fmt.Println("□ Loading pipeline...")
	pipeline, err := loadPipelineFile(runTrunk)
	if err != nil {
		return err
	}

	event, err := buildEvent(runEvent, runRef, runBase, runPR)
	if err != nil {
		return err
	}
	if event.Kind == model.EventWorkflowCompletion {
		return fmt.Errorf("workflow_completion events are handled by 'gateci notify'")
	}

	fmt.Println("□ Detecting changed paths...")
	decisions, err := evaluateGates(pipeline, event)
	if err != nil {
		return err
	}
	fmt.Print(render.GateTable(pipeline, decisions))

	cacheStore, artifacts, runs, err := openStores()
	if err != nil {
		return err
	}

	id := runID
	if id == "" {
		id = uuid.NewString()
	}

	dryRun := !runExecute
	if dryRun {
		fmt.Println("□ Dry-run mode enabled. Use --execute to run commands.")
	}

	r := runner.NewRunner(workDir, cacheStore, artifacts, runs, os.Stdout, os.Stderr, dryRun)
	if runParallel > 0 {
		r.Parallelism = runParallel
	}

	record, err := r.Run(context.Background(), pipeline, event, decisions, id)
	if err != nil {
		return err
	}

	fmt.Print(render.RunSummary(record))
	if record.Conclusion != model.ConclusionSuccess {
		return fmt.Errorf("run %s concluded %s", record.RunID, record.Conclusion)
	}
	fmt.Printf("✓ Run %s succeeded\n", record.RunID)
	return nil
}
