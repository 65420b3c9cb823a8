package main

import (
	"fmt"

	"github.com/sourceplane/gateci/internal/matrix"
	"github.com/sourceplane/gateci/internal/render"
	"github.com/spf13/cobra"
)

var (
	planEvent string
	planRef   string
	planBase  string
	planPR    int
	planTrunk string
	planView  string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show gate decisions without executing",
	Long:  "Evaluate the trigger against the pipeline and print which jobs would run, their matrix expansion, and optionally the dependency DAG.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showPlan()
	},
}

func registerPlanCommand(root *cobra.Command) {
	root.AddCommand(planCmd)

	planCmd.Flags().StringVarP(&planEvent, "event", "e", "push", "Trigger event kind (push/pull_request/merge_group)")
	planCmd.Flags().StringVar(&planRef, "ref", "main", "Branch or head ref of the trigger")
	planCmd.Flags().StringVar(&planBase, "base", "", "Base ref for change detection (defaults to the trunk branch)")
	planCmd.Flags().IntVar(&planPR, "pr", 0, "Pull request number")
	planCmd.Flags().StringVar(&planTrunk, "trunk", "", "Override the pipeline's always-run trunk branch")
	planCmd.Flags().StringVarP(&planView, "view", "v", "gates", "View (gates/dag)")
}

func showPlan() error {
	pipeline, err := loadPipelineFile(planTrunk)
	if err != nil {
		return err
	}

	event, err := buildEvent(planEvent, planRef, planBase, planPR)
	if err != nil {
		return err
	}

	decisions, err := evaluateGates(pipeline, event)
	if err != nil {
		return err
	}

	if planView == "dag" {
		fmt.Print(render.DAG(pipeline))
		return nil
	}

	fmt.Print(render.GateTable(pipeline, decisions))
	for _, job := range pipeline.Jobs {
		if !decisions[job.Name].Run || job.Matrix == nil {
			continue
		}
		instances := matrix.Expand(job.Matrix)
		fmt.Printf("  %s expands to %d instances:\n", job.Name, len(instances))
		for _, inst := range instances {
			fmt.Printf("    %s\n", inst.ID)
		}
	}
	return nil
}
