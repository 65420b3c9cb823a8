package main

import (
	"fmt"

	"github.com/sourceplane/gateci/internal/model"
	"github.com/sourceplane/gateci/internal/render"
	"github.com/sourceplane/gateci/internal/runstore"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "List stored run records",
	Long:  "List all stored run records, or show the detailed summary of one run.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return listRuns(args)
	},
}

func registerRunsCommand(root *cobra.Command) {
	root.AddCommand(runsCmd)
}

func listRuns(args []string) error {
	_, _, runs, err := openStores()
	if err != nil {
		return err
	}

	if len(args) > 0 {
		record, err := runs.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Print(render.RunSummary(record))
		return nil
	}

	records, err := runs.List()
	if err != nil {
		return err
	}
	fmt.Print(render.RunList(records))
	return nil
}

// resolveRun fetches the requested or latest run record
func resolveRun(runs *runstore.Store, runID string, latest bool) (*model.RunRecord, error) {
	if latest {
		return runs.Latest()
	}
	return runs.Get(runID)
}
