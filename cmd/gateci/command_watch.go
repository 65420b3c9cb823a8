package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sourceplane/gateci/internal/watch"
	"github.com/spf13/cobra"
)

var (
	watchDebounce time.Duration
	watchExecute  bool
	watchTrunk    string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the pipeline when filtered paths change",
	Long:  "Watch the directories referenced by the pipeline's path filters and re-run the pipeline (as a trunk push) after each debounced batch of changes.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchPipeline()
	},
}

func registerWatchCommand(root *cobra.Command) {
	root.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Quiet period before re-running")
	watchCmd.Flags().BoolVarP(&watchExecute, "execute", "x", false, "Actually execute step commands (default is dry-run)")
	watchCmd.Flags().StringVar(&watchTrunk, "trunk", "", "Override the pipeline's always-run trunk branch")
}

func watchPipeline() error {
	pipeline, err := loadPipelineFile(watchTrunk)
	if err != nil {
		return err
	}

	var patterns []string
	for _, rule := range pipeline.Filters {
		patterns = append(patterns, rule.Patterns...)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher := &watch.Watcher{
		Roots:    watch.Roots(workDir, patterns),
		Debounce: watchDebounce,
		Stdout:   os.Stdout,
	}

	err = watcher.Run(ctx, func() error {
		// Each local iteration behaves like a fresh trunk push
		runEvent = "push"
		runRef = pipeline.TrunkBranch
		runTrunk = watchTrunk
		runExecute = watchExecute
		runID = ""
		return runPipeline()
	})
	if errors.Is(err, context.Canceled) {
		fmt.Println("✓ Watch stopped")
		return nil
	}
	return err
}
