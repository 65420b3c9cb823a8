package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sourceplane/gateci/internal/notify"
	"github.com/spf13/cobra"
)

var (
	notifyRunID       string
	notifyLatest      bool
	notifyArtifact    string
	notifyUseGH       bool
	notifyRepo        string
	notifyCommentsDir string
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Post the coverage comment for a completed run",
	Long:  "React to a completed pipeline run: for a successful pull-request-triggered run, download its coverage artifact and create or update the PR comment. Safe to invoke more than once.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return notifyCompletion()
	},
}

func registerNotifyCommand(root *cobra.Command) {
	root.AddCommand(notifyCmd)

	notifyCmd.Flags().StringVar(&notifyRunID, "run", "", "Run identifier of the completed run")
	notifyCmd.Flags().BoolVar(&notifyLatest, "latest", false, "Use the most recent run record")
	notifyCmd.Flags().StringVar(&notifyArtifact, "artifact", "coverage-report", "Artifact name to download")
	notifyCmd.Flags().BoolVar(&notifyUseGH, "gh", false, "Post via the gh CLI instead of the local comment store")
	notifyCmd.Flags().StringVar(&notifyRepo, "repo", "", "GitHub repository for gh (owner/name)")
	notifyCmd.Flags().StringVar(&notifyCommentsDir, "comments-dir", "", "Directory for the local comment store (defaults to <state-dir>/comments)")
}

func notifyCompletion() error {
	if notifyRunID == "" && !notifyLatest {
		return fmt.Errorf("either --run or --latest is required")
	}

	_, artifacts, runs, err := openStores()
	if err != nil {
		return err
	}

	record, err := resolveRun(runs, notifyRunID, notifyLatest)
	if err != nil {
		return err
	}

	var commenter notify.Commenter
	if notifyUseGH {
		commenter = &notify.CLICommenter{Repo: notifyRepo}
	} else {
		commentsDir := notifyCommentsDir
		if commentsDir == "" {
			commentsDir = filepath.Join(stateDir, "comments")
		}
		fileCommenter, err := notify.NewFileCommenter(commentsDir)
		if err != nil {
			return err
		}
		commenter = fileCommenter
	}

	notifier := notify.NewNotifier(artifacts, commenter, notifyArtifact, os.Stdout)
	return notifier.HandleCompletion(record)
}
