package main

import "github.com/spf13/cobra"

var (
	pipelineFile string
	workDir      string
	stateDir     string
)

var rootCmd = &cobra.Command{
	Use:   "gateci",
	Short: "Change-gated job orchestrator",
	Long:  "gateci evaluates triggers against declared path filters, executes the gated-in jobs with matrix expansion and install caching, and reports one aggregated conclusion.",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&pipelineFile, "pipeline", "p", "pipeline.yaml", "Pipeline definition file")
	rootCmd.PersistentFlags().StringVar(&workDir, "workdir", ".", "Repository working directory")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", ".gateci", "Directory for caches, artifacts, and run records")

	registerRunCommand(rootCmd)
	registerPlanCommand(rootCmd)
	registerValidateCommand(rootCmd)
	registerNotifyCommand(rootCmd)
	registerRunsCommand(rootCmd)
	registerWatchCommand(rootCmd)
}
