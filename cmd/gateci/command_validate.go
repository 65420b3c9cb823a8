package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the pipeline definition",
	RunE: func(cmd *cobra.Command, args []string) error {
		return validatePipeline()
	},
}

func registerValidateCommand(root *cobra.Command) {
	root.AddCommand(validateCmd)
}

func validatePipeline() error {
	fmt.Println("□ Validating pipeline...")
	pipeline, err := loadPipelineFile("")
	if err != nil {
		return err
	}

	fmt.Printf("✓ Pipeline %s is valid (%d filters, %d jobs)\n",
		pipeline.Metadata.Name, len(pipeline.Filters), len(pipeline.Jobs))
	return nil
}
