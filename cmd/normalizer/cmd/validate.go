package cmd

import (
	"context"
	"fmt"
	"os"

	"golang-txnlog-normalizer/cmd/normalizer/config"
	"golang-txnlog-normalizer/internal/schema"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	validateInput string
	statusFile    string
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Parse logs and validate the dataset against the declared schema",
	Long: `Validate runs the full normalization pipeline on a log file and
checks the produced dataset against the declared column schema. The
outcome is written to a status file consumed by later pipeline stages.

Examples:
  normalizer validate --input dirty_logs.txt
  normalizer validate --input dirty_logs.txt --status-file status.txt`,

	PreRunE: validateValidateFlags,
	RunE:    runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateInput, "input", "i", "", "path to raw transaction log file (required)")
	validateCmd.Flags().StringVar(&statusFile, "status-file", "", "validation status file path (optional)")

	validateCmd.MarkFlagRequired("input")
}

func validateValidateFlags(cmd *cobra.Command, args []string) error {
	if err := validateFileExists(validateInput, "transaction log file"); err != nil {
		return err
	}
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	norm, err := config.CreateNormalizer(0, false)
	if err != nil {
		return fmt.Errorf("failed to create normalizer: %w", err)
	}

	result, err := norm.ParseFromPath(ctx, validateInput)
	if err != nil {
		return err
	}

	validator := schema.NewValidator(nil)
	validation := validator.Validate(&result.Dataset)

	fmt.Fprintf(os.Stdout, "Validation status: %t\n", validation.Status)
	for _, mismatch := range validation.Mismatches {
		fmt.Fprintf(os.Stdout, "  %s\n", mismatch)
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Parsed %d of %d candidate lines.\n",
			result.Report.ParsedRecords, result.Report.CandidateLines)
	}

	if statusFile != "" {
		if err := validator.WriteStatusFile(validation, statusFile); err != nil {
			return err
		}
	}

	if !validation.Status {
		return fmt.Errorf("schema validation failed with %d mismatch(es)", len(validation.Mismatches))
	}
	return nil
}
