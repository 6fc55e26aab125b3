package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang-txnlog-normalizer/cmd/normalizer/config"
	"golang-txnlog-normalizer/internal/features"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	featuresInput  string
	featuresOutput string
)

// featuresCmd represents the features command
var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Normalize logs and derive per-user behavioral features",
	Long: `Features runs the normalization pipeline and then derives per-user
behavioral features from the dataset: calendar features, rolling
activity windows, and statistical baselines. Records without a user or
datetime cannot be keyed and are skipped.

Examples:
  normalizer features --input dirty_logs.txt --output features.json
  normalizer features --input dirty_logs.txt`,

	PreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFileExists(featuresInput, "transaction log file")
	},
	RunE: runFeatures,
}

func init() {
	rootCmd.AddCommand(featuresCmd)

	featuresCmd.Flags().StringVarP(&featuresInput, "input", "i", "", "path to raw transaction log file (required)")
	featuresCmd.Flags().StringVarP(&featuresOutput, "output", "o", "", "feature rows output file, JSON (default: stdout)")

	featuresCmd.MarkFlagRequired("input")
}

func runFeatures(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	norm, err := config.CreateNormalizer(0, false)
	if err != nil {
		return fmt.Errorf("failed to create normalizer: %w", err)
	}

	result, err := norm.ParseFromPath(ctx, featuresInput)
	if err != nil {
		return err
	}

	engineer := features.NewEngineer()
	rows := engineer.EngineerBatch(&result.Dataset)

	out := os.Stdout
	if featuresOutput != "" {
		out, err = os.Create(featuresOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer out.Close()
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(rows); err != nil {
		return fmt.Errorf("failed to write feature rows: %w", err)
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Engineered %d feature rows from %d records.\n",
			len(rows), result.Dataset.Len())
	}

	return nil
}
