package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang-txnlog-normalizer/cmd/normalizer/config"
	"golang-txnlog-normalizer/internal/exporter"
	"golang-txnlog-normalizer/internal/reporter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the normalize command
var (
	inputFile    string
	outputFile   string
	reportFormat string
	reportFile   string
	workers      int
	delimiter    string
	showProgress bool
)

// normalizeCmd represents the normalize command
var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Normalize raw transaction logs into a typed dataset",
	Long: `Normalize parses a raw transaction log file, converting every
recognizable line into a structured record and reporting every dropped
line. A bad line never aborts the batch.

Examples:
  # Parse logs and write the dataset as CSV
  normalizer normalize --input dirty_logs.txt --output clean.csv

  # JSON diagnostics report to a separate file
  normalizer normalize --input dirty_logs.txt --output clean.csv \
    --report-format json --report-file report.json

  # Parallel parsing of a large batch with progress logging
  normalizer normalize --input big_logs.txt --output clean.csv \
    --workers 8 --progress`,

	PreRunE: validateNormalizeFlags,
	RunE:    runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)

	// Required flags
	normalizeCmd.Flags().StringVarP(&inputFile, "input", "i", "", "path to raw transaction log file (required)")

	// Output flags
	normalizeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "dataset output file path (default: stdout)")
	normalizeCmd.Flags().StringVarP(&reportFormat, "report-format", "f", "console", "diagnostics report format: console, json, csv")
	normalizeCmd.Flags().StringVar(&reportFile, "report-file", "", "diagnostics report file path (default: stderr)")
	normalizeCmd.Flags().StringVar(&delimiter, "delimiter", ",", "dataset output delimiter")

	// Processing flags
	normalizeCmd.Flags().IntVarP(&workers, "workers", "w", 0, "parsing worker count (default: number of CPUs)")
	normalizeCmd.Flags().BoolVar(&showProgress, "progress", false, "log progress for large batches")

	normalizeCmd.MarkFlagRequired("input")

	// Bind flags to viper
	viper.BindPFlag("input", normalizeCmd.Flags().Lookup("input"))
	viper.BindPFlag("output", normalizeCmd.Flags().Lookup("output"))
	viper.BindPFlag("report-format", normalizeCmd.Flags().Lookup("report-format"))
	viper.BindPFlag("report-file", normalizeCmd.Flags().Lookup("report-file"))
	viper.BindPFlag("delimiter", normalizeCmd.Flags().Lookup("delimiter"))
	viper.BindPFlag("workers", normalizeCmd.Flags().Lookup("workers"))
	viper.BindPFlag("progress", normalizeCmd.Flags().Lookup("progress"))
}

func validateNormalizeFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	inputFile = viper.GetString("input")
	outputFile = viper.GetString("output")
	reportFormat = viper.GetString("report-format")
	reportFile = viper.GetString("report-file")
	delimiter = viper.GetString("delimiter")
	workers = viper.GetInt("workers")
	showProgress = viper.GetBool("progress")

	if inputFile == "" {
		return fmt.Errorf("input is required")
	}

	if err := validateFileExists(inputFile, "transaction log file"); err != nil {
		return err
	}

	validFormats := map[string]bool{"console": true, "json": true, "csv": true}
	if !validFormats[reportFormat] {
		return fmt.Errorf("invalid report format '%s'. Valid formats: console, json, csv", reportFormat)
	}

	if len([]rune(delimiter)) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", delimiter)
	}

	if workers < 0 {
		return fmt.Errorf("workers cannot be negative")
	}

	for _, path := range []string{outputFile, reportFile} {
		if path == "" {
			continue
		}
		dir := filepath.Dir(path)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	// Check if file is readable
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%s is not readable: %w", description, err)
	}
	file.Close()

	return nil
}

func runNormalize(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	started := time.Now()

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Starting normalization...\n")
		fmt.Fprintf(os.Stderr, "Input file: %s\n", inputFile)
		if outputFile != "" {
			fmt.Fprintf(os.Stderr, "Output file: %s\n", outputFile)
		}
		fmt.Fprintf(os.Stderr, "Report format: %s\n", reportFormat)
	}

	norm, err := config.CreateNormalizer(workers, showProgress)
	if err != nil {
		return fmt.Errorf("failed to create normalizer: %w", err)
	}

	result, err := norm.ParseFromPath(ctx, inputFile)
	if err != nil {
		return err
	}

	// Write the dataset artifact
	exportConfig := config.CreateExporterConfig([]rune(delimiter)[0])
	datasetExporter := exporter.New(exportConfig)
	if outputFile != "" {
		if err := datasetExporter.WriteFile(&result.Dataset, outputFile); err != nil {
			return err
		}
	} else {
		if err := datasetExporter.WriteDataset(&result.Dataset, os.Stdout); err != nil {
			return fmt.Errorf("failed to write dataset: %w", err)
		}
	}

	// Generate the diagnostics report
	reportConfig := config.CreateReportConfig(reportFormat)
	reportGenerator, err := reporter.NewReportGenerator(reportConfig)
	if err != nil {
		return fmt.Errorf("failed to create report generator: %w", err)
	}

	reportOut := os.Stderr
	if reportFile != "" {
		reportOut, err = os.Create(reportFile)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer reportOut.Close()
	}

	if err := reportGenerator.GenerateReport(result, reportOut); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "\nNormalization completed successfully.\n")
		fmt.Fprintf(os.Stderr, "Parsed %d of %d candidate lines (%d dropped).\n",
			result.Report.ParsedRecords, result.Report.CandidateLines, result.Report.DroppedLines)
		fmt.Fprintf(os.Stderr, "Processing time: %v\n", time.Since(started))
	}

	return nil
}
