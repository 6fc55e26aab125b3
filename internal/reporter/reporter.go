// Package reporter renders the diagnostics report of a normalization run.
//
// Supported output formats:
//   - Console: human-readable summary for terminal display
//   - JSON: structured data for programmatic consumption
//   - CSV: dropped-line listing for spreadsheet triage
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"golang-txnlog-normalizer/internal/normalizer"
)

// OutputFormat represents the supported report output formats
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// MaxDiagnostics caps how many dropped lines the console report
	// lists; zero means no cap. JSON and CSV always include everything.
	MaxDiagnostics int `json:"max_diagnostics"`

	// CSV options
	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:         FormatConsole,
		MaxDiagnostics: 0,
		CSVDelimiter:   ',',
		CSVHeaders:     true,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	if c.MaxDiagnostics < 0 {
		return fmt.Errorf("max diagnostics cannot be negative")
	}
	return nil
}

// ReportGenerator renders normalization diagnostics in various formats
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a generator with the specified configuration
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}

	return &ReportGenerator{config: config}, nil
}

// GenerateReport writes the diagnostics report for a normalization result
func (rg *ReportGenerator) GenerateReport(result *normalizer.Result, writer io.Writer) error {
	if result == nil || result.Report == nil {
		return fmt.Errorf("normalization result cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.generateConsoleReport(result, writer)
	case FormatJSON:
		return rg.generateJSONReport(result, writer)
	case FormatCSV:
		return rg.generateCSVReport(result, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

func (rg *ReportGenerator) generateConsoleReport(result *normalizer.Result, writer io.Writer) error {
	report := result.Report

	fmt.Fprintf(writer, "NORMALIZATION REPORT\n")
	fmt.Fprintf(writer, "Run: %s\n", report.RunID)
	fmt.Fprintf(writer, "Generated: %s\n", report.ProcessedAt.Format(time.RFC3339))
	fmt.Fprintf(writer, "Processing Duration: %v\n\n", report.Duration)

	fmt.Fprintf(writer, "=== SUMMARY ===\n")
	fmt.Fprintf(writer, "%-22s %d\n", "Candidate lines:", report.CandidateLines)
	fmt.Fprintf(writer, "%-22s %d\n", "Parsed records:", report.ParsedRecords)
	fmt.Fprintf(writer, "%-22s %d\n", "Dropped lines:", report.DroppedLines)
	if report.CandidateLines > 0 {
		rate := float64(report.ParsedRecords) * 100 / float64(report.CandidateLines)
		fmt.Fprintf(writer, "%-22s %.1f%%\n", "Parse rate:", rate)
	}

	if len(report.Diagnostics) > 0 {
		fmt.Fprintf(writer, "\n=== DROPPED LINES ===\n")
		limit := len(report.Diagnostics)
		if rg.config.MaxDiagnostics > 0 && rg.config.MaxDiagnostics < limit {
			limit = rg.config.MaxDiagnostics
		}
		for _, diag := range report.Diagnostics[:limit] {
			fmt.Fprintf(writer, "  line %-6d %-40s %s\n", diag.Ordinal, diag.Reason, diag.Text)
		}
		if limit < len(report.Diagnostics) {
			fmt.Fprintf(writer, "  ... and %d more\n", len(report.Diagnostics)-limit)
		}
	}

	return nil
}

func (rg *ReportGenerator) generateJSONReport(result *normalizer.Result, writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result.Report)
}

func (rg *ReportGenerator) generateCSVReport(result *normalizer.Result, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = rg.config.CSVDelimiter
	defer csvWriter.Flush()

	if rg.config.CSVHeaders {
		if err := csvWriter.Write([]string{"ordinal", "reason", "text"}); err != nil {
			return err
		}
	}

	for _, diag := range result.Report.Diagnostics {
		row := []string{strconv.Itoa(diag.Ordinal), diag.Reason, diag.Text}
		if err := csvWriter.Write(row); err != nil {
			return err
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}
