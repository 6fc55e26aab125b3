// Package normalizer drives the conversion of raw transaction log blobs
// into a typed Dataset plus a diagnostics report.
//
// The pipeline is: FilterLines splits and filters the blob; the grammar
// registry is applied to each candidate line (possibly across a bounded
// worker pool, since per-line parsing is pure); matched lines become
// ParsedRecords and unmatched lines become diagnostics; a final
// aggregation pass coerces column types and fills defaults. One bad line
// never aborts a batch: only a missing input source is fatal.
package normalizer

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"golang-txnlog-normalizer/internal/grammar"
	"golang-txnlog-normalizer/internal/models"
	"golang-txnlog-normalizer/pkg/errors"
	"golang-txnlog-normalizer/pkg/logger"
)

// Config holds configuration for batch normalization
type Config struct {
	// Workers bounds the parsing worker pool. Values below 1 fall back
	// to the number of CPUs.
	Workers int

	// DefaultLocation and DefaultDevice fill missing values during
	// aggregation.
	DefaultLocation string
	DefaultDevice   string

	// FillCurrency is the dataset-level fill for records that somehow
	// carry no currency. Kept distinct from the per-token GBP default of
	// the amount extractor.
	FillCurrency models.Currency

	// ShowProgress enables periodic progress logging for large batches
	ShowProgress bool
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Workers:         runtime.NumCPU(),
		DefaultLocation: "Unknown",
		DefaultDevice:   "Unknown",
		FillCurrency:    models.CurrencyUSD,
	}
}

// Validate validates the normalizer configuration
func (c *Config) Validate() error {
	if c.DefaultLocation == "" || c.DefaultDevice == "" {
		return fmt.Errorf("default location and device fills cannot be empty")
	}
	if !c.FillCurrency.IsValid() {
		return fmt.Errorf("fill currency must be one of the supported codes, got %q", c.FillCurrency)
	}
	return nil
}

// Report is the diagnostics side of a batch run: how many candidate
// lines were seen, how many parsed, and which were dropped.
type Report struct {
	RunID          string              `json:"run_id"`
	ProcessedAt    time.Time           `json:"processed_at"`
	Duration       time.Duration       `json:"duration"`
	CandidateLines int                 `json:"candidate_lines"`
	ParsedRecords  int                 `json:"parsed_records"`
	DroppedLines   int                 `json:"dropped_lines"`
	Diagnostics    []models.Diagnostic `json:"diagnostics"`
}

// Result bundles the Dataset produced by one batch invocation with its
// diagnostics report.
type Result struct {
	Dataset models.Dataset `json:"dataset"`
	Report  *Report        `json:"report"`
}

// Normalizer converts raw log text into a Dataset. The grammar registry
// is injected at construction and treated as read-only, so a single
// Normalizer is safe for concurrent batches.
type Normalizer struct {
	registry *grammar.Registry
	config   *Config
	logger   logger.Logger
}

// New creates a Normalizer with the given registry and configuration.
// A nil registry gets the default nine-grammar registry; a nil config
// gets DefaultConfig.
func New(registry *grammar.Registry, config *Config) (*Normalizer, error) {
	if registry == nil {
		registry = grammar.NewRegistry(nil)
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigError("normalizer", config, err)
	}

	return &Normalizer{
		registry: registry,
		config:   config,
		logger:   logger.GetGlobalLogger().WithComponent("normalizer"),
	}, nil
}

// ParseFromPath reads the log file at path and normalizes its contents.
// An empty path is the fatal missing-input condition; the file handle is
// released regardless of outcome.
func (n *Normalizer) ParseFromPath(ctx context.Context, path string) (*Result, error) {
	if path == "" {
		return nil, errors.InputError()
	}

	n.logger.WithField("file_path", path).Debug("Reading log file")

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		if os.IsPermission(err) {
			return nil, errors.FileError(errors.CodeFilePermission, path, err)
		}
		return nil, errors.FileError(errors.CodeFileRead, path, err)
	}
	defer file.Close()

	blob, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.FileError(errors.CodeFileRead, path, err)
	}

	return n.parseBlob(ctx, string(blob))
}

// ParseFromText normalizes an in-memory text blob. An empty blob is a
// valid (empty) batch, not an error.
func (n *Normalizer) ParseFromText(ctx context.Context, text string) (*Result, error) {
	return n.parseBlob(ctx, text)
}
