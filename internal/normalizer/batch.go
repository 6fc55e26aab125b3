package normalizer

import (
	"context"
	"math"
	"sync"
	"time"

	"golang-txnlog-normalizer/internal/grammar"
	"golang-txnlog-normalizer/internal/models"
	"golang-txnlog-normalizer/pkg/logger"

	"github.com/google/uuid"
)

// parseBlob runs the full batch: filter, per-line parsing, aggregation.
func (n *Normalizer) parseBlob(ctx context.Context, blob string) (*Result, error) {
	started := time.Now()
	runID := uuid.NewString()

	lines := FilterLines(blob)
	n.logger.WithFields(logger.Fields{
		"run_id":          runID,
		"candidate_lines": len(lines),
	}).Debug("Starting batch parse")

	outcomes, err := n.parseLines(ctx, lines)
	if err != nil {
		return nil, err
	}

	records := make([]models.ParsedRecord, 0, len(outcomes))
	diagnostics := make([]models.Diagnostic, 0)
	for i, outcome := range outcomes {
		if !outcome.Matched() {
			diagnostics = append(diagnostics, models.NewDiagnostic(i+1, lines[i], outcome.Reason))
			continue
		}
		rec := *outcome.Record
		n.coerceRecord(&rec)
		records = append(records, rec)
	}

	report := &Report{
		RunID:          runID,
		ProcessedAt:    started,
		Duration:       time.Since(started),
		CandidateLines: len(lines),
		ParsedRecords:  len(records),
		DroppedLines:   len(diagnostics),
		Diagnostics:    diagnostics,
	}

	n.logger.WithFields(logger.Fields{
		"run_id":  runID,
		"parsed":  report.ParsedRecords,
		"dropped": report.DroppedLines,
	}).Info("Batch parse complete")

	return &Result{
		Dataset: models.Dataset{Records: records},
		Report:  report,
	}, nil
}

// parseLines applies the registry to every candidate line. Lines are
// independent given the read-only registry, so they are distributed over
// a bounded worker pool; each worker writes into its own index of the
// outcome slice, which keeps the output in filtered-line order no matter
// which worker finishes first.
func (n *Normalizer) parseLines(ctx context.Context, lines []string) ([]grammar.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outcomes := make([]grammar.Outcome, len(lines))

	workers := n.config.Workers
	if workers < 1 {
		workers = 1
	}
	if workers == 1 || len(lines) < 2 {
		var progress *logger.ProgressTracker
		if n.config.ShowProgress {
			progress = logger.NewProgressTracker("parse_lines", int64(len(lines)), 0)
		}
		for i, line := range lines {
			outcomes[i] = n.registry.Apply(line, i+1)
			if progress != nil {
				progress.Increment()
			}
		}
		if progress != nil {
			progress.Complete()
		}
		return outcomes, ctx.Err()
	}

	var progress *logger.ProgressTracker
	if n.config.ShowProgress {
		progress = logger.NewProgressTracker("parse_lines", int64(len(lines)), 0)
	}

	semaphore := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, line := range lines {
		wg.Add(1)
		go func(ordinal int, text string) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			outcomes[ordinal-1] = n.registry.Apply(text, ordinal)
			if progress != nil {
				progress.Increment()
			}
		}(i+1, line)
	}
	wg.Wait()

	if progress != nil {
		progress.Complete()
	}
	return outcomes, ctx.Err()
}

// coerceRecord applies the post-pass column coercions to one record:
// non-finite amounts and zero datetimes become null (recovered, never
// fatal), missing location/device get the Unknown sentinel, and a record
// without a currency gets the dataset-level fill.
func (n *Normalizer) coerceRecord(rec *models.ParsedRecord) {
	if rec.Amount != nil && (math.IsNaN(*rec.Amount) || math.IsInf(*rec.Amount, 0)) {
		n.logger.WithFields(logger.Fields{
			"row_id": rec.RowID,
			"field":  "amount",
		}).Debug("Coercing non-finite amount to null")
		rec.Amount = nil
	}

	if rec.Datetime != nil && rec.Datetime.IsZero() {
		rec.Datetime = nil
	}

	if rec.Location == "" {
		rec.Location = n.config.DefaultLocation
	}
	if rec.Device == "" {
		rec.Device = n.config.DefaultDevice
	}
	if rec.Currency == "" {
		rec.Currency = n.config.FillCurrency
	}
}
