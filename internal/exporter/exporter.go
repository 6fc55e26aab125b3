// Package exporter persists a normalized Dataset to delimited storage,
// the artifact consumed by downstream validation and feature stages.
package exporter

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"golang-txnlog-normalizer/internal/models"
	"golang-txnlog-normalizer/pkg/errors"
	"golang-txnlog-normalizer/pkg/logger"
)

// timestampLayout is the canonical serialization of the datetime column
const timestampLayout = "2006-01-02 15:04:05"

// Config holds configuration for dataset export
type Config struct {
	Delimiter rune
	Header    bool
}

// DefaultConfig returns a default export configuration
func DefaultConfig() *Config {
	return &Config{
		Delimiter: ',',
		Header:    true,
	}
}

// Exporter writes datasets as delimited text. Null cells serialize as
// empty strings.
type Exporter struct {
	config *Config
	logger logger.Logger
}

// New creates an Exporter with the given configuration; nil means defaults
func New(config *Config) *Exporter {
	if config == nil {
		config = DefaultConfig()
	}
	return &Exporter{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("exporter"),
	}
}

// WriteDataset writes the dataset to the writer in the fixed column order
func (e *Exporter) WriteDataset(ds *models.Dataset, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = e.config.Delimiter

	if e.config.Header {
		if err := csvWriter.Write(models.Columns()); err != nil {
			return err
		}
	}

	for i := range ds.Records {
		if err := csvWriter.Write(recordRow(&ds.Records[i])); err != nil {
			return err
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// WriteFile writes the dataset to the file at path, creating or
// truncating it.
func (e *Exporter) WriteFile(ds *models.Dataset, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.ExportError(path, err)
	}
	defer file.Close()

	if err := e.WriteDataset(ds, file); err != nil {
		return errors.ExportError(path, err)
	}

	e.logger.WithFields(logger.Fields{
		"output_path": path,
		"records":     ds.Len(),
	}).Info("Dataset artifact written")
	return nil
}

func recordRow(rec *models.ParsedRecord) []string {
	row := make([]string, 0, len(models.Columns()))
	row = append(row, strconv.Itoa(rec.RowID))
	row = append(row, rec.OriginalLog)

	if rec.Datetime != nil {
		row = append(row, rec.Datetime.Format(timestampLayout))
	} else {
		row = append(row, "")
	}

	row = append(row, stringCell(rec.UserID))
	row = append(row, stringCell(rec.TransactionType))

	if rec.Amount != nil {
		row = append(row, strconv.FormatFloat(*rec.Amount, 'f', -1, 64))
	} else {
		row = append(row, "")
	}

	row = append(row, rec.Currency.String())
	row = append(row, rec.Location)
	row = append(row, rec.Device)
	return row
}

func stringCell(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
