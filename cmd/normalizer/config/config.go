// Package config builds the runtime components of the normalizer CLI
// from viper-managed settings, keeping flag wiring out of the engine
// packages.
package config

import (
	"fmt"

	"golang-txnlog-normalizer/internal/exporter"
	"golang-txnlog-normalizer/internal/fields"
	"golang-txnlog-normalizer/internal/grammar"
	"golang-txnlog-normalizer/internal/models"
	"golang-txnlog-normalizer/internal/normalizer"
	"golang-txnlog-normalizer/internal/reporter"

	"github.com/spf13/viper"
)

// CreateRegistry builds the grammar registry, extending the built-in
// mojibake repair table with any replacements from the config file.
//
// Config file entries map corrupted sequences to their intended text:
//
//	replacements:
//	  "â€™": "'"
func CreateRegistry() *grammar.Registry {
	extras := viper.GetStringMapString("replacements")

	replacements := make([]fields.Replacement, 0, len(extras))
	for corrupted, intended := range extras {
		replacements = append(replacements, fields.Replacement{
			Corrupted: corrupted,
			Intended:  intended,
		})
	}

	cleaner := fields.NewCleaner(replacements...)
	return grammar.NewRegistry(cleaner)
}

// CreateNormalizerConfig builds the batch configuration from settings
// plus the explicit worker and progress options.
func CreateNormalizerConfig(workers int, showProgress bool) *normalizer.Config {
	config := normalizer.DefaultConfig()

	if workers > 0 {
		config.Workers = workers
	}
	config.ShowProgress = showProgress

	if location := viper.GetString("default-location"); location != "" {
		config.DefaultLocation = location
	}
	if device := viper.GetString("default-device"); device != "" {
		config.DefaultDevice = device
	}
	if fill := viper.GetString("fill-currency"); fill != "" {
		config.FillCurrency = models.Currency(fill)
	}

	return config
}

// CreateNormalizer assembles a ready-to-run Normalizer
func CreateNormalizer(workers int, showProgress bool) (*normalizer.Normalizer, error) {
	registry := CreateRegistry()
	config := CreateNormalizerConfig(workers, showProgress)

	norm, err := normalizer.New(registry, config)
	if err != nil {
		return nil, fmt.Errorf("invalid normalizer configuration: %w", err)
	}
	return norm, nil
}

// CreateReportConfig builds the report configuration for the given format
func CreateReportConfig(format string) *reporter.ReportConfig {
	config := reporter.DefaultReportConfig()
	config.Format = reporter.OutputFormat(format)

	if max := viper.GetInt("max-diagnostics"); max > 0 {
		config.MaxDiagnostics = max
	}

	return config
}

// CreateExporterConfig builds the dataset export configuration
func CreateExporterConfig(delimiter rune) *exporter.Config {
	config := exporter.DefaultConfig()
	config.Delimiter = delimiter
	return config
}
