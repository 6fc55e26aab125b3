// Package schema validates a produced Dataset against a declared column
// schema before it is promoted to later pipeline stages. Validation
// compares column names and coerced dtypes in order; a mismatch is a
// reported status, never a panic.
package schema

import (
	"fmt"
	"os"
	"strings"

	"golang-txnlog-normalizer/internal/models"
	"golang-txnlog-normalizer/pkg/errors"
	"golang-txnlog-normalizer/pkg/logger"
)

// ColumnSpec declares one expected column: its name and coerced dtype
type ColumnSpec struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Schema is an ordered list of expected columns. The row_id bookkeeping
// column is excluded from validation.
type Schema struct {
	Columns []ColumnSpec `json:"columns"`
}

// DefaultSchema returns the declared schema for the normalized
// transaction dataset.
func DefaultSchema() *Schema {
	names := models.Columns()
	types := models.ColumnTypes()

	specs := make([]ColumnSpec, 0, len(names)-1)
	for i, name := range names {
		if name == "row_id" {
			continue
		}
		specs = append(specs, ColumnSpec{Name: name, Type: types[i]})
	}
	return &Schema{Columns: specs}
}

// ValidationResult reports the outcome of a schema comparison
type ValidationResult struct {
	Status     bool     `json:"status"`
	Mismatches []string `json:"mismatches,omitempty"`
}

// Validator compares datasets against a declared schema
type Validator struct {
	schema *Schema
	logger logger.Logger
}

// NewValidator creates a Validator; a nil schema uses DefaultSchema
func NewValidator(schema *Schema) *Validator {
	if schema == nil {
		schema = DefaultSchema()
	}
	return &Validator{
		schema: schema,
		logger: logger.GetGlobalLogger().WithComponent("schema"),
	}
}

// Validate compares the dataset's column names and coerced dtypes, in
// order, against the declared schema. The dataset's actual columns are
// fixed by the normalizer, so this guards against schema drift between
// the declaration and the producing code.
func (v *Validator) Validate(ds *models.Dataset) *ValidationResult {
	result := &ValidationResult{Status: true}

	actualNames, actualTypes := datasetColumns()

	if len(actualNames) != len(v.schema.Columns) {
		result.Status = false
		result.Mismatches = append(result.Mismatches, fmt.Sprintf(
			"column count mismatch: expected %d, found %d",
			len(v.schema.Columns), len(actualNames)))
	}

	limit := len(actualNames)
	if len(v.schema.Columns) < limit {
		limit = len(v.schema.Columns)
	}
	for i := 0; i < limit; i++ {
		spec := v.schema.Columns[i]
		if actualNames[i] != spec.Name {
			result.Status = false
			result.Mismatches = append(result.Mismatches, fmt.Sprintf(
				"column %d name mismatch: expected %q, found %q", i, spec.Name, actualNames[i]))
		}
		if actualTypes[i] != spec.Type {
			result.Status = false
			result.Mismatches = append(result.Mismatches, fmt.Sprintf(
				"column %d dtype mismatch: expected %q, found %q", i, spec.Type, actualTypes[i]))
		}
	}

	if err := ds.Validate(); err != nil {
		result.Status = false
		result.Mismatches = append(result.Mismatches, fmt.Sprintf("dataset invariant violated: %v", err))
	}

	if result.Status {
		v.logger.Info("Schema validation passed")
	} else {
		v.logger.WithField("mismatches", strings.Join(result.Mismatches, "; ")).
			Warn("Schema validation failed")
	}

	return result
}

// WriteStatusFile persists the validation status for downstream stages
func (v *Validator) WriteStatusFile(result *ValidationResult, path string) error {
	content := fmt.Sprintf("Validation status: %t\n", result.Status)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return errors.SchemaError(errors.CodeStatusWrite, path, err)
	}
	return nil
}

// datasetColumns lists the produced columns and dtypes with row_id
// excluded, mirroring what the declared schema covers.
func datasetColumns() ([]string, []string) {
	names := models.Columns()
	types := models.ColumnTypes()

	outNames := make([]string, 0, len(names)-1)
	outTypes := make([]string, 0, len(types)-1)
	for i, name := range names {
		if name == "row_id" {
			continue
		}
		outNames = append(outNames, name)
		outTypes = append(outTypes, types[i])
	}
	return outNames, outTypes
}
