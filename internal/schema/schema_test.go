package schema

import (
	"os"
	"path/filepath"
	"testing"

	"golang-txnlog-normalizer/internal/models"
)

func TestDefaultSchemaExcludesRowID(t *testing.T) {
	schema := DefaultSchema()

	if len(schema.Columns) != len(models.Columns())-1 {
		t.Fatalf("schema has %d columns, want %d", len(schema.Columns), len(models.Columns())-1)
	}
	for _, spec := range schema.Columns {
		if spec.Name == "row_id" {
			t.Error("row_id bookkeeping column must not be part of the declared schema")
		}
	}
	if schema.Columns[0].Name != "original_log" {
		t.Errorf("first declared column = %s, want original_log", schema.Columns[0].Name)
	}
}

func TestValidateDefaultSchemaPasses(t *testing.T) {
	validator := NewValidator(nil)

	ds := &models.Dataset{Records: []models.ParsedRecord{
		{RowID: 1, OriginalLog: "line", Currency: models.CurrencyGBP, Location: "L", Device: "D"},
	}}

	result := validator.Validate(ds)
	if !result.Status {
		t.Errorf("default schema should validate the produced dataset: %v", result.Mismatches)
	}
}

func TestValidateDetectsDrift(t *testing.T) {
	tests := []struct {
		name   string
		schema *Schema
	}{
		{
			name: "column count mismatch",
			schema: &Schema{Columns: []ColumnSpec{
				{Name: "original_log", Type: "string"},
			}},
		},
		{
			name: "column name mismatch",
			schema: func() *Schema {
				s := DefaultSchema()
				s.Columns[0].Name = "raw_log"
				return s
			}(),
		},
		{
			name: "column dtype mismatch",
			schema: func() *Schema {
				s := DefaultSchema()
				s.Columns[1].Type = "string"
				return s
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := NewValidator(tt.schema)
			result := validator.Validate(&models.Dataset{})

			if result.Status {
				t.Error("expected validation failure")
			}
			if len(result.Mismatches) == 0 {
				t.Error("expected at least one reported mismatch")
			}
		})
	}
}

func TestValidateReportsDatasetInvariantViolations(t *testing.T) {
	validator := NewValidator(nil)

	ds := &models.Dataset{Records: []models.ParsedRecord{
		{RowID: 2, OriginalLog: "b", Currency: models.CurrencyGBP, Location: "L", Device: "D"},
		{RowID: 1, OriginalLog: "a", Currency: models.CurrencyGBP, Location: "L", Device: "D"},
	}}

	result := validator.Validate(ds)
	if result.Status {
		t.Error("out-of-order row ids should fail validation")
	}
}

func TestWriteStatusFile(t *testing.T) {
	validator := NewValidator(nil)
	path := filepath.Join(t.TempDir(), "status.txt")

	if err := validator.WriteStatusFile(&ValidationResult{Status: true}, path); err != nil {
		t.Fatalf("WriteStatusFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read status file: %v", err)
	}
	if string(data) != "Validation status: true\n" {
		t.Errorf("status file content = %q", string(data))
	}

	if err := validator.WriteStatusFile(&ValidationResult{Status: false}, path); err != nil {
		t.Fatalf("WriteStatusFile() error = %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "Validation status: false\n" {
		t.Errorf("status file content = %q", string(data))
	}
}

func TestWriteStatusFileBadPath(t *testing.T) {
	validator := NewValidator(nil)

	err := validator.WriteStatusFile(&ValidationResult{Status: true},
		filepath.Join(t.TempDir(), "missing", "status.txt"))
	if err == nil {
		t.Error("expected error for unwritable path")
	}
}
