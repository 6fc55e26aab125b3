package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Currency represents one of the supported ISO 4217 currency codes.
// The normalizer recognizes a closed set; free-text currency values
// never reach a ParsedRecord.
type Currency string

const (
	// CurrencyEUR represents the Euro
	CurrencyEUR Currency = "EUR"
	// CurrencyGBP represents the British Pound
	CurrencyGBP Currency = "GBP"
	// CurrencyUSD represents the US Dollar
	CurrencyUSD Currency = "USD"
)

// String returns the string representation of Currency
func (c Currency) String() string {
	return string(c)
}

// IsValid checks if the currency is one of the supported codes
func (c Currency) IsValid() bool {
	return c == CurrencyEUR || c == CurrencyGBP || c == CurrencyUSD
}

// ParsedRecord is one normalized transaction extracted from a raw log line.
// It is immutable once produced by the assembler. Optional fields are
// pointers; a nil pointer means the source line carried no usable value.
type ParsedRecord struct {
	RowID           int        `json:"row_id" csv:"row_id"`
	OriginalLog     string     `json:"original_log" csv:"original_log"`
	Datetime        *time.Time `json:"datetime" csv:"datetime"`
	UserID          *string    `json:"user_id" csv:"user_id"`
	TransactionType *string    `json:"transaction_type" csv:"transaction_type"`
	Amount          *float64   `json:"amount" csv:"amount"`
	Currency        Currency   `json:"currency" csv:"currency"`
	Location        string     `json:"location" csv:"location"`
	Device          string     `json:"device" csv:"device"`
}

// Validate performs basic invariant checks on the ParsedRecord
func (r *ParsedRecord) Validate() error {
	if r.RowID <= 0 {
		return fmt.Errorf("row id must be positive, got %d", r.RowID)
	}

	if r.OriginalLog == "" {
		return fmt.Errorf("original log line cannot be empty")
	}

	if r.Currency != "" && !r.Currency.IsValid() {
		return fmt.Errorf("invalid currency code: %s", r.Currency)
	}

	if r.Amount != nil && (math.IsNaN(*r.Amount) || math.IsInf(*r.Amount, 0)) {
		return fmt.Errorf("amount must be a finite number")
	}

	return nil
}

// String returns a string representation of the ParsedRecord
func (r *ParsedRecord) String() string {
	return fmt.Sprintf("ParsedRecord{Row: %d, User: %s, Type: %s, Amount: %s %s, Location: %s, Device: %s}",
		r.RowID, stringOrNull(r.UserID), stringOrNull(r.TransactionType),
		floatOrNull(r.Amount), r.Currency, r.Location, r.Device)
}

// Equals compares two ParsedRecord instances for equality
func (r *ParsedRecord) Equals(other *ParsedRecord) bool {
	if other == nil {
		return false
	}

	return r.RowID == other.RowID &&
		r.OriginalLog == other.OriginalLog &&
		equalTime(r.Datetime, other.Datetime) &&
		equalString(r.UserID, other.UserID) &&
		equalString(r.TransactionType, other.TransactionType) &&
		equalFloat(r.Amount, other.Amount) &&
		r.Currency == other.Currency &&
		r.Location == other.Location &&
		r.Device == other.Device
}

// MarshalJSON implements custom JSON marshaling for ParsedRecord so the
// datetime column serializes in the canonical log timestamp layout.
func (r *ParsedRecord) MarshalJSON() ([]byte, error) {
	type Alias ParsedRecord
	var datetime *string
	if r.Datetime != nil {
		formatted := r.Datetime.Format("2006-01-02 15:04:05")
		datetime = &formatted
	}
	return json.Marshal(&struct {
		Datetime *string `json:"datetime"`
		*Alias
	}{
		Datetime: datetime,
		Alias:    (*Alias)(r),
	})
}

// Diagnostic records one dropped line: its ordinal within the filtered
// sequence, a truncated copy of the source text, and why it was dropped.
type Diagnostic struct {
	Ordinal int    `json:"ordinal"`
	Text    string `json:"text"`
	Reason  string `json:"reason"`
}

// DiagnosticTextLimit is the maximum number of characters of source text
// preserved in a diagnostic entry.
const DiagnosticTextLimit = 100

// NewDiagnostic creates a Diagnostic, truncating the source text
func NewDiagnostic(ordinal int, text, reason string) Diagnostic {
	return Diagnostic{
		Ordinal: ordinal,
		Text:    Truncate(text, DiagnosticTextLimit),
		Reason:  reason,
	}
}

// String returns a human-readable representation of the Diagnostic
func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d dropped (%s): %s", d.Ordinal, d.Reason, d.Text)
}

// Truncate shortens s to at most limit runes, appending an ellipsis marker
// when anything was cut.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// Dataset is the ordered result of one batch invocation. Records are
// ordered by RowID; the slice is built once and not mutated afterwards.
type Dataset struct {
	Records []ParsedRecord `json:"records"`
}

// Columns lists the dataset column names in their fixed output order
func Columns() []string {
	return []string{
		"row_id",
		"original_log",
		"datetime",
		"user_id",
		"transaction_type",
		"amount",
		"currency",
		"location",
		"device",
	}
}

// ColumnTypes lists the coerced type of each column, parallel to Columns.
// Nullable columns carry their base type; nullability is part of the
// dataset contract, not the type name.
func ColumnTypes() []string {
	return []string{
		"int64",
		"string",
		"datetime64",
		"string",
		"string",
		"float64",
		"string",
		"string",
		"string",
	}
}

// Len returns the number of records in the dataset
func (ds *Dataset) Len() int {
	return len(ds.Records)
}

// IsEmpty returns true if the dataset holds no records
func (ds *Dataset) IsEmpty() bool {
	return len(ds.Records) == 0
}

// Validate checks dataset-level invariants: row ids strictly increasing,
// every currency a member of the supported set, location and device
// never empty after aggregation.
func (ds *Dataset) Validate() error {
	lastRow := 0
	for i := range ds.Records {
		rec := &ds.Records[i]
		if err := rec.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if rec.RowID <= lastRow {
			return fmt.Errorf("row ids must be strictly increasing: %d after %d", rec.RowID, lastRow)
		}
		lastRow = rec.RowID
		if !rec.Currency.IsValid() {
			return fmt.Errorf("record %d: currency %q outside supported set", i, rec.Currency)
		}
		if rec.Location == "" || rec.Device == "" {
			return fmt.Errorf("record %d: location and device must be filled after aggregation", i)
		}
	}
	return nil
}

func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func equalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func stringOrNull(s *string) string {
	if s == nil {
		return "<null>"
	}
	return *s
}

func floatOrNull(f *float64) string {
	if f == nil {
		return "<null>"
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
