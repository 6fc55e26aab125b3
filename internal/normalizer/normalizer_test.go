package normalizer

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"golang-txnlog-normalizer/internal/models"
	"golang-txnlog-normalizer/pkg/errors"
)

func TestFilterLines(t *testing.T) {
	tests := []struct {
		name string
		blob string
		want []string
	}{
		{
			name: "empty blob",
			blob: "",
			want: []string{},
		},
		{
			name: "plain lines pass through trimmed",
			blob: "  line one  \nline two\n",
			want: []string{"line one", "line two"},
		},
		{
			name: "sentinels dropped",
			blob: "line one\n\n\"\"\nMALFORMED_LOG\nraw_log\nline two",
			want: []string{"line one", "line two"},
		},
		{
			name: "header prefix dropped",
			blob: "raw_log,source\nline one",
			want: []string{"line one"},
		},
		{
			name: "sentinel matching is case sensitive",
			blob: "malformed_log\nRAW_LOG header",
			want: []string{"malformed_log", "RAW_LOG header"},
		},
		{
			name: "whitespace only lines dropped",
			blob: "   \n\t\nline one",
			want: []string{"line one"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterLines(tt.blob)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FilterLines() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "empty location fill",
			mutate:  func(c *Config) { c.DefaultLocation = "" },
			wantErr: true,
		},
		{
			name:    "empty device fill",
			mutate:  func(c *Config) { c.DefaultDevice = "" },
			wantErr: true,
		},
		{
			name:    "unsupported fill currency",
			mutate:  func(c *Config) { c.FillCurrency = "JPY" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)

			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %t", err, tt.wantErr)
			}
		})
	}
}

func TestParseFromTextMixedBatch(t *testing.T) {
	norm := newTestNormalizer(t, nil)

	blob := strings.Join([]string{
		"2023-05-14 14:05:31::user123::top-up::500::ATM Location::Device",
		"this line is garbage",
		"MALFORMED_LOG",
		"usr:user456|payment|€25.50|Online|2023-05-15 09:00:00|Chrome",
		"",
		"another unparseable line",
	}, "\n")

	result, err := norm.ParseFromText(context.Background(), blob)
	if err != nil {
		t.Fatalf("ParseFromText() error = %v", err)
	}

	// Sentinels and blanks never become candidates.
	if result.Report.CandidateLines != 4 {
		t.Errorf("CandidateLines = %d, want 4", result.Report.CandidateLines)
	}
	if result.Report.ParsedRecords != 2 {
		t.Errorf("ParsedRecords = %d, want 2", result.Report.ParsedRecords)
	}
	if result.Report.DroppedLines != 2 {
		t.Errorf("DroppedLines = %d, want 2", result.Report.DroppedLines)
	}
	if result.Report.RunID == "" {
		t.Error("RunID should be set")
	}

	// Row ids are positions in the filtered sequence, so the two parsed
	// records keep the ordinals of their source lines.
	if got := result.Dataset.Records[0].RowID; got != 1 {
		t.Errorf("first record RowID = %d, want 1", got)
	}
	if got := result.Dataset.Records[1].RowID; got != 3 {
		t.Errorf("second record RowID = %d, want 3", got)
	}

	// Diagnostics carry the ordinals of the dropped lines.
	wantOrdinals := []int{2, 4}
	for i, diag := range result.Report.Diagnostics {
		if diag.Ordinal != wantOrdinals[i] {
			t.Errorf("diagnostic %d ordinal = %d, want %d", i, diag.Ordinal, wantOrdinals[i])
		}
		if diag.Reason == "" {
			t.Errorf("diagnostic %d has empty reason", i)
		}
	}

	if err := result.Dataset.Validate(); err != nil {
		t.Errorf("produced dataset violates invariants: %v", err)
	}
}

func TestParseFromTextEmptyBlobIsValid(t *testing.T) {
	norm := newTestNormalizer(t, nil)

	result, err := norm.ParseFromText(context.Background(), "")
	if err != nil {
		t.Fatalf("empty blob should be a valid empty batch, got %v", err)
	}
	if !result.Dataset.IsEmpty() {
		t.Errorf("expected empty dataset, got %d records", result.Dataset.Len())
	}
	if result.Report.CandidateLines != 0 || result.Report.DroppedLines != 0 {
		t.Errorf("empty batch report should be all zeroes: %+v", result.Report)
	}
}

func TestParseFromTextIdempotent(t *testing.T) {
	norm := newTestNormalizer(t, nil)
	blob := "2023-05-14 14:05:31::user123::top-up::500::ATM Location::Device\ngarbage"

	first, err := norm.ParseFromText(context.Background(), blob)
	if err != nil {
		t.Fatalf("first parse failed: %v", err)
	}
	second, err := norm.ParseFromText(context.Background(), blob)
	if err != nil {
		t.Fatalf("second parse failed: %v", err)
	}

	if first.Dataset.Len() != second.Dataset.Len() {
		t.Fatalf("record counts differ: %d vs %d", first.Dataset.Len(), second.Dataset.Len())
	}
	for i := range first.Dataset.Records {
		if !first.Dataset.Records[i].Equals(&second.Dataset.Records[i]) {
			t.Errorf("record %d differs between identical runs", i)
		}
	}
}

func TestParseFromTextWorkerPoolMatchesSequential(t *testing.T) {
	lines := []string{
		"2023-05-14 14:05:31::user1::top-up::100::Loc A::Dev A",
		"garbage one",
		"usr:user2|payment|€20|Loc B|2023-05-14 15:00:00|Dev B",
		"14/05/2023 16:00:00 ::: user3 *** REFUND ::: amt:30£ @ Loc C <Dev C>",
		"garbage two",
		"user4 2023-05-14 17:00:00 deposit 40 LocD DevD",
	}
	blob := strings.Join(lines, "\n")

	sequential := newTestNormalizer(t, &Config{
		Workers:         1,
		DefaultLocation: "Unknown",
		DefaultDevice:   "Unknown",
		FillCurrency:    models.CurrencyUSD,
	})
	parallel := newTestNormalizer(t, &Config{
		Workers:         4,
		DefaultLocation: "Unknown",
		DefaultDevice:   "Unknown",
		FillCurrency:    models.CurrencyUSD,
	})

	seqResult, err := sequential.ParseFromText(context.Background(), blob)
	if err != nil {
		t.Fatalf("sequential parse failed: %v", err)
	}
	parResult, err := parallel.ParseFromText(context.Background(), blob)
	if err != nil {
		t.Fatalf("parallel parse failed: %v", err)
	}

	if seqResult.Dataset.Len() != parResult.Dataset.Len() {
		t.Fatalf("record counts differ: %d vs %d", seqResult.Dataset.Len(), parResult.Dataset.Len())
	}
	for i := range seqResult.Dataset.Records {
		if !seqResult.Dataset.Records[i].Equals(&parResult.Dataset.Records[i]) {
			t.Errorf("record %d differs between sequential and parallel runs", i)
		}
	}
	if len(seqResult.Report.Diagnostics) != len(parResult.Report.Diagnostics) {
		t.Fatalf("diagnostic counts differ")
	}
	for i := range seqResult.Report.Diagnostics {
		if seqResult.Report.Diagnostics[i] != parResult.Report.Diagnostics[i] {
			t.Errorf("diagnostic %d differs between sequential and parallel runs", i)
		}
	}
}

func TestParseFromTextAppliesFills(t *testing.T) {
	norm := newTestNormalizer(t, nil)

	// Location "none" cleans to nil, leaving the field empty for the
	// aggregation fill.
	blob := "2023-05-14 14:05:31::user123::top-up::500::none::none"
	result, err := norm.ParseFromText(context.Background(), blob)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if result.Dataset.Len() != 1 {
		t.Fatalf("expected one record, got %d", result.Dataset.Len())
	}

	rec := result.Dataset.Records[0]
	if rec.Location != "Unknown" {
		t.Errorf("Location = %q, want Unknown fill", rec.Location)
	}
	if rec.Device != "Unknown" {
		t.Errorf("Device = %q, want Unknown fill", rec.Device)
	}
	// The per-token extractor already defaulted the currency to GBP, so
	// the dataset-level USD fill must not apply here.
	if rec.Currency != models.CurrencyGBP {
		t.Errorf("Currency = %s, want GBP from the extractor default", rec.Currency)
	}
}

func TestParseFromPath(t *testing.T) {
	norm := newTestNormalizer(t, nil)

	dir := t.TempDir()
	path := filepath.Join(dir, "logs.txt")
	content := "2023-05-14 14:05:31::user123::top-up::500::ATM Location::Device\ngarbage\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	result, err := norm.ParseFromPath(context.Background(), path)
	if err != nil {
		t.Fatalf("ParseFromPath() error = %v", err)
	}
	if result.Report.ParsedRecords != 1 || result.Report.DroppedLines != 1 {
		t.Errorf("report = %+v, want 1 parsed and 1 dropped", result.Report)
	}
}

func TestParseFromPathErrors(t *testing.T) {
	norm := newTestNormalizer(t, nil)

	t.Run("empty path is the fatal missing-input condition", func(t *testing.T) {
		_, err := norm.ParseFromPath(context.Background(), "")
		if err == nil {
			t.Fatal("expected error for empty path")
		}
		normErr, ok := errors.AsNormalizeError(err)
		if !ok {
			t.Fatalf("expected NormalizeError, got %T", err)
		}
		if normErr.Category != errors.CategoryInput {
			t.Errorf("category = %s, want %s", normErr.Category, errors.CategoryInput)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := norm.ParseFromPath(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
		if err == nil {
			t.Fatal("expected error for missing file")
		}
		normErr, ok := errors.AsNormalizeError(err)
		if !ok {
			t.Fatalf("expected NormalizeError, got %T", err)
		}
		if normErr.Code != errors.CodeFileNotFound {
			t.Errorf("code = %s, want %s", normErr.Code, errors.CodeFileNotFound)
		}
	})
}

func TestParseFromTextCancelledContext(t *testing.T) {
	norm := newTestNormalizer(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := norm.ParseFromText(ctx, "2023-05-14 14:05:31::user123::top-up::500::A::B")
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func newTestNormalizer(t *testing.T, config *Config) *Normalizer {
	t.Helper()
	norm, err := New(nil, config)
	if err != nil {
		t.Fatalf("failed to create normalizer: %v", err)
	}
	return norm
}
