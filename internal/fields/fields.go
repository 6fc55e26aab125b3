// Package fields provides the side-effect-free extractors used by the
// grammar layer: a timestamp parser limited to the two layouts legacy
// systems emit, an amount/currency extractor tolerant of corrupted
// multi-byte currency symbols, and a string cleaner that repairs known
// mojibake sequences.
//
// Every extractor follows the same contract: unrecognized input yields a
// nil value (or a documented default), never an error. A bad token must
// not be able to abort a batch of thousands of lines.
package fields

import (
	"regexp"
	"strings"
	"time"

	"golang-txnlog-normalizer/internal/models"

	"github.com/shopspring/decimal"
)

// The two timestamp layouts legacy subsystems produce. Anything else is
// treated as missing, not as an error.
var (
	isoTimestampPattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`)
	euroTimestampPattern = regexp.MustCompile(`^\d{2}/\d{2}/\d{4} \d{2}:\d{2}:\d{2}$`)
)

const (
	isoTimestampLayout  = "2006-01-02 15:04:05"
	euroTimestampLayout = "02/01/2006 15:04:05"
)

// ParseTimestamp parses a timestamp token in either `YYYY-MM-DD HH:MM:SS`
// or `DD/MM/YYYY HH:MM:SS` form. Empty tokens, the case-insensitive
// literal "none", and anything not matching a layout exactly return nil.
func ParseTimestamp(token string) *time.Time {
	if token == "" || strings.EqualFold(token, "none") {
		return nil
	}

	switch {
	case isoTimestampPattern.MatchString(token):
		if ts, err := time.Parse(isoTimestampLayout, token); err == nil {
			return &ts
		}
	case euroTimestampPattern.MatchString(token):
		if ts, err := time.Parse(euroTimestampLayout, token); err == nil {
			return &ts
		}
	}

	// Shape matched but the value is not a real date, or no shape matched.
	return nil
}

// numberRun matches the first contiguous numeric run, allowing thousands
// separators and one decimal point.
var numberRun = regexp.MustCompile(`[0-9,]+\.?[0-9]*`)

// amountAllowed are the only runes kept when scrubbing an amount token
// before numeric extraction.
const amountAllowed = "0123456789.,€£$"

// AmountInfo is the result of extracting an amount token: the numeric
// value (nil when no numeric run was found) and the resolved currency.
type AmountInfo struct {
	Amount   *float64
	Currency models.Currency
}

// ExtractAmount pulls a numeric value and a currency out of a raw token
// that may contain the two in either order, thousands separators, and
// corrupted byte sequences standing in for € or £. It never fails: total
// extraction failure yields a nil amount with the GBP default.
func ExtractAmount(token string) AmountInfo {
	info := AmountInfo{Currency: models.CurrencyGBP}
	if token == "" {
		return info
	}

	// Currency detection runs on the raw token: mojibake sequences are
	// stripped by the scrub below but still identify the currency.
	switch {
	case strings.Contains(token, "€") || strings.Contains(token, "â‚¬"):
		info.Currency = models.CurrencyEUR
	case strings.Contains(token, "£") || strings.Contains(token, "Â£"):
		info.Currency = models.CurrencyGBP
	case strings.Contains(token, "$"):
		info.Currency = models.CurrencyUSD
	}

	var scrubbed strings.Builder
	for _, r := range token {
		if strings.ContainsRune(amountAllowed, r) {
			scrubbed.WriteRune(r)
		}
	}

	run := numberRun.FindString(scrubbed.String())
	if run == "" {
		return info
	}

	if amount, ok := parseNumericRun(run); ok {
		info.Amount = &amount
	}
	return info
}

// ParseAmountValue parses a bare numeric token (thousands separators
// allowed) into a float. Unlike ExtractAmount it reports failure, because
// grammars that bind an already-isolated numeric group must treat a
// malformed group as an extraction failure for the whole line.
func ParseAmountValue(token string) (float64, bool) {
	return parseNumericRun(token)
}

func parseNumericRun(run string) (float64, bool) {
	cleaned := strings.ReplaceAll(run, ",", "")
	cleaned = strings.TrimSuffix(cleaned, ".")
	if cleaned == "" {
		return 0, false
	}

	dec, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, false
	}
	value, _ := dec.Float64()
	return value, true
}

// currencyCodes maps currency symbols, their known mojibake forms, and
// ISO codes onto the supported currency set.
var currencyCodes = map[string]models.Currency{
	"€":    models.CurrencyEUR,
	"â‚¬": models.CurrencyEUR,
	"EUR":  models.CurrencyEUR,
	"£":    models.CurrencyGBP,
	"Â£":   models.CurrencyGBP,
	"GBP":  models.CurrencyGBP,
	"$":    models.CurrencyUSD,
	"USD":  models.CurrencyUSD,
}

// CurrencyFromToken resolves a currency symbol, mojibake symbol, or ISO
// code to a supported currency. Unknown or empty tokens default to GBP.
func CurrencyFromToken(token string) models.Currency {
	if currency, ok := currencyCodes[strings.TrimSpace(token)]; ok {
		return currency
	}
	return models.CurrencyGBP
}
