// Package features is the feature-engineering consumer of the normalized
// dataset. It derives per-user behavioral features keyed by user_id and
// datetime: calendar features, rolling activity windows, and simple
// statistical baselines used by downstream anomaly scoring.
//
// Records without a user or datetime cannot be keyed and are skipped,
// never fatal.
package features

import (
	"math"
	"sort"
	"time"

	"golang-txnlog-normalizer/internal/models"
	"golang-txnlog-normalizer/pkg/logger"

	"github.com/shopspring/decimal"
)

// Window sizes for the rolling activity features
const (
	countWindow   = 7 * 24 * time.Hour
	averageWindow = 10 * 24 * time.Hour
)

// FeatureRow is one engineered sample: the keyed source fields plus the
// derived features.
type FeatureRow struct {
	UserID          string           `json:"user_id"`
	Datetime        time.Time        `json:"datetime"`
	Amount          *float64         `json:"amount"`
	TransactionType *string          `json:"transaction_type"`
	Currency        models.Currency  `json:"currency"`
	Location        *string          `json:"location"`
	Device          *string          `json:"device"`

	// Calendar features
	DayOfWeek       int  `json:"day_of_week"`
	HourOfDay       int  `json:"hour_of_day"`
	Month           int  `json:"month"`
	Quarter         int  `json:"quarter"`
	DayOfMonth      int  `json:"day_of_month"`
	IsWeekend       bool `json:"is_weekend"`
	IsBusinessHours bool `json:"is_business_hours"`

	// Rolling user behavior
	TxCountLast7Days    int      `json:"transaction_count_last_7_days"`
	AvgAmountLast10Days *float64 `json:"average_transaction_amount_last_10_days"`
	DaysSinceLastTx     float64  `json:"days_since_last_transaction"`
	HoursSinceLastTx    float64  `json:"hours_since_last_transaction"`
	TxCountToday        int      `json:"transaction_count_today"`
	UniqueLocationsUsed int      `json:"unique_locations_used"`
	NewDevice           bool     `json:"new_device"`

	// Statistical baselines over the user's full history
	AmountZScore     *float64 `json:"amount_z_score"`
	AmountPercentile *float64 `json:"amount_percentile"`
}

// Engineer derives features from a normalized dataset
type Engineer struct {
	logger logger.Logger
}

// NewEngineer creates a feature engineer
func NewEngineer() *Engineer {
	return &Engineer{
		logger: logger.GetGlobalLogger().WithComponent("features"),
	}
}

// EngineerBatch computes features for every keyable record, ordered by
// user then datetime. Rolling windows are right-closed: a window at time
// t covers (t-window, t], including the current transaction.
func (e *Engineer) EngineerBatch(ds *models.Dataset) []FeatureRow {
	keyed := make([]*models.ParsedRecord, 0, ds.Len())
	skipped := 0
	for i := range ds.Records {
		rec := &ds.Records[i]
		if rec.UserID == nil || rec.Datetime == nil {
			skipped++
			continue
		}
		keyed = append(keyed, rec)
	}
	if skipped > 0 {
		e.logger.WithField("skipped", skipped).Debug("Skipping records without user or datetime key")
	}

	sort.SliceStable(keyed, func(i, j int) bool {
		if *keyed[i].UserID != *keyed[j].UserID {
			return *keyed[i].UserID < *keyed[j].UserID
		}
		return keyed[i].Datetime.Before(*keyed[j].Datetime)
	})

	rows := make([]FeatureRow, 0, len(keyed))
	start := 0
	for end := 1; end <= len(keyed); end++ {
		if end == len(keyed) || *keyed[end].UserID != *keyed[start].UserID {
			rows = append(rows, e.engineerUser(keyed[start:end])...)
			start = end
		}
	}
	return rows
}

// engineerUser computes features over one user's chronological history
func (e *Engineer) engineerUser(history []*models.ParsedRecord) []FeatureRow {
	mean, std, count := amountStats(history)
	ranks := amountPercentiles(history)
	perDay := make(map[string]int, len(history))
	for _, rec := range history {
		perDay[rec.Datetime.Format("2006-01-02")]++
	}

	rows := make([]FeatureRow, 0, len(history))
	var lastLocation, lastDevice *string
	seenLocations := make(map[string]struct{})
	seenDevices := make(map[string]struct{})
	seenNilDevice := false
	countStart, avgStart := 0, 0

	for i, rec := range history {
		ts := *rec.Datetime
		row := FeatureRow{
			UserID:          *rec.UserID,
			Datetime:        ts,
			Amount:          rec.Amount,
			TransactionType: rec.TransactionType,
			Currency:        rec.Currency,
		}

		row.DayOfWeek = pythonWeekday(ts.Weekday())
		row.HourOfDay = ts.Hour()
		row.Month = int(ts.Month())
		row.Quarter = (int(ts.Month())-1)/3 + 1
		row.DayOfMonth = ts.Day()
		row.IsWeekend = row.DayOfWeek >= 5
		row.IsBusinessHours = row.HourOfDay >= 9 && row.HourOfDay <= 17

		// Rolling 7-day transaction count
		for ts.Sub(*history[countStart].Datetime) >= countWindow {
			countStart++
		}
		row.TxCountLast7Days = i - countStart + 1

		// Rolling 10-day average amount over non-null amounts
		for ts.Sub(*history[avgStart].Datetime) >= averageWindow {
			avgStart++
		}
		row.AvgAmountLast10Days = windowAverage(history[avgStart : i+1])

		if i > 0 {
			gap := ts.Sub(*history[i-1].Datetime)
			row.DaysSinceLastTx = float64(int(gap.Hours() / 24))
			row.HoursSinceLastTx = gap.Seconds() / 3600
		}
		row.TxCountToday = perDay[ts.Format("2006-01-02")]

		// Forward-fill location/device, treating the Unknown sentinel as
		// missing.
		if rec.Location != "" && rec.Location != "Unknown" {
			location := rec.Location
			lastLocation = &location
		}
		if rec.Device != "" && rec.Device != "Unknown" {
			device := rec.Device
			lastDevice = &device
		}
		row.Location = lastLocation
		row.Device = lastDevice

		if lastLocation != nil {
			seenLocations[*lastLocation] = struct{}{}
		}
		row.UniqueLocationsUsed = len(seenLocations)

		if lastDevice == nil {
			row.NewDevice = !seenNilDevice
			seenNilDevice = true
		} else if _, seen := seenDevices[*lastDevice]; !seen {
			row.NewDevice = true
			seenDevices[*lastDevice] = struct{}{}
		}

		if rec.Amount != nil && count > 0 {
			z := (*rec.Amount - mean) / (std + 1e-9)
			row.AmountZScore = &z
			if pct, ok := ranks[i]; ok {
				row.AmountPercentile = &pct
			}
		}

		rows = append(rows, row)
	}
	return rows
}

// pythonWeekday converts Go's Sunday-based weekday to the Monday-based
// numbering the downstream model was trained on.
func pythonWeekday(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// amountStats returns the mean and sample standard deviation of the
// user's non-null amounts.
func amountStats(history []*models.ParsedRecord) (mean, std float64, count int) {
	sum := decimal.Zero
	for _, rec := range history {
		if rec.Amount == nil {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(*rec.Amount))
		count++
	}
	if count == 0 {
		return 0, 0, 0
	}
	mean, _ = sum.Div(decimal.NewFromInt(int64(count))).Float64()

	if count > 1 {
		var sq float64
		for _, rec := range history {
			if rec.Amount == nil {
				continue
			}
			diff := *rec.Amount - mean
			sq += diff * diff
		}
		std = math.Sqrt(sq / float64(count-1))
	}
	return mean, std, count
}

// amountPercentiles computes the percentile rank of each non-null amount
// within the user's history, using average ranks for ties.
func amountPercentiles(history []*models.ParsedRecord) map[int]float64 {
	type indexed struct {
		index  int
		amount float64
	}
	values := make([]indexed, 0, len(history))
	for i, rec := range history {
		if rec.Amount != nil {
			values = append(values, indexed{index: i, amount: *rec.Amount})
		}
	}
	if len(values) == 0 {
		return nil
	}

	sort.SliceStable(values, func(i, j int) bool { return values[i].amount < values[j].amount })

	ranks := make(map[int]float64, len(values))
	n := float64(len(values))
	i := 0
	for i < len(values) {
		j := i
		for j < len(values) && values[j].amount == values[i].amount {
			j++
		}
		// Average rank across the tie group, 1-based
		avgRank := float64(i+1+j) / 2
		for k := i; k < j; k++ {
			ranks[values[k].index] = avgRank / n
		}
		i = j
	}
	return ranks
}

// windowAverage averages the non-null amounts in the window, or nil when
// the window holds none.
func windowAverage(window []*models.ParsedRecord) *float64 {
	sum := decimal.Zero
	count := 0
	for _, rec := range window {
		if rec.Amount == nil {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(*rec.Amount))
		count++
	}
	if count == 0 {
		return nil
	}
	avg, _ := sum.Div(decimal.NewFromInt(int64(count))).Float64()
	return &avg
}
