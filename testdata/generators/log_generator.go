package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LogGenerator produces synthetic dirty transaction log files that mix
// the nine supported layouts with the corruption modes seen in real
// exports: mojibake currency symbols, sentinel lines, blanks, and
// outright garbage.
type LogGenerator struct {
	Count       int
	StartDate   time.Time
	EndDate     time.Time
	GarbageRate float64
	Seed        int64

	rng *rand.Rand
}

var (
	users     = []string{"user123", "user456", "user789", "user1044", "user2071"}
	actions   = []string{"top-up", "withdrawal", "payment", "refund", "deposit"}
	locations = []string{"ATM Location", "High Street", "King's Cross", "Manchester", "Online Portal", "Soho"}
	devices   = []string{"iPhone 12", "Pixel 6", "Samsung S22", "Huawei P30", "Chrome Browser", "Desktop"}
	symbols   = []string{"€", "£", "$", "â‚¬", "Â£"}
)

func main() {
	var (
		output      = flag.String("output", "generated_logs.txt", "Output log file path")
		count       = flag.Int("count", 1000, "Number of log lines to generate")
		startDate   = flag.String("start-date", "2024-01-01", "Start date (YYYY-MM-DD)")
		endDate     = flag.String("end-date", "2024-12-31", "End date (YYYY-MM-DD)")
		garbageRate = flag.Float64("garbage-rate", 0.1, "Fraction of unparseable and sentinel lines")
		seed        = flag.Int64("seed", time.Now().UnixNano(), "Random seed for reproducible generation")
	)
	flag.Parse()

	start, err := time.Parse("2006-01-02", *startDate)
	if err != nil {
		log.Fatalf("Invalid start date: %v", err)
	}
	end, err := time.Parse("2006-01-02", *endDate)
	if err != nil {
		log.Fatalf("Invalid end date: %v", err)
	}

	generator := &LogGenerator{
		Count:       *count,
		StartDate:   start,
		EndDate:     end,
		GarbageRate: *garbageRate,
		Seed:        *seed,
		rng:         rand.New(rand.NewSource(*seed)),
	}

	if err := generator.WriteFile(*output); err != nil {
		log.Fatalf("Generation failed: %v", err)
	}
	fmt.Printf("Generated %d log lines in %s (seed %d)\n", *count, *output, *seed)
}

// WriteFile generates the configured number of lines into path
func (g *LogGenerator) WriteFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	defer writer.Flush()

	fmt.Fprintln(writer, "raw_log")
	for i := 0; i < g.Count; i++ {
		fmt.Fprintln(writer, g.line())
	}
	return nil
}

// line produces one log line, occasionally a garbage or sentinel line
func (g *LogGenerator) line() string {
	if g.rng.Float64() < g.GarbageRate {
		return g.garbageLine()
	}

	ts := g.timestamp()
	user := pick(g.rng, users)
	action := pick(g.rng, actions)
	amount := g.amount()
	location := pick(g.rng, locations)
	device := pick(g.rng, devices)
	symbol := pick(g.rng, symbols)

	switch g.rng.Intn(9) {
	case 0:
		return fmt.Sprintf("%s::%s::%s::%s::%s::%s",
			ts.Format("2006-01-02 15:04:05"), user, action, amount, location, device)
	case 1:
		return fmt.Sprintf("usr:%s|%s|%s%s|%s|%s|%s",
			user, action, prefixSymbol(symbol), amount, location, ts.Format("2006-01-02 15:04:05"), device)
	case 2:
		return fmt.Sprintf("%s >> [%s] did %s - amt=%s%s - %s // dev:%s",
			ts.Format("2006-01-02 15:04:05"), user, action, prefixSymbol(symbol), amount, location, device)
	case 3:
		return fmt.Sprintf("%s | user: %s | txn: %s of %s%s from %s | device: %s",
			ts.Format("2006-01-02 15:04:05"), user, action, prefixSymbol(symbol), amount, location, device)
	case 4:
		return fmt.Sprintf("%s - user=%s - action=%s %s%s - ATM: %s - device=%s",
			ts.Format("2006-01-02 15:04:05"), user, action, prefixSymbol(symbol), amount, location, device)
	case 5:
		return fmt.Sprintf("%s ::: %s *** %s ::: amt:%s%s @ %s <%s>",
			ts.Format("02/01/2006 15:04:05"), user, strings.ToUpper(action), prefixSymbol(symbol), amount, location, device)
	case 6:
		return fmt.Sprintf("%s %s %s %s %s %s",
			user, ts.Format("2006-01-02 15:04:05"), action, amount, strings.Fields(location)[0], device)
	default:
		return fmt.Sprintf("%s ::: %s *** %s ::: amt:%s%s @ %s <%s>",
			ts.Format("02/01/2006 15:04:05"), user, strings.ToUpper(action), amount, symbol, location, device)
	}
}

func (g *LogGenerator) garbageLine() string {
	garbage := []string{
		"MALFORMED_LOG",
		`""`,
		"",
		"completely unstructured line with no layout",
		"2024-99-99 25:61:61::broken",
		"usr:|||",
	}
	return garbage[g.rng.Intn(len(garbage))]
}

func (g *LogGenerator) timestamp() time.Time {
	window := g.EndDate.Sub(g.StartDate)
	return g.StartDate.Add(time.Duration(g.rng.Int63n(int64(window))))
}

func (g *LogGenerator) amount() string {
	value := decimal.NewFromFloat(g.rng.Float64() * 5000).Round(2)
	if g.rng.Intn(4) == 0 {
		// Thousands separator variant
		f, _ := value.Float64()
		if f >= 1000 {
			whole := int(f)
			return fmt.Sprintf("%d,%03d.%02d", whole/1000, whole%1000, int((f-float64(whole))*100))
		}
	}
	return value.String()
}

// prefixSymbol keeps single-rune symbols usable as amount prefixes; the
// mojibake forms only appear as suffixes in layout nine.
func prefixSymbol(symbol string) string {
	switch symbol {
	case "â‚¬":
		return "€"
	case "Â£":
		return "£"
	default:
		return symbol
	}
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.Intn(len(values))]
}
