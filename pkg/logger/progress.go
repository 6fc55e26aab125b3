package logger

import (
	"sync"
	"time"
)

// ProgressTracker logs periodic progress of a long-running batch, such as
// parsing a large log file line by line.
type ProgressTracker struct {
	logger      Logger
	operation   string
	total       int64
	current     int64
	startTime   time.Time
	lastLogTime time.Time
	logInterval time.Duration
	mutex       sync.Mutex
}

// NewProgressTracker creates a tracker for an operation over total items.
// Pass interval zero to use the default of five seconds.
func NewProgressTracker(operation string, total int64, interval time.Duration) *ProgressTracker {
	if interval == 0 {
		interval = 5 * time.Second
	}

	tracker := &ProgressTracker{
		logger:      GetGlobalLogger().WithComponent("progress"),
		operation:   operation,
		total:       total,
		startTime:   time.Now(),
		lastLogTime: time.Now(),
		logInterval: interval,
	}

	tracker.logger.WithFields(Fields{
		"operation": operation,
		"total":     total,
	}).Info("Starting operation")

	return tracker
}

// Increment advances the progress counter by one
func (p *ProgressTracker) Increment() {
	p.Add(1)
}

// Add advances the progress counter by n and logs when the interval elapsed
func (p *ProgressTracker) Add(n int64) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.current += n
	now := time.Now()
	if now.Sub(p.lastLogTime) < p.logInterval {
		return
	}
	p.lastLogTime = now

	elapsed := now.Sub(p.startTime).Seconds()
	var rate float64
	if elapsed > 0 {
		rate = float64(p.current) / elapsed
	}

	fields := Fields{
		"operation":     p.operation,
		"processed":     p.current,
		"items_per_sec": int64(rate),
		"elapsed_sec":   int64(elapsed),
	}
	if p.total > 0 {
		fields["total"] = p.total
		fields["percent"] = float64(p.current) * 100 / float64(p.total)
	}
	p.logger.WithFields(fields).Info("Operation in progress")
}

// Complete logs the final progress summary
func (p *ProgressTracker) Complete() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	elapsed := time.Since(p.startTime)
	p.logger.WithFields(Fields{
		"operation": p.operation,
		"processed": p.current,
		"duration":  elapsed.String(),
	}).Info("Operation complete")
}
