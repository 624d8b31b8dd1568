package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/atikulmunna/trainlog/internal/model"
)

// Stats holds a point-in-time snapshot of aggregated run metrics.
type Stats struct {
	Uptime         string            `json:"uptime"`
	Runs           int64             `json:"runs"`
	TotalFiles     int64             `json:"total_files"`
	TotalFailed    int64             `json:"total_failed"`
	TotalSequences int64             `json:"total_sequences"`
	TotalActions   int64             `json:"total_actions"`
	TotalBytes     int64             `json:"total_bytes"`
	Truncated      int64             `json:"truncated_runs"` // runs that ended with a sequence open
	Last           *model.RunSummary `json:"last,omitempty"`
}

// Aggregator consumes run summaries and keeps cumulative totals.
type Aggregator struct {
	mu        sync.RWMutex
	startTime time.Time
	stats     Stats
	runs      <-chan model.RunSummary
}

// New creates an Aggregator reading from runs, typically a Hub subscription.
func New(runs <-chan model.RunSummary) *Aggregator {
	return &Aggregator{
		startTime: time.Now(),
		runs:      runs,
	}
}

// Snapshot returns the current metrics.
func (a *Aggregator) Snapshot() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s := a.stats
	if s.Last != nil {
		last := *s.Last
		last.FailedFiles = append([]string(nil), s.Last.FailedFiles...)
		s.Last = &last
	}
	s.Uptime = time.Since(a.startTime).Truncate(time.Second).String()
	return s
}

// Start consumes summaries until the context is cancelled or the channel closes.
func (a *Aggregator) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case run, ok := <-a.runs:
			if !ok {
				return
			}
			a.Record(run)
		}
	}
}

// Record adds a run to the totals.
func (a *Aggregator) Record(run model.RunSummary) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stats.Runs++
	a.stats.TotalFiles += int64(run.Files)
	a.stats.TotalFailed += int64(len(run.FailedFiles))
	a.stats.TotalSequences += int64(run.Sequences)
	a.stats.TotalActions += int64(run.Actions)
	a.stats.TotalBytes += run.Bytes
	if run.OpenAtEnd {
		a.stats.Truncated++
	}
	a.stats.Last = &run
}
