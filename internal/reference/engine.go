// Package reference implements a stateless batch formulation of the rolling
// stdev contract. It recomputes every window from scratch and exists to
// cross-validate the incremental engine, not to replace it: the two paths
// encode the same policy via different means and must agree.
package reference

import (
	"math"
	"sort"
	"time"

	"price-stats-lab/internal/domain"
	"price-stats-lab/internal/rolling"
)

// Engine computes trailing window statistics over maximal contiguous runs.
type Engine struct {
	windowSize int
	period     time.Duration
}

// New creates a reference engine with the same defaults as the incremental
// engine.
func New(windowSize int, period time.Duration) *Engine {
	if windowSize <= 0 {
		windowSize = rolling.DefaultWindowSize
	}
	if period <= 0 {
		period = domain.SnapPeriod
	}
	return &Engine{windowSize: windowSize, period: period}
}

// Run computes, for every security, the population stdev of each trailing
// window of exactly windowSize samples within a contiguous run, truncated to
// the reporting range. The same lookback horizon as the incremental engine
// bounds how much pre-range history is considered.
func (e *Engine) Run(samples []*domain.Sample, r domain.TimeRange, lookback time.Duration) []*domain.StdevRecord {
	if lookback <= 0 {
		lookback = rolling.DefaultLookback
	}
	horizon := r.Start.Add(-lookback)

	bySecurity := make(map[string][]*domain.Sample)
	var order []string
	for _, s := range samples {
		if s.SnapTime.Before(horizon) || s.SnapTime.After(r.End) {
			continue
		}
		if _, ok := bySecurity[s.SecurityID]; !ok {
			order = append(order, s.SecurityID)
		}
		bySecurity[s.SecurityID] = append(bySecurity[s.SecurityID], s)
	}
	sort.Strings(order)

	var records []*domain.StdevRecord
	for _, securityID := range order {
		group := bySecurity[securityID]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].SnapTime.Before(group[j].SnapTime)
		})
		for _, run := range splitRuns(group, e.period) {
			records = append(records, e.runRecords(run, r)...)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].SecurityID != records[j].SecurityID {
			return records[i].SecurityID < records[j].SecurityID
		}
		return records[i].SnapTime.Before(records[j].SnapTime)
	})
	return records
}

// splitRuns partitions one security's time-ordered samples into maximal
// contiguous runs. A run boundary occurs wherever consecutive snap times
// differ from one period.
func splitRuns(samples []*domain.Sample, period time.Duration) [][]*domain.Sample {
	var runs [][]*domain.Sample
	start := 0
	for i := 1; i < len(samples); i++ {
		if samples[i].SnapTime.Sub(samples[i-1].SnapTime) != period {
			runs = append(runs, samples[start:i])
			start = i
		}
	}
	if start < len(samples) {
		runs = append(runs, samples[start:])
	}
	return runs
}

// runRecords emits one record per position of the run where a full trailing
// window exists, computed by an independent two-pass formula.
func (e *Engine) runRecords(run []*domain.Sample, r domain.TimeRange) []*domain.StdevRecord {
	var records []*domain.StdevRecord
	for i := e.windowSize - 1; i < len(run); i++ {
		end := run[i]
		if !r.Contains(end.SnapTime) {
			continue
		}
		window := run[i-e.windowSize+1 : i+1]
		records = append(records, &domain.StdevRecord{
			SecurityID: end.SecurityID,
			SnapTime:   end.SnapTime,
			StdevBid:   populationStdev(window, domain.FieldBid),
			StdevMid:   populationStdev(window, domain.FieldMid),
			StdevAsk:   populationStdev(window, domain.FieldAsk),
		})
	}
	return records
}

// populationStdev computes the stdev of one field over a window with the
// two-pass mean and squared-deviation formula, deliberately not sharing the
// incremental engine's running-sum derivation.
func populationStdev(window []*domain.Sample, f domain.PriceField) float64 {
	n := len(window)
	if n == 0 {
		return 0
	}

	mean := 0.0
	for _, s := range window {
		mean += s.Value(f)
	}
	mean /= float64(n)

	sumSqDiff := 0.0
	for _, s := range window {
		d := s.Value(f) - mean
		sumSqDiff += d * d
	}
	return math.Sqrt(sumSqDiff / float64(n))
}
