package rolling

import (
	"sort"
	"time"

	"price-stats-lab/internal/domain"
)

// Defaults for the window engine.
const (
	DefaultWindowSize = 20
	DefaultLookback   = 7 * 24 * time.Hour
)

// Options configures a window engine.
type Options struct {
	WindowSize int           // window capacity W; defaults to DefaultWindowSize
	Period     time.Duration // expected snap spacing; defaults to domain.SnapPeriod
}

// windowEntry is one accepted sample inside an entity's window.
type windowEntry struct {
	snapTime time.Time
	bid      float64
	mid      float64
	ask      float64
}

// entityState holds the window, accumulators and contiguity tracker for one
// security. Securities never share state.
type entityState struct {
	tracker *Tracker
	window  []windowEntry
	bid     Accumulator
	mid     Accumulator
	ask     Accumulator
}

// clear drops the window and accumulators but keeps the tracker position,
// so the sample that triggered the reset seeds the next window.
func (st *entityState) clear() {
	st.window = st.window[:0]
	st.bid.Reset()
	st.mid.Reset()
	st.ask.Reset()
}

// Engine drives the accumulators and contiguity trackers across sample
// streams. Each instance owns its per-security state map for the lifetime of
// a run; there is no ambient shared state.
type Engine struct {
	windowSize int
	period     time.Duration
	states     map[string]*entityState
}

// New creates a window engine.
func New(opts Options) *Engine {
	if opts.WindowSize <= 0 {
		opts.WindowSize = DefaultWindowSize
	}
	if opts.Period <= 0 {
		opts.Period = domain.SnapPeriod
	}
	return &Engine{
		windowSize: opts.WindowSize,
		period:     opts.Period,
		states:     make(map[string]*entityState),
	}
}

// WindowSize returns the configured window capacity.
func (e *Engine) WindowSize() int { return e.windowSize }

// Period returns the configured snap period.
func (e *Engine) Period() time.Duration { return e.period }

// Reset clears all per-security state.
func (e *Engine) Reset() {
	e.states = make(map[string]*entityState)
}

func (e *Engine) state(securityID string) *entityState {
	st, ok := e.states[securityID]
	if !ok {
		st = &entityState{tracker: NewTracker(e.period)}
		e.states[securityID] = st
	}
	return st
}

// ProcessSample folds one sample into its security's window. It returns a
// stdev record when this sample completed or slid a full window, nothing
// otherwise. Samples of one security must arrive in ascending snap order.
func (e *Engine) ProcessSample(s *domain.Sample) (*domain.StdevRecord, bool) {
	st := e.state(s.SecurityID)

	if st.tracker.Observe(s.SnapTime) == ResetThenAccept {
		st.clear()
	}

	st.window = append(st.window, windowEntry{
		snapTime: s.SnapTime,
		bid:      s.Bid,
		mid:      s.Mid,
		ask:      s.Ask,
	})
	st.bid.Push(s.Bid)
	st.mid.Push(s.Mid)
	st.ask.Push(s.Ask)

	// FIFO evict on overflow; the evicted values leave the accumulators.
	if len(st.window) > e.windowSize {
		old := st.window[0]
		copy(st.window, st.window[1:])
		st.window = st.window[:e.windowSize]
		st.bid.Evict(old.bid)
		st.mid.Evict(old.mid)
		st.ask.Evict(old.ask)
	}

	if len(st.window) < e.windowSize {
		return nil, false
	}

	n := e.windowSize
	return &domain.StdevRecord{
		SecurityID: s.SecurityID,
		SnapTime:   s.SnapTime,
		StdevBid:   st.bid.Stdev(n),
		StdevMid:   st.mid.Stdev(n),
		StdevAsk:   st.ask.Stdev(n),
	}, true
}

// Process folds a batch of samples and returns every full-window record,
// without range truncation. Samples are sorted by (security_id, snap_time)
// before processing.
func (e *Engine) Process(samples []*domain.Sample) []*domain.StdevRecord {
	ordered := sortSamples(samples)

	var records []*domain.StdevRecord
	for _, s := range ordered {
		if rec, ok := e.ProcessSample(s); ok {
			records = append(records, rec)
		}
	}
	return records
}

// Run processes the sample stream for one reporting range. Samples earlier
// than Start minus lookback are skipped entirely; samples between the
// lookback horizon and Start are folded into window state but emit nothing,
// purely so the first in-range snap can already have a full window. Only
// records inside [Start, End] are returned, sorted by (security_id,
// snap_time). A non-positive lookback defaults to DefaultLookback.
func (e *Engine) Run(samples []*domain.Sample, r domain.TimeRange, lookback time.Duration) []*domain.StdevRecord {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	horizon := r.Start.Add(-lookback)

	eligible := make([]*domain.Sample, 0, len(samples))
	for _, s := range samples {
		if !s.SnapTime.Before(horizon) && !s.SnapTime.After(r.End) {
			eligible = append(eligible, s)
		}
	}

	var records []*domain.StdevRecord
	for _, rec := range e.Process(eligible) {
		if r.Contains(rec.SnapTime) {
			records = append(records, rec)
		}
	}
	return records
}

// sortSamples returns a copy sorted by (security_id, snap_time).
func sortSamples(samples []*domain.Sample) []*domain.Sample {
	ordered := make([]*domain.Sample, len(samples))
	copy(ordered, samples)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].SecurityID != ordered[j].SecurityID {
			return ordered[i].SecurityID < ordered[j].SecurityID
		}
		return ordered[i].SnapTime.Before(ordered[j].SnapTime)
	})
	return ordered
}
