package rolling

import (
	"errors"
	"time"

	"price-stats-lab/internal/domain"
)

// ErrSnapshotMismatch is returned when a snapshot's schema version or window
// size does not match the engine configuration. The engine is left cold;
// callers should log and continue from scratch rather than guess
// compatibility.
var ErrSnapshotMismatch = errors.New("snapshot does not match engine configuration")

// ExportSnapshot captures the engine state as a versioned checkpoint.
// Feeding the next sample of each security (exactly one period after its
// last snap) to a restored engine continues computation as if the process
// had never stopped.
func (e *Engine) ExportSnapshot() *domain.Snapshot {
	snap := &domain.Snapshot{
		SchemaVersion: domain.SnapshotSchemaVersion,
		WindowSize:    e.windowSize,
		CreatedAt:     time.Now().UTC(),
		Entries:       make(map[string]domain.FieldState, len(e.states)*len(domain.PriceFields)),
	}

	for securityID, st := range e.states {
		var last time.Time
		if ts, ok := st.tracker.Last(); ok {
			last = ts
		}

		timestamps := make([]time.Time, len(st.window))
		for i, w := range st.window {
			timestamps[i] = w.snapTime
		}

		for _, f := range domain.PriceFields {
			values := make([]float64, len(st.window))
			for i, w := range st.window {
				switch f {
				case domain.FieldBid:
					values[i] = w.bid
				case domain.FieldMid:
					values[i] = w.mid
				case domain.FieldAsk:
					values[i] = w.ask
				}
			}
			acc := st.accumulator(f)
			snap.Entries[domain.SnapshotKey(securityID, f)] = domain.FieldState{
				Values:       values,
				Timestamps:   append([]time.Time(nil), timestamps...),
				Sum:          acc.Sum(),
				SumSquares:   acc.SumSquares(),
				LastSnapTime: last,
			}
		}
	}

	return snap
}

// RestoreSnapshot rebuilds engine state from a checkpoint. A nil snapshot is
// a cold start. ErrSnapshotMismatch is returned when the schema version or
// window size differs from the engine configuration. Entries that are
// internally inconsistent (missing fields, diverging lengths or timestamps)
// are dropped per security; the rest of the snapshot still restores.
func (e *Engine) RestoreSnapshot(snap *domain.Snapshot) error {
	if snap == nil {
		return nil
	}
	if snap.SchemaVersion != domain.SnapshotSchemaVersion || snap.WindowSize != e.windowSize {
		return ErrSnapshotMismatch
	}

	bySecurity := make(map[string]map[domain.PriceField]domain.FieldState)
	for key, fs := range snap.Entries {
		securityID, field, ok := domain.SplitSnapshotKey(key)
		if !ok {
			continue
		}
		if bySecurity[securityID] == nil {
			bySecurity[securityID] = make(map[domain.PriceField]domain.FieldState, len(domain.PriceFields))
		}
		bySecurity[securityID][field] = fs
	}

	for securityID, fields := range bySecurity {
		st, ok := restoreEntityState(fields, e.windowSize, e.period)
		if !ok {
			continue
		}
		e.states[securityID] = st
	}

	return nil
}

// restoreEntityState validates one security's field states and rebuilds its
// window, accumulators and tracker.
func restoreEntityState(fields map[domain.PriceField]domain.FieldState, windowSize int, period time.Duration) (*entityState, bool) {
	bid, okBid := fields[domain.FieldBid]
	mid, okMid := fields[domain.FieldMid]
	ask, okAsk := fields[domain.FieldAsk]
	if !okBid || !okMid || !okAsk {
		return nil, false
	}

	n := len(bid.Values)
	if n > windowSize || len(mid.Values) != n || len(ask.Values) != n {
		return nil, false
	}
	if len(bid.Timestamps) != n || len(mid.Timestamps) != n || len(ask.Timestamps) != n {
		return nil, false
	}
	for i := 0; i < n; i++ {
		if !bid.Timestamps[i].Equal(mid.Timestamps[i]) || !bid.Timestamps[i].Equal(ask.Timestamps[i]) {
			return nil, false
		}
	}
	if bid.LastSnapTime.IsZero() && n > 0 {
		return nil, false
	}

	st := &entityState{tracker: NewTracker(period)}
	st.tracker.restore(bid.LastSnapTime)
	st.window = make([]windowEntry, n)
	for i := 0; i < n; i++ {
		st.window[i] = windowEntry{
			snapTime: bid.Timestamps[i],
			bid:      bid.Values[i],
			mid:      mid.Values[i],
			ask:      ask.Values[i],
		}
	}
	st.bid.Restore(bid.Sum, bid.SumSquares)
	st.mid.Restore(mid.Sum, mid.SumSquares)
	st.ask.Restore(ask.Sum, ask.SumSquares)
	return st, true
}

// accumulator returns the entity's accumulator for a price field.
func (st *entityState) accumulator(f domain.PriceField) *Accumulator {
	switch f {
	case domain.FieldBid:
		return &st.bid
	case domain.FieldMid:
		return &st.mid
	case domain.FieldAsk:
		return &st.ask
	}
	return nil
}
