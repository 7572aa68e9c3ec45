package rolling

import "time"

// Decision is the contiguity verdict for one incoming sample.
type Decision int

const (
	// Accept: the sample extends the current window.
	Accept Decision = iota
	// ResetThenAccept: the gap to the previous sample differs from one
	// period (including zero or negative); the window must be cleared
	// before the sample seeds a new one.
	ResetThenAccept
)

// Tracker detects contiguity violations in one security's sample stream.
// Equal or out-of-order timestamps are gap violations like any other.
type Tracker struct {
	period time.Duration
	last   time.Time
	seeded bool
}

// NewTracker returns a tracker for the given period.
func NewTracker(period time.Duration) *Tracker {
	if period <= 0 {
		period = time.Hour
	}
	return &Tracker{period: period}
}

// Observe records the incoming snap time and returns the decision for it.
// The tracker always advances to ts: after ResetThenAccept the incoming
// sample is the start of a new window.
func (t *Tracker) Observe(ts time.Time) Decision {
	d := Accept
	if t.seeded && ts.Sub(t.last) != t.period {
		d = ResetThenAccept
	}
	t.last = ts
	t.seeded = true
	return d
}

// Last returns the last observed snap time, if any.
func (t *Tracker) Last() (time.Time, bool) {
	return t.last, t.seeded
}

// Reset forgets the last observed snap time.
func (t *Tracker) Reset() {
	t.last = time.Time{}
	t.seeded = false
}

// restore seeds the tracker from persisted state. A zero ts leaves the
// tracker unseeded.
func (t *Tracker) restore(ts time.Time) {
	t.last = ts
	t.seeded = !ts.IsZero()
}
