package rates

import (
	"time"

	"price-stats-lab/internal/domain"
)

// SpotRateInWindow returns the most recent spot rate with
// after < timestamp <= until. Spots must be sorted by timestamp ASC.
func SpotRateInWindow(spots []*domain.SpotRate, after, until time.Time) (*domain.SpotRate, bool) {
	// Scan backward: the first hit from the end is the most recent.
	for i := len(spots) - 1; i >= 0; i-- {
		ts := spots[i].Timestamp
		if ts.After(until) {
			continue
		}
		if !ts.After(after) {
			return nil, false
		}
		return spots[i], true
	}
	return nil, false
}
