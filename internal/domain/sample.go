package domain

import "time"

// SnapPeriod is the fixed spacing between consecutive snaps of one security.
// Contiguity of a window is defined against this period; it is part of the
// data contract, not a tunable cadence.
const SnapPeriod = time.Hour

// PriceField identifies one of the three quoted price columns of a sample.
type PriceField string

const (
	FieldBid PriceField = "bid"
	FieldMid PriceField = "mid"
	FieldAsk PriceField = "ask"
)

// PriceFields lists all price fields in canonical column order.
var PriceFields = []PriceField{FieldBid, FieldMid, FieldAsk}

// Sample is one hourly price snap for a security.
// Samples for a given security are expected to be strictly time-ordered on
// input to the engines; duplicate snap times are not resolved here.
type Sample struct {
	SecurityID string    // security identifier
	SnapTime   time.Time // snap timestamp, UTC, hourly granularity
	Bid        float64   // bid price
	Mid        float64   // mid price
	Ask        float64   // ask price
}

// Value returns the sample's value for the given price field.
func (s *Sample) Value(f PriceField) float64 {
	switch f {
	case FieldBid:
		return s.Bid
	case FieldMid:
		return s.Mid
	case FieldAsk:
		return s.Ask
	}
	return 0
}

// TimeRange is an inclusive [Start, End] reporting range.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether ts falls within the range (inclusive).
func (r TimeRange) Contains(ts time.Time) bool {
	return !ts.Before(r.Start) && !ts.After(r.End)
}
