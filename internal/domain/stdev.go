package domain

import "time"

// StdevRecord is one rolling standard deviation result, emitted only for a
// snap that completed or slid a full contiguous window of a security.
type StdevRecord struct {
	SecurityID string    // security identifier
	SnapTime   time.Time // snap the window ends at
	StdevBid   float64   // population stdev of bid over the window
	StdevMid   float64   // population stdev of mid over the window
	StdevAsk   float64   // population stdev of ask over the window
}

// Stdev returns the record's stdev for the given price field.
func (r *StdevRecord) Stdev(f PriceField) float64 {
	switch f {
	case FieldBid:
		return r.StdevBid
	case FieldMid:
		return r.StdevMid
	case FieldAsk:
		return r.StdevAsk
	}
	return 0
}
