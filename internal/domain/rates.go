package domain

import "time"

// Conversion reasons recorded on every converted price row.
const (
	ReasonUnsupportedPair = "ccy_pair not supported or missing conversion info"
	ReasonNoConversion    = "no conversion required"
	ReasonNoSpotRate      = "no spot_mid_rate in previous hour"
	ReasonConverted       = "converted"
)

// CcyPairInfo describes how prices of one currency pair are converted.
// ConvertPrice and ConversionFactor are nil when the reference data is
// incomplete for the pair.
type CcyPairInfo struct {
	Pair             string
	ConvertPrice     *bool
	ConversionFactor *float64
}

// RatePrice is one raw price quote for a currency pair.
type RatePrice struct {
	Pair      string
	Timestamp time.Time
	Price     float64
}

// SpotRate is one observed spot mid rate for a currency pair.
type SpotRate struct {
	Pair        string
	Timestamp   time.Time
	SpotMidRate float64
}

// ConvertedPrice is the outcome of converting one price row. NewPrice is nil
// when no converted value could be produced; Reason always explains why.
type ConvertedPrice struct {
	Pair      string
	Timestamp time.Time
	Price     float64
	NewPrice  *float64
	Reason    string
}
