// Package rates converts raw currency-pair prices using reference conversion
// data and recent spot mid rates. Every input row produces an output row
// with a reason; rows that cannot be converted are never dropped.
package rates

import (
	"sort"
	"time"

	"price-stats-lab/internal/domain"
)

// Converter joins price rows against pair conversion info and spot rates.
type Converter struct {
	pairs map[string]*domain.CcyPairInfo
	spots map[string][]*domain.SpotRate // sorted by timestamp ASC per pair
}

// NewConverter builds a converter from reference data. Spot rates are
// indexed and sorted per pair once, up front.
func NewConverter(pairs []*domain.CcyPairInfo, spots []*domain.SpotRate) *Converter {
	c := &Converter{
		pairs: make(map[string]*domain.CcyPairInfo, len(pairs)),
		spots: make(map[string][]*domain.SpotRate),
	}
	for _, p := range pairs {
		c.pairs[p.Pair] = p
	}
	for _, s := range spots {
		c.spots[s.Pair] = append(c.spots[s.Pair], s)
	}
	for _, group := range c.spots {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Timestamp.Before(group[j].Timestamp)
		})
	}
	return c
}

// Convert processes price rows in input order.
func (c *Converter) Convert(prices []*domain.RatePrice) []*domain.ConvertedPrice {
	out := make([]*domain.ConvertedPrice, 0, len(prices))
	for _, p := range prices {
		out = append(out, c.convertOne(p))
	}
	return out
}

// convertOne applies the conversion policy to a single price row:
// unknown or incomplete pair info yields no price; pairs flagged as
// non-converting pass through unchanged; converting pairs require a spot
// mid rate observed after the start of the previous clock hour.
func (c *Converter) convertOne(p *domain.RatePrice) *domain.ConvertedPrice {
	result := &domain.ConvertedPrice{
		Pair:      p.Pair,
		Timestamp: p.Timestamp,
		Price:     p.Price,
	}

	info, ok := c.pairs[p.Pair]
	if !ok || info.ConvertPrice == nil || info.ConversionFactor == nil {
		result.Reason = domain.ReasonUnsupportedPair
		return result
	}

	if !*info.ConvertPrice {
		price := p.Price
		result.NewPrice = &price
		result.Reason = domain.ReasonNoConversion
		return result
	}

	prevHour := p.Timestamp.Truncate(time.Hour).Add(-time.Hour)
	spot, ok := SpotRateInWindow(c.spots[p.Pair], prevHour, p.Timestamp)
	if !ok {
		result.Reason = domain.ReasonNoSpotRate
		return result
	}

	converted := p.Price / *info.ConversionFactor + spot.SpotMidRate
	result.NewPrice = &converted
	result.Reason = domain.ReasonConverted
	return result
}
