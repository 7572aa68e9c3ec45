package rates

import (
	"math"
	"testing"
	"time"

	"price-stats-lab/internal/domain"
)

var ratesBase = time.Date(2021, 11, 20, 10, 0, 0, 0, time.UTC)

func boolPtr(v bool) *bool        { return &v }
func floatPtr(v float64) *float64 { return &v }

func pairInfo(pair string, convert bool, factor float64) *domain.CcyPairInfo {
	return &domain.CcyPairInfo{
		Pair:             pair,
		ConvertPrice:     boolPtr(convert),
		ConversionFactor: floatPtr(factor),
	}
}

func spot(pair string, ts time.Time, mid float64) *domain.SpotRate {
	return &domain.SpotRate{Pair: pair, Timestamp: ts, SpotMidRate: mid}
}

func TestConverter_ConvertedPair(t *testing.T) {
	// Price at 10:20 looks for a spot rate after 09:00 and no later than
	// the price timestamp.
	priceTS := ratesBase.Add(20 * time.Minute)
	c := NewConverter(
		[]*domain.CcyPairInfo{pairInfo("AUDUSD", true, 100)},
		[]*domain.SpotRate{
			spot("AUDUSD", ratesBase.Add(-90*time.Minute), 0.99), // 08:30, too old
			spot("AUDUSD", ratesBase.Add(-30*time.Minute), 0.75), // 09:30
		},
	)

	out := c.Convert([]*domain.RatePrice{{Pair: "AUDUSD", Timestamp: priceTS, Price: 120}})

	if len(out) != 1 {
		t.Fatalf("expected 1 output row, got %d", len(out))
	}
	r := out[0]
	if r.Reason != domain.ReasonConverted {
		t.Fatalf("reason %q, want %q", r.Reason, domain.ReasonConverted)
	}
	if r.NewPrice == nil {
		t.Fatal("converted row must carry a new price")
	}
	want := 120.0/100 + 0.75
	if math.Abs(*r.NewPrice-want) > 1e-12 {
		t.Errorf("new price %g, want %g", *r.NewPrice, want)
	}
}

func TestConverter_MostRecentSpotWins(t *testing.T) {
	priceTS := ratesBase.Add(45 * time.Minute)
	c := NewConverter(
		[]*domain.CcyPairInfo{pairInfo("AUDUSD", true, 1)},
		[]*domain.SpotRate{
			spot("AUDUSD", ratesBase.Add(-20*time.Minute), 0.70),
			spot("AUDUSD", ratesBase.Add(30*time.Minute), 0.80),
			spot("AUDUSD", ratesBase.Add(50*time.Minute), 0.90), // after the price, ignored
		},
	)

	out := c.Convert([]*domain.RatePrice{{Pair: "AUDUSD", Timestamp: priceTS, Price: 1}})

	if out[0].Reason != domain.ReasonConverted {
		t.Fatalf("reason %q, want %q", out[0].Reason, domain.ReasonConverted)
	}
	if want := 1.0 + 0.80; *out[0].NewPrice != want {
		t.Errorf("new price %g, want %g", *out[0].NewPrice, want)
	}
}

func TestConverter_PassThroughPair(t *testing.T) {
	// Pairs flagged as non-converting keep their price verbatim, with no
	// spot lookup at all.
	c := NewConverter([]*domain.CcyPairInfo{pairInfo("USDJPY", false, 1)}, nil)

	out := c.Convert([]*domain.RatePrice{{Pair: "USDJPY", Timestamp: ratesBase, Price: 114.5}})

	r := out[0]
	if r.Reason != domain.ReasonNoConversion {
		t.Fatalf("reason %q, want %q", r.Reason, domain.ReasonNoConversion)
	}
	if r.NewPrice == nil || *r.NewPrice != 114.5 {
		t.Errorf("pass-through price must equal the input price")
	}
}

func TestConverter_MissingSpotRate(t *testing.T) {
	c := NewConverter(
		[]*domain.CcyPairInfo{pairInfo("AUDUSD", true, 100)},
		[]*domain.SpotRate{
			spot("AUDUSD", ratesBase.Add(-2*time.Hour), 0.75), // before the window
		},
	)

	out := c.Convert([]*domain.RatePrice{{Pair: "AUDUSD", Timestamp: ratesBase.Add(10 * time.Minute), Price: 120}})

	r := out[0]
	if r.Reason != domain.ReasonNoSpotRate {
		t.Fatalf("reason %q, want %q", r.Reason, domain.ReasonNoSpotRate)
	}
	if r.NewPrice != nil {
		t.Errorf("row without a usable spot rate must carry no new price")
	}
}

func TestConverter_UnsupportedPair(t *testing.T) {
	cases := []struct {
		name string
		info *domain.CcyPairInfo
	}{
		{name: "unknown pair", info: nil},
		{name: "missing convert flag", info: &domain.CcyPairInfo{Pair: "GBPUSD", ConversionFactor: floatPtr(1)}},
		{name: "missing factor", info: &domain.CcyPairInfo{Pair: "GBPUSD", ConvertPrice: boolPtr(true)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var pairs []*domain.CcyPairInfo
			if tc.info != nil {
				pairs = append(pairs, tc.info)
			}
			c := NewConverter(pairs, nil)

			out := c.Convert([]*domain.RatePrice{{Pair: "GBPUSD", Timestamp: ratesBase, Price: 1.3}})

			r := out[0]
			if r.Reason != domain.ReasonUnsupportedPair {
				t.Fatalf("reason %q, want %q", r.Reason, domain.ReasonUnsupportedPair)
			}
			if r.NewPrice != nil {
				t.Errorf("unsupported row must carry no new price")
			}
		})
	}
}

func TestConverter_EveryRowProducesOutput(t *testing.T) {
	c := NewConverter([]*domain.CcyPairInfo{pairInfo("AUDUSD", true, 1)}, nil)

	prices := []*domain.RatePrice{
		{Pair: "AUDUSD", Timestamp: ratesBase, Price: 1},
		{Pair: "NOPE", Timestamp: ratesBase, Price: 2},
		{Pair: "AUDUSD", Timestamp: ratesBase.Add(time.Hour), Price: 3},
	}

	out := c.Convert(prices)
	if len(out) != len(prices) {
		t.Fatalf("expected %d output rows, got %d", len(prices), len(out))
	}
	for i, r := range out {
		if r.Pair != prices[i].Pair || !r.Timestamp.Equal(prices[i].Timestamp) {
			t.Errorf("row %d must keep input order and identity", i)
		}
	}
}

func TestSpotRateInWindow(t *testing.T) {
	spots := []*domain.SpotRate{
		spot("X", ratesBase, 1),
		spot("X", ratesBase.Add(time.Hour), 2),
		spot("X", ratesBase.Add(2*time.Hour), 3),
	}

	// Window bounds: strictly after `after`, up to and including `until`.
	if s, ok := SpotRateInWindow(spots, ratesBase, ratesBase.Add(time.Hour)); !ok || s.SpotMidRate != 2 {
		t.Errorf("expected rate 2 inclusive of the window end")
	}
	if _, ok := SpotRateInWindow(spots, ratesBase.Add(2*time.Hour), ratesBase.Add(3*time.Hour)); ok {
		t.Errorf("window start is exclusive")
	}
	if _, ok := SpotRateInWindow(nil, ratesBase, ratesBase.Add(time.Hour)); ok {
		t.Errorf("no spots, no rate")
	}
}
