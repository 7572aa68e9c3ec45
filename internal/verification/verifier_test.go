package verification

import (
	"testing"
	"time"

	"price-stats-lab/internal/domain"
)

var verBase = time.Date(2021, 11, 20, 0, 0, 0, 0, time.UTC)

func record(securityID string, h int, bid, mid, ask float64) *domain.StdevRecord {
	return &domain.StdevRecord{
		SecurityID: securityID,
		SnapTime:   verBase.Add(time.Duration(h) * time.Hour),
		StdevBid:   bid,
		StdevMid:   mid,
		StdevAsk:   ask,
	}
}

func TestCompareRecords_Identical(t *testing.T) {
	records := []*domain.StdevRecord{
		record("A", 0, 1.5, 1.6, 1.7),
		record("A", 1, 0, 0, 0),
		record("B", 0, 2.5, 2.6, 2.7),
	}

	report := CompareRecords(records, records, 0)

	if !report.OK() {
		t.Fatalf("identical sets must compare OK: %+v", report)
	}
	if report.Total != 3 || report.Matched != 3 {
		t.Errorf("total=%d matched=%d, want 3/3", report.Total, report.Matched)
	}
}

func TestCompareRecords_WithinTolerance(t *testing.T) {
	got := []*domain.StdevRecord{record("A", 0, 1.0, 1.0, 1.0)}
	want := []*domain.StdevRecord{record("A", 0, 1.0005, 1.0, 1.0)}

	if report := CompareRecords(got, want, 1e-3); !report.OK() {
		t.Errorf("0.05%% relative difference must be within 1e-3 tolerance: %+v", report)
	}
}

func TestCompareRecords_Divergence(t *testing.T) {
	got := []*domain.StdevRecord{record("A", 0, 1.0, 2.0, 3.0)}
	want := []*domain.StdevRecord{record("A", 0, 1.0, 2.1, 3.0)}

	report := CompareRecords(got, want, 1e-3)

	if report.OK() {
		t.Fatal("5% difference must be flagged")
	}
	if len(report.Divergences) != 1 {
		t.Fatalf("expected 1 divergence, got %d", len(report.Divergences))
	}
	d := report.Divergences[0]
	if d.Field != domain.FieldMid {
		t.Errorf("divergent field %s, want mid", d.Field)
	}
	if d.Got != 2.0 || d.Want != 2.1 {
		t.Errorf("divergence values %g/%g, want 2.0/2.1", d.Got, d.Want)
	}
	if report.Matched != 0 {
		t.Errorf("a record with any divergent field must not count as matched")
	}
}

func TestCompareRecords_NearZeroAbsoluteFloor(t *testing.T) {
	// Exact-zero windows on one side and float dust on the other must not
	// trip the relative check.
	got := []*domain.StdevRecord{record("A", 0, 0, 1e-12, 0)}
	want := []*domain.StdevRecord{record("A", 0, 0, 0, 0)}

	if report := CompareRecords(got, want, 1e-3); !report.OK() {
		t.Errorf("near-zero noise must pass the absolute floor: %+v", report)
	}
}

func TestCompareRecords_MissingAndExtra(t *testing.T) {
	got := []*domain.StdevRecord{
		record("A", 0, 1, 1, 1),
		record("A", 2, 1, 1, 1),
	}
	want := []*domain.StdevRecord{
		record("A", 0, 1, 1, 1),
		record("A", 1, 1, 1, 1),
	}

	report := CompareRecords(got, want, 0)

	if report.OK() {
		t.Fatal("key mismatches must fail the comparison")
	}
	if len(report.Missing) != 1 || !report.Missing[0].SnapTime.Equal(verBase.Add(time.Hour)) {
		t.Errorf("expected hour 1 in missing, got %+v", report.Missing)
	}
	if len(report.Extra) != 1 || !report.Extra[0].SnapTime.Equal(verBase.Add(2*time.Hour)) {
		t.Errorf("expected hour 2 in extra, got %+v", report.Extra)
	}
	if report.Total != 3 {
		t.Errorf("total %d, want 3", report.Total)
	}
	if report.Matched != 1 {
		t.Errorf("matched %d, want 1", report.Matched)
	}
}

func TestCompareRecords_Empty(t *testing.T) {
	report := CompareRecords(nil, nil, 0)
	if !report.OK() || report.Total != 0 {
		t.Errorf("empty sets must compare OK with total 0: %+v", report)
	}
}
