// Package verification cross-checks the incremental window engine against
// the batch reference engine. The two encode the same policy via different
// means; agreement is asserted, never assumed by construction.
package verification

import (
	"math"
	"sort"
	"time"

	"price-stats-lab/internal/domain"
)

// DefaultRelTolerance is the relative tolerance for stdev comparisons.
const DefaultRelTolerance = 1e-3

// absTolerance absorbs noise around exact-zero stdevs, where a relative
// bound is meaningless.
const absTolerance = 1e-9

// RecordKey identifies one result record.
type RecordKey struct {
	SecurityID string
	SnapTime   time.Time
}

// FieldDivergence is one stdev value that differs beyond tolerance.
type FieldDivergence struct {
	Key   RecordKey
	Field domain.PriceField
	Got   float64
	Want  float64
}

// Report summarizes a comparison of two record sets.
type Report struct {
	Total       int               // keys in either set
	Matched     int               // keys present in both with all fields in tolerance
	Divergences []FieldDivergence // value mismatches on shared keys
	Missing     []RecordKey       // keys only in the reference set
	Extra       []RecordKey       // keys only in the incremental set
}

// OK reports whether the two record sets agree completely.
func (r *Report) OK() bool {
	return len(r.Divergences) == 0 && len(r.Missing) == 0 && len(r.Extra) == 0
}

// CompareRecords compares incremental engine output against reference
// output. Keys must match exactly; stdev values must agree within the given
// relative tolerance (DefaultRelTolerance when tol <= 0).
func CompareRecords(got, want []*domain.StdevRecord, tol float64) *Report {
	if tol <= 0 {
		tol = DefaultRelTolerance
	}

	gotByKey := indexByKey(got)
	wantByKey := indexByKey(want)

	report := &Report{}
	seen := make(map[RecordKey]struct{}, len(gotByKey))

	for key, g := range gotByKey {
		seen[key] = struct{}{}
		w, ok := wantByKey[key]
		if !ok {
			report.Extra = append(report.Extra, key)
			continue
		}
		divergent := false
		for _, f := range domain.PriceFields {
			if !within(g.Stdev(f), w.Stdev(f), tol) {
				divergent = true
				report.Divergences = append(report.Divergences, FieldDivergence{
					Key:   key,
					Field: f,
					Got:   g.Stdev(f),
					Want:  w.Stdev(f),
				})
			}
		}
		if !divergent {
			report.Matched++
		}
	}

	for key := range wantByKey {
		if _, ok := seen[key]; !ok {
			report.Missing = append(report.Missing, key)
		}
	}
	report.Total = len(seen) + len(report.Missing)

	sortKeys(report.Missing)
	sortKeys(report.Extra)
	sort.SliceStable(report.Divergences, func(i, j int) bool {
		return keyLess(report.Divergences[i].Key, report.Divergences[j].Key)
	})

	return report
}

func indexByKey(records []*domain.StdevRecord) map[RecordKey]*domain.StdevRecord {
	m := make(map[RecordKey]*domain.StdevRecord, len(records))
	for _, r := range records {
		m[RecordKey{SecurityID: r.SecurityID, SnapTime: r.SnapTime}] = r
	}
	return m
}

// within reports whether two stdev values agree within relative tolerance,
// with a small absolute floor near zero.
func within(a, b, tol float64) bool {
	diff := math.Abs(a - b)
	if diff <= absTolerance {
		return true
	}
	return diff <= tol*math.Max(math.Abs(a), math.Abs(b))
}

func keyLess(a, b RecordKey) bool {
	if a.SecurityID != b.SecurityID {
		return a.SecurityID < b.SecurityID
	}
	return a.SnapTime.Before(b.SnapTime)
}

func sortKeys(keys []RecordKey) {
	sort.SliceStable(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })
}
