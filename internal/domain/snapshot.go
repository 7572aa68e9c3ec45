package domain

import (
	"strings"
	"time"
)

// SnapshotSchemaVersion is the current checkpoint schema version.
// Loading a snapshot with any other version forces a cold start.
const SnapshotSchemaVersion = 1

// FieldState is the persisted accumulator state for one (security, field)
// pair: the window contents plus the running sums needed to resume
// incremental computation without replaying history.
type FieldState struct {
	Values       []float64   `json:"values"`         // window values, oldest first
	Timestamps   []time.Time `json:"timestamps"`     // parallel snap times
	Sum          float64     `json:"sum"`            // running sum of Values
	SumSquares   float64     `json:"sum_of_squares"` // running sum of Values squared
	LastSnapTime time.Time   `json:"last_timestamp"` // last accepted snap; zero when none
}

// Snapshot is a versioned checkpoint of a window engine's state, keyed by
// "{security_id}_{field}". It is an internal format: no consumer depends on
// its shape beyond load/save round-tripping.
type Snapshot struct {
	SchemaVersion int                   `json:"schema_version"`
	WindowSize    int                   `json:"window_size"`
	CreatedAt     time.Time             `json:"created_at"`
	Entries       map[string]FieldState `json:"entries"`
}

// SnapshotKey builds the entry key for a (security, field) pair.
func SnapshotKey(securityID string, f PriceField) string {
	return securityID + "_" + string(f)
}

// SplitSnapshotKey splits an entry key back into security ID and field.
// The field name is the suffix after the last underscore, so security IDs
// containing underscores round-trip safely.
func SplitSnapshotKey(key string) (securityID string, f PriceField, ok bool) {
	idx := strings.LastIndex(key, "_")
	if idx <= 0 || idx == len(key)-1 {
		return "", "", false
	}
	return key[:idx], PriceField(key[idx+1:]), true
}
