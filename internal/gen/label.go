package gen

import (
	"github.com/veldtlabs/synthlog/internal/dataset"
)

// Off-hours boundaries: accesses at or after 9 PM or before 5 AM violate
// policy regardless of the other fields.
const (
	offHoursStart = 21
	offHoursEnd   = 5
)

// IsViolation evaluates the compliance rules against a single event row.
// It is a pure function of the row's current field values; how the row was
// produced is irrelevant, so benign rows can legitimately match by chance
// and an injected row can legitimately fail to match (a plain_phi no-op).
//
// A row violates policy when any of the following holds:
//
//  1. it touches a PHI asset stored in plain text,
//  2. its timestamp hour is outside business hours (>= 21 or < 5),
//  3. its IP region is not US.
func IsViolation(e dataset.AccessEvent) bool {
	if e.PHIFlag && e.EncryptionStatus == dataset.EncryptionPlain {
		return true
	}
	hour := e.Timestamp.Hour()
	if hour >= offHoursStart || hour < offHoursEnd {
		return true
	}
	if e.IPRegion != dataset.RegionUS {
		return true
	}
	return false
}

// LabelViolations recomputes PolicyViolation for every row from its final
// field values and returns the violation count. The pass is idempotent:
// re-running it on an unchanged table yields identical labels.
func LabelViolations(events []dataset.AccessEvent) int {
	violations := 0
	for i := range events {
		v := IsViolation(events[i])
		events[i].PolicyViolation = v
		if v {
			violations++
		}
	}
	return violations
}
