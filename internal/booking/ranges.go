// internal/booking/ranges.go
package booking

import (
	"sort"
	"time"
)

// TimeRange is a span of court time. Start is always before End.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two ranges share any time. Touching endpoints
// (one range ending exactly when the other starts) do not overlap.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Booking is one raw reservation record as returned by the booking site.
type Booking struct {
	CourtID string
	Start   time.Time
	End     time.Time
}

// MergeRanges collapses overlapping and touching ranges into maximal spans.
// The result is sorted by start time with no two ranges overlapping or
// touching. Merging an already-merged sequence returns it unchanged.
func MergeRanges(ranges []TimeRange) []TimeRange {
	if len(ranges) == 0 {
		return nil
	}

	sorted := make([]TimeRange, len(ranges))
	copy(sorted, ranges)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := []TimeRange{sorted[0]}
	for _, next := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !next.Start.After(last.End) {
			if next.End.After(last.End) {
				last.End = next.End
			}
			continue
		}
		merged = append(merged, next)
	}
	return merged
}

// MergeByCourt groups raw booking records by court and merges each court's
// ranges. Courts with no records have no entry in the result.
func MergeByCourt(records []Booking) map[string][]TimeRange {
	grouped := make(map[string][]TimeRange)
	for _, rec := range records {
		grouped[rec.CourtID] = append(grouped[rec.CourtID], TimeRange{Start: rec.Start, End: rec.End})
	}

	merged := make(map[string][]TimeRange, len(grouped))
	for courtID, ranges := range grouped {
		merged[courtID] = MergeRanges(ranges)
	}
	return merged
}
