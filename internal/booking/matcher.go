// internal/booking/matcher.go
package booking

// FindOpenCourt returns the first candidate whose court has no booked range
// overlapping the candidate's window. Candidates are tried in the order
// given; a court with no entry in bookings is fully free. The second return
// value is false when every candidate conflicts.
func FindOpenCourt(bookings map[string][]TimeRange, candidates []Candidate) (Candidate, bool) {
	for _, candidate := range candidates {
		if courtOpen(bookings[candidate.CourtID], candidate) {
			return candidate, true
		}
	}
	return Candidate{}, false
}

func courtOpen(booked []TimeRange, candidate Candidate) bool {
	want := candidate.Range()
	for _, r := range booked {
		if r.Overlaps(want) {
			return false
		}
	}
	return true
}
