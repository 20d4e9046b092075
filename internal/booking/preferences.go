// internal/booking/preferences.go
package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// timeLabelLayout matches preference labels like "6:30 PM".
const timeLabelLayout = "3:04 PM"

// ErrInvalidPreference marks preference time labels that cannot be parsed.
var ErrInvalidPreference = errors.New("invalid preference time")

// DayPreference is one weekday's booking preferences. Both slices are
// ordered by priority: the first window and the first court are tried first.
type DayPreference struct {
	StartEndTimes [][2]string `json:"start_end_times"`
	CourtIDs      []string    `json:"court_ids"`
}

// WeeklyPreferences maps lowercase weekday names ("monday") to that day's
// preferences.
type WeeklyPreferences map[string]DayPreference

// Candidate is one (court, time window) pairing considered for booking.
type Candidate struct {
	CourtID string
	Start   time.Time
	End     time.Time
}

// Range returns the candidate's window as a TimeRange.
func (c Candidate) Range() TimeRange {
	return TimeRange{Start: c.Start, End: c.End}
}

// ExpandPreferences turns the weekly schedule into an ordered candidate list
// for the given date. The weekday is resolved in the date's own location.
// All courts are produced for the most preferred window before the next
// window is considered. A day with no preferences yields an empty list;
// that is a normal outcome, not an error.
func ExpandPreferences(prefs WeeklyPreferences, date time.Time) ([]Candidate, error) {
	weekday := strings.ToLower(date.Format("Monday"))
	pref, ok := prefs[weekday]
	if !ok {
		return nil, nil
	}

	var candidates []Candidate
	for _, window := range pref.StartEndTimes {
		start, err := timeOnDate(window[0], date)
		if err != nil {
			return nil, err
		}
		end, err := timeOnDate(window[1], date)
		if err != nil {
			return nil, err
		}
		for _, courtID := range pref.CourtIDs {
			candidates = append(candidates, Candidate{CourtID: courtID, Start: start, End: end})
		}
	}
	return candidates, nil
}

// timeOnDate combines an "hour:minute AM/PM" label with the calendar date,
// in the date's location.
func timeOnDate(label string, date time.Time) (time.Time, error) {
	parsed, err := time.Parse(timeLabelLayout, strings.TrimSpace(label))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPreference, label)
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, date.Location()), nil
}
