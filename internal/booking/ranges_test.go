package booking

import (
	"testing"
	"time"
)

func mustLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("load location %s: %v", name, err)
	}
	return loc
}

func at(t *testing.T, loc *time.Location, hour, min int) time.Time {
	t.Helper()
	return time.Date(2021, time.May, 6, hour, min, 0, 0, loc)
}

func TestMergeRanges_Empty(t *testing.T) {
	if got := MergeRanges(nil); len(got) != 0 {
		t.Fatalf("expected empty output, got %v", got)
	}
	if got := MergeRanges([]TimeRange{}); len(got) != 0 {
		t.Fatalf("expected empty output, got %v", got)
	}
}

func TestMergeRanges_Overlapping(t *testing.T) {
	loc := mustLocation(t, "America/Los_Angeles")
	input := []TimeRange{
		{Start: at(t, loc, 18, 30), End: at(t, loc, 20, 0)},
		{Start: at(t, loc, 19, 0), End: at(t, loc, 20, 0)},
	}

	got := MergeRanges(input)
	if len(got) != 1 {
		t.Fatalf("expected 1 merged range, got %d", len(got))
	}
	if !got[0].Start.Equal(at(t, loc, 18, 30)) || !got[0].End.Equal(at(t, loc, 20, 0)) {
		t.Fatalf("unexpected merged range: %v", got[0])
	}
}

func TestMergeRanges_TouchingAreMerged(t *testing.T) {
	loc := mustLocation(t, "America/Los_Angeles")
	input := []TimeRange{
		{Start: at(t, loc, 18, 0), End: at(t, loc, 19, 0)},
		{Start: at(t, loc, 19, 0), End: at(t, loc, 20, 0)},
	}

	got := MergeRanges(input)
	if len(got) != 1 {
		t.Fatalf("expected touching ranges to merge, got %d ranges", len(got))
	}
	if !got[0].Start.Equal(at(t, loc, 18, 0)) || !got[0].End.Equal(at(t, loc, 20, 0)) {
		t.Fatalf("unexpected merged range: %v", got[0])
	}
}

func TestMergeRanges_ContainedRangeCollapses(t *testing.T) {
	loc := mustLocation(t, "UTC")
	input := []TimeRange{
		{Start: at(t, loc, 9, 0), End: at(t, loc, 12, 0)},
		{Start: at(t, loc, 10, 0), End: at(t, loc, 11, 0)},
	}

	got := MergeRanges(input)
	if len(got) != 1 {
		t.Fatalf("expected contained range to collapse, got %d ranges", len(got))
	}
	if !got[0].End.Equal(at(t, loc, 12, 0)) {
		t.Fatalf("containing end lost: %v", got[0])
	}
}

func TestMergeRanges_UnsortedInput(t *testing.T) {
	loc := mustLocation(t, "UTC")
	input := []TimeRange{
		{Start: at(t, loc, 15, 0), End: at(t, loc, 16, 0)},
		{Start: at(t, loc, 9, 0), End: at(t, loc, 10, 0)},
		{Start: at(t, loc, 9, 30), End: at(t, loc, 11, 0)},
	}

	got := MergeRanges(input)
	if len(got) != 2 {
		t.Fatalf("expected 2 ranges, got %d", len(got))
	}
	if !got[0].Start.Equal(at(t, loc, 9, 0)) || !got[0].End.Equal(at(t, loc, 11, 0)) {
		t.Fatalf("unexpected first range: %v", got[0])
	}
	if !got[1].Start.Equal(at(t, loc, 15, 0)) {
		t.Fatalf("unexpected second range: %v", got[1])
	}
}

func TestMergeRanges_Idempotent(t *testing.T) {
	loc := mustLocation(t, "UTC")
	input := []TimeRange{
		{Start: at(t, loc, 8, 0), End: at(t, loc, 9, 0)},
		{Start: at(t, loc, 8, 30), End: at(t, loc, 10, 0)},
		{Start: at(t, loc, 12, 0), End: at(t, loc, 13, 0)},
	}

	once := MergeRanges(input)
	twice := MergeRanges(once)
	if len(once) != len(twice) {
		t.Fatalf("merge not idempotent: %d vs %d ranges", len(once), len(twice))
	}
	for i := range once {
		if !once[i].Start.Equal(twice[i].Start) || !once[i].End.Equal(twice[i].End) {
			t.Fatalf("merge not idempotent at %d: %v vs %v", i, once[i], twice[i])
		}
	}
}

func TestMergeRanges_OutputInvariants(t *testing.T) {
	loc := mustLocation(t, "UTC")
	input := []TimeRange{
		{Start: at(t, loc, 14, 0), End: at(t, loc, 15, 0)},
		{Start: at(t, loc, 8, 0), End: at(t, loc, 9, 30)},
		{Start: at(t, loc, 9, 0), End: at(t, loc, 10, 0)},
		{Start: at(t, loc, 10, 0), End: at(t, loc, 10, 30)},
	}

	got := MergeRanges(input)
	for i := 1; i < len(got); i++ {
		if !got[i-1].End.Before(got[i].Start) {
			t.Fatalf("ranges %d and %d overlap or touch: %v %v", i-1, i, got[i-1], got[i])
		}
	}
}

func TestMergeByCourt(t *testing.T) {
	loc := mustLocation(t, "UTC")
	records := []Booking{
		{CourtID: "14610", Start: at(t, loc, 18, 30), End: at(t, loc, 19, 30)},
		{CourtID: "14610", Start: at(t, loc, 19, 0), End: at(t, loc, 20, 0)},
		{CourtID: "14614", Start: at(t, loc, 9, 0), End: at(t, loc, 10, 0)},
	}

	got := MergeByCourt(records)
	if len(got) != 2 {
		t.Fatalf("expected 2 courts, got %d", len(got))
	}
	if len(got["14610"]) != 1 {
		t.Fatalf("expected merged ranges for court 14610, got %v", got["14610"])
	}
	if _, ok := got["14611"]; ok {
		t.Fatal("unexpected entry for unbooked court")
	}
}

func TestTimeRangeOverlaps(t *testing.T) {
	loc := mustLocation(t, "UTC")
	a := TimeRange{Start: at(t, loc, 18, 30), End: at(t, loc, 20, 0)}
	b := TimeRange{Start: at(t, loc, 19, 0), End: at(t, loc, 20, 0)}
	touching := TimeRange{Start: at(t, loc, 20, 0), End: at(t, loc, 21, 0)}

	if !a.Overlaps(b) || !b.Overlaps(a) {
		t.Fatal("expected overlap both ways")
	}
	if a.Overlaps(touching) || touching.Overlaps(a) {
		t.Fatal("touching endpoints must not overlap")
	}
}
