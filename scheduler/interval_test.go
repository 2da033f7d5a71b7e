package scheduler

import (
	"testing"
	"time"

	"github.com/prodhub/mcp-m365/graph"
)

func Test_parseTimestamp(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2024-01-02T09:00:00", true},
		{"2024-01-02T09:00:00Z", true},
		{"2024-01-02T09:00:00.0000000", true},
		{"2024-01-02T09:00", true},
		{"2024-01-02", true},
		{"", false},
		{"tomorrow", false},
	}
	for _, tc := range cases {
		if _, ok := parseTimestamp(tc.in); ok != tc.ok {
			t.Fatalf("parseTimestamp(%q): ok=%v, want %v", tc.in, ok, tc.ok)
		}
	}
	withZ, _ := parseTimestamp("2024-01-02T09:00:00Z")
	without, _ := parseTimestamp("2024-01-02T09:00:00")
	if !withZ.Equal(without) {
		t.Fatalf("trailing Z should be ignored: %v vs %v", withZ, without)
	}
}

func Test_IntervalOverlaps(t *testing.T) {
	base := time.Date(2024, time.January, 2, 9, 0, 0, 0, time.Local)
	iv := Interval{Start: base, End: base.Add(time.Hour)}
	if iv.Overlaps(base.Add(time.Hour), base.Add(2*time.Hour)) {
		t.Fatal("adjacent ranges must not overlap")
	}
	if !iv.Overlaps(base.Add(30*time.Minute), base.Add(90*time.Minute)) {
		t.Fatal("expected overlap")
	}
	if iv.Overlaps(base.Add(-time.Hour), base) {
		t.Fatal("range ending at start must not overlap")
	}
	if !iv.Contains(base) || iv.Contains(base.Add(time.Hour)) {
		t.Fatal("half-open containment broken")
	}
}

func Test_busyIntervals(t *testing.T) {
	events := []graph.Event{
		{Start: "2024-01-02T13:00", End: "2024-01-02T14:00"},
		{Start: "2024-01-02T09:00", End: "2024-01-02T10:00"},
		{Start: "2024-01-02T16:00", End: "2024-01-02T15:00"}, // inverted, dropped
		{Start: "", End: "2024-01-02T11:00"},                 // partial, dropped
	}
	busy := busyIntervals(events)
	if len(busy) != 2 {
		t.Fatalf("expected 2 intervals, got %d", len(busy))
	}
	if !busy[0].Start.Before(busy[1].Start) {
		t.Fatal("intervals not sorted by start")
	}
}
