package scheduler

import (
	"sort"
	"strings"
	"time"

	"github.com/prodhub/mcp-m365/graph"
)

// Interval is a half-open busy time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether [start, end) intersects the interval.
func (iv Interval) Overlaps(start, end time.Time) bool {
	return end.After(iv.Start) && start.Before(iv.End)
}

// Contains reports whether t falls inside the interval.
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}

// busyIntervals derives sorted busy intervals from calendar events.
// Events with a missing or unparseable endpoint are skipped, as are
// inverted ranges (start after end).
func busyIntervals(events []graph.Event) []Interval {
	var busy []Interval
	for _, ev := range events {
		start, ok := parseTimestamp(ev.Start)
		if !ok {
			continue
		}
		end, ok := parseTimestamp(ev.End)
		if !ok {
			continue
		}
		if start.After(end) {
			continue
		}
		busy = append(busy, Interval{Start: start, End: end})
	}
	sort.Slice(busy, func(i, j int) bool { return busy[i].Start.Before(busy[j].Start) })
	return busy
}

var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseTimestamp parses an ISO-8601 timestamp, tolerating a trailing
// UTC designator. The designator is stripped and the remainder treated
// as a naive local time so comparisons against the local clock line up
// with how Graph dateTime strings are produced.
func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	s = strings.TrimSuffix(s, "Z")
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
