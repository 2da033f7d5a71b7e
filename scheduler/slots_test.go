package scheduler

import (
	"testing"
	"time"

	"github.com/prodhub/mcp-m365/graph"
)

// fixedNow is a Monday at noon.
var fixedNow = time.Date(2024, time.January, 15, 12, 0, 0, 0, time.Local)

func newTestScheduler() *Service {
	return NewWithClock(func() time.Time { return fixedNow })
}

func Test_FindAvailableSlots_FirstSlotAfterBusy(t *testing.T) {
	svc := newTestScheduler()
	events := []graph.Event{
		{Subject: "standup", Start: "2024-01-02T09:00", End: "2024-01-02T10:00"},
	}
	slots := svc.FindAvailableSlots(events, SlotOptions{
		DurationMinutes: 30,
		StartDate:       "2024-01-02",
		EndDate:         "2024-01-03",
	})
	if len(slots) == 0 {
		t.Fatal("expected slots")
	}
	if got := slots[0].StartISO; got != "2024-01-02T10:00:00" {
		t.Fatalf("first slot start mismatch: %s", got)
	}
	if got := slots[0].Day; got != "Tuesday, January 02" {
		t.Fatalf("unexpected day label: %s", got)
	}
}

func Test_FindAvailableSlots_DisjointFromBusy(t *testing.T) {
	svc := newTestScheduler()
	events := []graph.Event{
		{Start: "2024-01-02T09:30", End: "2024-01-02T11:00"},
		{Start: "2024-01-02T13:00", End: "2024-01-02T14:15"},
		{Start: "2024-01-03T10:00", End: "2024-01-03T16:00"},
	}
	slots := svc.FindAvailableSlots(events, SlotOptions{
		DurationMinutes: 45,
		StartDate:       "2024-01-02",
		EndDate:         "2024-01-05",
	})
	busy := busyIntervals(events)
	for _, slot := range slots {
		for _, iv := range busy {
			if iv.Overlaps(slot.Start, slot.End) {
				t.Fatalf("slot %s-%s overlaps busy %v-%v", slot.StartISO, slot.EndISO, iv.Start, iv.End)
			}
		}
	}
}

func Test_FindAvailableSlots_CapAndWorkingHours(t *testing.T) {
	svc := newTestScheduler()
	slots := svc.FindAvailableSlots(nil, SlotOptions{
		DurationMinutes: 30,
		StartDate:       "2024-01-01",
		EndDate:         "2024-01-31",
	})
	if len(slots) != maxSlots {
		t.Fatalf("expected %d slots, got %d", maxSlots, len(slots))
	}
	for _, slot := range slots {
		if wd := slot.Start.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t.Fatalf("slot on weekend: %s", slot.StartISO)
		}
		if slot.Start.Hour() < 9 || slot.Start.Hour() >= 17 {
			t.Fatalf("slot outside working hours: %s", slot.StartISO)
		}
	}
}

func Test_FindAvailableSlots_SkipsWeekend(t *testing.T) {
	svc := newTestScheduler()
	// 2024-01-06 is a Saturday.
	slots := svc.FindAvailableSlots(nil, SlotOptions{
		DurationMinutes: 60,
		StartDate:       "2024-01-06",
		EndDate:         "2024-01-09",
	})
	if len(slots) == 0 {
		t.Fatal("expected slots")
	}
	if got := slots[0].StartISO; got != "2024-01-08T09:00:00" {
		t.Fatalf("expected first slot on Monday morning, got %s", got)
	}
}

func Test_FindAvailableSlots_MalformedEventsSkipped(t *testing.T) {
	svc := newTestScheduler()
	events := []graph.Event{
		{Subject: "no end", Start: "2024-01-02T09:00"},
		{Subject: "garbage", Start: "not-a-time", End: "also-not"},
		{Subject: "inverted", Start: "2024-01-02T15:00", End: "2024-01-02T14:00"},
	}
	slots := svc.FindAvailableSlots(events, SlotOptions{
		DurationMinutes: 30,
		StartDate:       "2024-01-02",
		EndDate:         "2024-01-03",
	})
	if len(slots) == 0 {
		t.Fatal("expected slots despite malformed events")
	}
	// With every event dropped the whole morning is free.
	if got := slots[0].StartISO; got != "2024-01-02T09:00:00" {
		t.Fatalf("first slot start mismatch: %s", got)
	}
}

func Test_FindAvailableSlots_DefaultStartTomorrow(t *testing.T) {
	// Clock is Monday noon; with working hours already underway the
	// default window opens Tuesday at 9.
	svc := newTestScheduler()
	slots := svc.FindAvailableSlots(nil, SlotOptions{DurationMinutes: 30})
	if len(slots) == 0 {
		t.Fatal("expected slots")
	}
	if got := slots[0].StartISO; got != "2024-01-16T09:00:00" {
		t.Fatalf("expected default start tomorrow 9am, got %s", got)
	}
}

func Test_FindAvailableSlots_RoundTrip(t *testing.T) {
	svc := newTestScheduler()
	events := []graph.Event{
		{Start: "2024-01-02T10:00", End: "2024-01-02T11:30"},
		{Start: "2024-01-03T09:00", End: "2024-01-03T12:00"},
	}
	opts := SlotOptions{DurationMinutes: 60, StartDate: "2024-01-02", EndDate: "2024-01-05"}
	first := svc.FindAvailableSlots(events, opts)
	if len(first) == 0 {
		t.Fatal("expected slots")
	}
	// Treat found slots as booked and search again: no new slot may
	// overlap a previously found one.
	booked := events
	for _, slot := range first {
		booked = append(booked, graph.Event{Start: slot.StartISO, End: slot.EndISO})
	}
	second := svc.FindAvailableSlots(booked, opts)
	for _, next := range second {
		for _, prev := range first {
			if next.End.After(prev.Start) && next.Start.Before(prev.End) {
				t.Fatalf("slot %s overlaps previously found %s", next.StartISO, prev.StartISO)
			}
		}
	}
}

func Test_FindAvailableSlots_EndOfDayDropped(t *testing.T) {
	svc := newTestScheduler()
	// Calendar fully busy until 16:45; a 90-minute candidate would end
	// at 18:15, past working hours, so nothing is emitted that day.
	events := []graph.Event{
		{Start: "2024-01-02T09:00", End: "2024-01-02T16:45"},
	}
	slots := svc.FindAvailableSlots(events, SlotOptions{
		DurationMinutes: 90,
		StartDate:       "2024-01-02",
		EndDate:         "2024-01-03",
	})
	for _, slot := range slots {
		if slot.Start.Day() == 2 && slot.Start.Hour() >= 16 {
			t.Fatalf("unexpected end-of-day slot: %s", slot.StartISO)
		}
	}
}
