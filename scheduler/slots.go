package scheduler

import (
	"time"

	"github.com/prodhub/mcp-m365/graph"
)

// maxSlots caps the number of suggestions returned per search.
const maxSlots = 10

const slotTimeLayout = "2006-01-02T15:04:05"

// Slot is a proposed free meeting interval within working hours.
type Slot struct {
	Start           time.Time `json:"-"`
	End             time.Time `json:"-"`
	StartISO        string    `json:"start"`
	EndISO          string    `json:"end"`
	DurationMinutes int       `json:"duration_minutes"`
	Day             string    `json:"day"`
}

// SlotOptions bounds a free-slot search. Zero values select the
// defaults noted per field.
type SlotOptions struct {
	// DurationMinutes is the required meeting length (default 30).
	DurationMinutes int `json:"durationMinutes,omitempty"`
	// StartDate is an ISO date or timestamp. When empty the search
	// starts at the next working-hour boundary: today at
	// WorkingHoursStart when that hour is still ahead, else tomorrow.
	StartDate string `json:"startDate,omitempty"`
	// EndDate is an ISO date or timestamp (default StartDate+5 days).
	EndDate string `json:"endDate,omitempty"`
	// WorkingHoursStart is the first working hour (default 9).
	WorkingHoursStart int `json:"workingHoursStart,omitempty"`
	// WorkingHoursEnd is the first non-working hour (default 17).
	WorkingHoursEnd int `json:"workingHoursEnd,omitempty"`
}

// FindAvailableSlots scans the date range for gaps that fit the
// requested duration, avoiding busy intervals, weekends and hours
// outside the working day. Results are chronological, at most
// maxSlots. Malformed events never fail the search; they are ignored.
func (s *Service) FindAvailableSlots(events []graph.Event, opts SlotOptions) []Slot {
	duration := opts.DurationMinutes
	if duration <= 0 {
		duration = 30
	}
	whStart := opts.WorkingHoursStart
	if whStart == 0 {
		whStart = 9
	}
	whEnd := opts.WorkingHoursEnd
	if whEnd == 0 {
		whEnd = 17
	}

	now := s.now()
	var start time.Time
	if opts.StartDate != "" {
		if t, ok := parseTimestamp(opts.StartDate); ok {
			start = t
		}
	}
	if start.IsZero() {
		start = dayAt(now, whStart)
		if now.Hour() >= whStart {
			start = start.AddDate(0, 0, 1)
		}
	}
	var end time.Time
	if opts.EndDate != "" {
		if t, ok := parseTimestamp(opts.EndDate); ok {
			end = t
		}
	}
	if end.IsZero() {
		end = start.AddDate(0, 0, 5)
	}

	busy := busyIntervals(events)
	step := time.Duration(duration) * time.Minute

	var slots []Slot
	cursor := start
	for cursor.Before(end) && len(slots) < maxSlots {
		if wd := cursor.Weekday(); wd == time.Saturday || wd == time.Sunday {
			cursor = dayAt(cursor.AddDate(0, 0, 1), whStart)
			continue
		}
		if cursor.Hour() < whStart {
			cursor = dayAt(cursor, whStart)
		} else if cursor.Hour() >= whEnd {
			cursor = dayAt(cursor.AddDate(0, 0, 1), whStart)
			continue
		}

		slotEnd := cursor.Add(step)
		conflicted := false
		for _, iv := range busy {
			if iv.Overlaps(cursor, slotEnd) {
				// Jump past the first conflicting interval only; any
				// further conflict is rediscovered on the next pass.
				cursor = iv.End
				conflicted = true
				break
			}
		}
		if conflicted {
			continue
		}
		if slotEnd.Hour() <= whEnd {
			slots = append(slots, Slot{
				Start:           cursor,
				End:             slotEnd,
				StartISO:        cursor.Format(slotTimeLayout),
				EndISO:          slotEnd.Format(slotTimeLayout),
				DurationMinutes: duration,
				Day:             cursor.Format("Monday, January 02"),
			})
		}
		cursor = slotEnd
	}
	return slots
}

func dayAt(t time.Time, hour int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
}
