package scheduler

import (
	"fmt"
	"strings"

	"github.com/prodhub/mcp-m365/graph"
)

// FilterType narrows the email set before summarization.
type FilterType string

const (
	FilterAll       FilterType = "all"
	FilterUnread    FilterType = "unread"
	FilterImportant FilterType = "important"
)

var meetingKeywords = []string{"meeting", "invite", "calendar", "schedule", "call", "sync"}

var actionKeywords = []string{"please", "action", "required", "urgent", "asap", "deadline", "review", "approve"}

// sampleLimit caps the emails listed per category bucket.
const sampleLimit = 5

// CategoryBucket reports a category's full count plus a capped sample
// in original order.
type CategoryBucket struct {
	Count  int           `json:"count"`
	Emails []graph.Email `json:"emails,omitempty"`
}

// Categories holds the triage buckets. Other is reserved; the current
// rules always resolve to one of the first three.
type Categories struct {
	ActionRequired CategoryBucket `json:"action_required"`
	Meetings       CategoryBucket `json:"meetings"`
	FYI            CategoryBucket `json:"fyi"`
	Other          CategoryBucket `json:"other"`
}

// EmailSummary aggregates counts, category buckets and a one-line digest.
type EmailSummary struct {
	TotalCount     int        `json:"total_count"`
	UnreadCount    int        `json:"unread_count"`
	ImportantCount int        `json:"important_count"`
	Categories     Categories `json:"categories"`
	Summary        string     `json:"summary"`
}

// SummarizeEmails filters then triages emails into category buckets.
// Classification checks meeting keywords first, then action keywords,
// then high importance; everything else is FYI. Unrecognized filter
// values behave as FilterAll.
func (s *Service) SummarizeEmails(emails []graph.Email, filter FilterType) EmailSummary {
	var filtered []graph.Email
	switch filter {
	case FilterUnread:
		for _, e := range emails {
			if !e.IsRead {
				filtered = append(filtered, e)
			}
		}
	case FilterImportant:
		for _, e := range emails {
			if e.Importance == "high" {
				filtered = append(filtered, e)
			}
		}
	default:
		filtered = emails
	}

	var action, meetings, fyi []graph.Email
	for _, e := range filtered {
		combined := strings.ToLower(e.Subject) + " " + strings.ToLower(e.Preview)
		switch {
		case containsAny(combined, meetingKeywords):
			meetings = append(meetings, e)
		case containsAny(combined, actionKeywords):
			action = append(action, e)
		case e.Importance == "high":
			action = append(action, e)
		default:
			fyi = append(fyi, e)
		}
	}

	summary := EmailSummary{
		TotalCount: len(filtered),
		Categories: Categories{
			ActionRequired: bucket(action),
			Meetings:       bucket(meetings),
			FYI:            bucket(fyi),
			Other:          bucket(nil),
		},
		Summary: digest(len(action), len(meetings), len(fyi)),
	}
	for _, e := range filtered {
		if !e.IsRead {
			summary.UnreadCount++
		}
		if e.Importance == "high" {
			summary.ImportantCount++
		}
	}
	return summary
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func bucket(emails []graph.Email) CategoryBucket {
	b := CategoryBucket{Count: len(emails)}
	if len(emails) > sampleLimit {
		emails = emails[:sampleLimit]
	}
	b.Emails = emails
	return b
}

func digest(action, meetings, fyi int) string {
	var parts []string
	if action > 0 {
		parts = append(parts, fmt.Sprintf("📌 %d email(s) need your attention", action))
	}
	if meetings > 0 {
		parts = append(parts, fmt.Sprintf("📅 %d meeting-related email(s)", meetings))
	}
	if fyi > 0 {
		parts = append(parts, fmt.Sprintf("📧 %d FYI email(s)", fyi))
	}
	if len(parts) == 0 {
		return "Your inbox is clear! 🎉"
	}
	return strings.Join(parts, " | ")
}
