package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	neturl "net/url"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

type CalendarService struct{ m *Manager }

func NewCalendarService(m *Manager) *CalendarService { return &CalendarService{m: m} }

// List fetches events between the input dates ordered by start time.
// Date-only inputs are widened to whole days.
func (s *CalendarService) List(ctx context.Context, in *ListEventsInput, scopes []string, prompt func(string)) (*ListEventsOutput, error) {
	if in.Top <= 0 {
		in.Top = 10
	}
	start := in.StartDate
	if start == "" {
		start = time.Now().UTC().Format(time.RFC3339)
	} else if len(start) == len("2006-01-02") {
		start += "T00:00:00Z"
	}
	end := in.EndDate
	if end == "" {
		end = time.Now().UTC().Add(7 * 24 * time.Hour).Format(time.RFC3339)
	} else if len(end) == len("2006-01-02") {
		end += "T23:59:59Z"
	}
	q := neturl.Values{}
	q.Set("$filter", fmt.Sprintf("start/dateTime ge '%s' and end/dateTime le '%s'", start, end))
	q.Set("$orderby", "start/dateTime")
	q.Set("$top", fmt.Sprintf("%d", in.Top))
	q.Set("$select", "id,subject,start,end,location,attendees,isAllDay,organizer")

	cred, err := s.m.Credential(ctx, in.Account.Alias, in.Account.TenantID, scopes, prompt)
	if err != nil {
		return nil, err
	}
	tok, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: scopes})
	if err != nil {
		return nil, err
	}
	url := graphBaseURL + "/me/events?" + q.Encode()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("list events failed: %s", resp.Status)
	}
	var payload struct {
		Value []struct {
			ID      string `json:"id"`
			Subject string `json:"subject"`
			Start   struct {
				DateTime string `json:"dateTime"`
			} `json:"start"`
			End struct {
				DateTime string `json:"dateTime"`
			} `json:"end"`
			Location struct {
				DisplayName string `json:"displayName"`
			} `json:"location"`
			IsAllDay  bool `json:"isAllDay"`
			Organizer struct {
				EmailAddress struct {
					Name string `json:"name"`
				} `json:"emailAddress"`
			} `json:"organizer"`
			Attendees []struct {
				EmailAddress struct {
					Name string `json:"name"`
				} `json:"emailAddress"`
			} `json:"attendees"`
		} `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	out := &ListEventsOutput{}
	for _, ev := range payload.Value {
		var attendees []string
		for _, a := range ev.Attendees {
			attendees = append(attendees, a.EmailAddress.Name)
		}
		out.Events = append(out.Events, Event{
			ID:        ev.ID,
			Subject:   ev.Subject,
			Start:     ev.Start.DateTime,
			End:       ev.End.DateTime,
			Location:  ev.Location.DisplayName,
			Organizer: ev.Organizer.EmailAddress.Name,
			Attendees: attendees,
			IsAllDay:  ev.IsAllDay,
		})
	}
	return out, nil
}
