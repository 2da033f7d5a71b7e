package assistant

import (
	"context"

	"github.com/prodhub/mcp-m365/graph"
)

// GraphSource adapts the graph services to the DataSource interface
// for a single account.
type GraphSource struct {
	account  graph.Account
	scopes   []string
	profiles *graph.ProfileService
	calendar *graph.CalendarService
	mail     *graph.MailService
	tasks    *graph.TaskService
}

func NewGraphSource(mgr *graph.Manager, account graph.Account) *GraphSource {
	return &GraphSource{
		account:  account,
		scopes:   graph.DefaultScopes(),
		profiles: graph.NewProfileService(mgr),
		calendar: graph.NewCalendarService(mgr),
		mail:     graph.NewMailService(mgr),
		tasks:    graph.NewTaskService(mgr),
	}
}

func (g *GraphSource) Profile(ctx context.Context) (*graph.Profile, error) {
	return g.profiles.Get(ctx, &graph.GetProfileInput{Account: g.account}, g.scopes, nil)
}

func (g *GraphSource) Events(ctx context.Context, startDate, endDate string, top int) ([]graph.Event, error) {
	out, err := g.calendar.List(ctx, &graph.ListEventsInput{
		Account:   g.account,
		StartDate: startDate,
		EndDate:   endDate,
		Top:       top,
	}, g.scopes, nil)
	if err != nil {
		return nil, err
	}
	return out.Events, nil
}

func (g *GraphSource) Emails(ctx context.Context, unreadOnly bool, top int) ([]graph.Email, error) {
	out, err := g.mail.List(ctx, &graph.ListMailInput{
		Account:    g.account,
		UnreadOnly: unreadOnly,
		Top:        top,
	}, g.scopes, nil)
	if err != nil {
		return nil, err
	}
	return out.Messages, nil
}

func (g *GraphSource) Tasks(ctx context.Context, top int) ([]graph.Task, error) {
	out, err := g.tasks.List(ctx, &graph.ListTasksInput{
		Account: g.account,
		Top:     top,
	}, g.scopes, nil)
	if err != nil {
		return nil, err
	}
	return out.Tasks, nil
}
