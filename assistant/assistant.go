// Package assistant orchestrates Microsoft 365 data access and the
// scheduler heuristics into conversational Markdown responses.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/prodhub/mcp-m365/graph"
	"github.com/prodhub/mcp-m365/scheduler"
)

// DataSource abstracts Microsoft 365 reads so the assistant can be
// exercised without network access.
type DataSource interface {
	Profile(ctx context.Context) (*graph.Profile, error)
	Events(ctx context.Context, startDate, endDate string, top int) ([]graph.Event, error)
	Emails(ctx context.Context, unreadOnly bool, top int) ([]graph.Email, error)
	Tasks(ctx context.Context, top int) ([]graph.Task, error)
}

// Assistant combines a data source with the scheduler engine. It holds
// no per-request state and is safe for concurrent use.
type Assistant struct {
	source    DataSource
	scheduler *scheduler.Service
	logger    *zap.Logger
	now       func() time.Time
}

func New(source DataSource, sched *scheduler.Service, logger *zap.Logger) *Assistant {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sched == nil {
		sched = scheduler.New()
	}
	return &Assistant{source: source, scheduler: sched, logger: logger, now: time.Now}
}

// Respond resolves the utterance to an intent and renders the reply.
// Failures degrade to an apologetic message rather than an error so
// the conversation can continue.
func (a *Assistant) Respond(ctx context.Context, text string) string {
	req := Resolve(text)
	a.logger.Debug("dispatch", zap.String("intent", req.Intent.String()), zap.String("text", text))
	var (
		out string
		err error
	)
	switch req.Intent {
	case IntentHelp:
		return helpText
	case IntentBriefing:
		out, err = a.DailyBriefing(ctx)
	case IntentSchedule:
		out, err = a.FindMeetingTime(ctx, req.DurationMinutes, 5)
	case IntentTasks:
		out, err = a.TaskPriorities(ctx)
	case IntentInbox:
		out, err = a.InboxSummary(ctx)
	default:
		return unknownText(text)
	}
	if err != nil {
		a.logger.Warn("assistant request failed", zap.String("intent", req.Intent.String()), zap.Error(err))
		return fmt.Sprintf("I couldn't complete that right now. Error: %v\n\nMake sure you're signed in to Microsoft 365.", err)
	}
	return out
}

// DailyBriefing combines today's calendar, unread email triage and
// task priorities into one overview.
func (a *Assistant) DailyBriefing(ctx context.Context) (string, error) {
	profile, err := a.source.Profile(ctx)
	if err != nil {
		return "", err
	}
	events, err := a.source.Events(ctx, "", "", 10)
	if err != nil {
		return "", err
	}
	emails, err := a.source.Emails(ctx, true, 10)
	if err != nil {
		return "", err
	}
	tasks, err := a.source.Tasks(ctx, 10)
	if err != nil {
		return "", err
	}

	emailSummary := a.scheduler.SummarizeEmails(emails, scheduler.FilterAll)
	prioritized := a.scheduler.PrioritizeTasks(tasks, scheduler.CriteriaUrgency)

	name := profile.DisplayName
	if name == "" {
		name = "there"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# Good morning, %s! 👋\n\n", name)

	b.WriteString("## 📅 Today's Schedule\n")
	if len(events) > 0 {
		for i, ev := range events {
			if i == 5 {
				break
			}
			fmt.Fprintf(&b, "- **%s** at %s\n", ev.Subject, eventTime(ev.Start))
		}
	} else {
		b.WriteString("- No meetings scheduled today\n")
	}
	b.WriteString("\n")

	b.WriteString("## 📧 Email Summary\n")
	b.WriteString(emailSummary.Summary + "\n")
	if action := emailSummary.Categories.ActionRequired; action.Count > 0 {
		b.WriteString("\n**Emails needing action:**\n")
		for i, email := range action.Emails {
			if i == 3 {
				break
			}
			fmt.Fprintf(&b, "- %s (from %s)\n", email.Subject, email.From)
		}
	}
	b.WriteString("\n")

	b.WriteString("## ✅ Priority Tasks\n")
	if len(prioritized) > 0 {
		for i, task := range prioritized {
			if i == 5 {
				break
			}
			fmt.Fprintf(&b, "- %s **%s**\n", task.Recommendation, task.Title)
		}
	} else {
		b.WriteString("- No pending tasks\n")
	}
	return b.String(), nil
}

// FindMeetingTime proposes free slots of the requested duration over
// the next few days.
func (a *Assistant) FindMeetingTime(ctx context.Context, durationMinutes, days int) (string, error) {
	if durationMinutes <= 0 {
		durationMinutes = 30
	}
	if days <= 0 {
		days = 5
	}
	start := a.now().Format("2006-01-02")
	end := a.now().AddDate(0, 0, days).Format("2006-01-02")
	events, err := a.source.Events(ctx, start, end, 50)
	if err != nil {
		return "", err
	}
	slots := a.scheduler.FindAvailableSlots(events, scheduler.SlotOptions{
		DurationMinutes: durationMinutes,
		StartDate:       start,
		EndDate:         end,
	})
	if len(slots) == 0 {
		return fmt.Sprintf("I couldn't find any available slots in the next %d days.", days), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "## Available %d-minute slots:\n\n", durationMinutes)
	for i, slot := range slots {
		if i == 5 {
			break
		}
		fmt.Fprintf(&b, "- **%s**: %s - %s\n", slot.Day, slot.Start.Format("15:04"), slot.End.Format("15:04"))
	}
	return b.String(), nil
}

// TaskPriorities renders the prioritized task list with reasons.
func (a *Assistant) TaskPriorities(ctx context.Context) (string, error) {
	tasks, err := a.source.Tasks(ctx, 20)
	if err != nil {
		return "", err
	}
	prioritized := a.scheduler.PrioritizeTasks(tasks, scheduler.CriteriaBalanced)
	if len(prioritized) == 0 {
		return "You have no pending tasks! 🎉", nil
	}
	var b strings.Builder
	b.WriteString("## Your Prioritized Tasks\n\n")
	for i, task := range prioritized {
		if i == 10 {
			break
		}
		title := task.Title
		if title == "" {
			title = "Untitled"
		}
		fmt.Fprintf(&b, "%d. %s **%s**", i+1, task.Recommendation, title)
		if len(task.PriorityReasons) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(task.PriorityReasons, ", "))
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

// InboxSummary renders inbox counts and the triaged categories.
func (a *Assistant) InboxSummary(ctx context.Context) (string, error) {
	emails, err := a.source.Emails(ctx, false, 20)
	if err != nil {
		return "", err
	}
	summary := a.scheduler.SummarizeEmails(emails, scheduler.FilterAll)

	var b strings.Builder
	b.WriteString("## 📧 Inbox Summary\n\n")
	fmt.Fprintf(&b, "**Total:** %d emails\n", summary.TotalCount)
	fmt.Fprintf(&b, "**Unread:** %d\n", summary.UnreadCount)
	fmt.Fprintf(&b, "**Important:** %d\n\n", summary.ImportantCount)

	if action := summary.Categories.ActionRequired; action.Count > 0 {
		b.WriteString("### 📌 Action Required\n")
		for _, email := range action.Emails {
			fmt.Fprintf(&b, "- **%s** from %s\n", email.Subject, email.From)
		}
		b.WriteString("\n")
	}
	if meetings := summary.Categories.Meetings; meetings.Count > 0 {
		b.WriteString("### 📅 Meeting Related\n")
		for _, email := range meetings.Emails {
			fmt.Fprintf(&b, "- **%s** from %s\n", email.Subject, email.From)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

// eventTime renders "2024-01-02T09:00:00..." as "2024-01-02 09:00".
func eventTime(start string) string {
	if len(start) > 16 {
		start = start[:16]
	}
	return strings.Replace(start, "T", " ", 1)
}

const helpText = "## 🤖 Available Commands\n\n" +
	"| Command | Description |\n" +
	"|---------|-------------|\n" +
	"| `briefing` | Get your daily overview |\n" +
	"| `schedule [minutes]` | Find available meeting times |\n" +
	"| `tasks` | View prioritized tasks |\n" +
	"| `inbox` | Summarize your emails |\n" +
	"| `help` | Show this help message |\n\n" +
	"You can also ask natural questions like:\n" +
	"- *What's on my calendar today?*\n" +
	"- *Do I have any urgent tasks?*\n" +
	"- *Any important emails?*"

// WelcomeText greets a user joining the conversation.
const WelcomeText = "👋 **Welcome to your Personal Productivity Hub!**\n\n" +
	"I'm your assistant for:\n" +
	"- 📅 Calendar & meetings\n" +
	"- 📧 Emails\n" +
	"- ✅ Tasks\n\n" +
	"**Try these commands:**\n" +
	"- `briefing` - Get your daily overview\n" +
	"- `schedule` - Find meeting times\n" +
	"- `tasks` - View prioritized tasks\n" +
	"- `inbox` - Summarize your emails\n" +
	"- `help` - Show all commands"

func unknownText(text string) string {
	return fmt.Sprintf("I received: *%s*\n\n"+
		"I'm still learning! Try one of these commands:\n"+
		"- `briefing` - Daily overview\n"+
		"- `schedule` - Find meeting times\n"+
		"- `tasks` - Prioritized tasks\n"+
		"- `inbox` - Email summary\n"+
		"- `help` - All commands", text)
}
