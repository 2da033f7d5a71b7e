package scheduler

import (
	"testing"

	"github.com/prodhub/mcp-m365/graph"
)

func Test_PrioritizeTasks_CompletedExcluded(t *testing.T) {
	svc := newTestScheduler()
	tasks := []graph.Task{
		{Title: "done", Status: "completed", Importance: "high"},
		{Title: "open", Status: "notStarted"},
	}
	out := svc.PrioritizeTasks(tasks, CriteriaUrgency)
	if len(out) != 1 || out[0].Title != "open" {
		t.Fatalf("expected only the open task, got %+v", out)
	}
}

func Test_PrioritizeTasks_OverdueYesterday(t *testing.T) {
	svc := newTestScheduler()
	out := svc.PrioritizeTasks([]graph.Task{
		{Title: "late", Importance: "high", DueDate: "2024-01-14T12:00:00"},
	}, CriteriaUrgency)
	if len(out) != 1 {
		t.Fatalf("expected 1 task, got %d", len(out))
	}
	if got := out[0].PriorityScore; got != 80 {
		t.Fatalf("expected 30+50=80, got %d", got)
	}
	found := false
	for _, r := range out[0].PriorityReasons {
		if r == "OVERDUE by 1 days" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing overdue reason, got %v", out[0].PriorityReasons)
	}
}

func Test_PrioritizeTasks_OverdueFloorsPartialDays(t *testing.T) {
	svc := newTestScheduler()
	// Due this morning, 12 hours before the reference clock: one whole
	// day overdue, not zero.
	out := svc.PrioritizeTasks([]graph.Task{
		{Title: "half-day late", DueDate: "2024-01-15T00:00:00"},
	}, CriteriaUrgency)
	if got := out[0].PriorityScore; got != 50 {
		t.Fatalf("expected 50, got %d", got)
	}
	if got := out[0].PriorityReasons[0]; got != "OVERDUE by 1 days" {
		t.Fatalf("unexpected reason: %s", got)
	}
}

func Test_PrioritizeTasks_DueToday(t *testing.T) {
	svc := newTestScheduler()
	out := svc.PrioritizeTasks([]graph.Task{
		{Title: "today", Importance: "high", DueDate: "2024-01-15T14:00:00"},
	}, CriteriaUrgency)
	if got := out[0].PriorityScore; got != 70 {
		t.Fatalf("expected 30+40=70, got %d", got)
	}
	if got := out[0].Recommendation; got != "🔴 Do this immediately" {
		t.Fatalf("unexpected recommendation: %s", got)
	}
}

func Test_PrioritizeTasks_DueDateBands(t *testing.T) {
	svc := newTestScheduler()
	cases := []struct {
		due    string
		score  int
		reason string
	}{
		{"2024-01-17T12:00:00", 30, "Due in 2 days"},
		{"2024-01-20T12:00:00", 15, "Due this week"},
		{"2024-02-15T12:00:00", 0, ""},
	}
	for _, tc := range cases {
		out := svc.PrioritizeTasks([]graph.Task{{Title: "t", DueDate: tc.due}}, CriteriaUrgency)
		if got := out[0].PriorityScore; got != tc.score {
			t.Fatalf("due %s: expected score %d, got %d", tc.due, tc.score, got)
		}
		if tc.reason == "" {
			if len(out[0].PriorityReasons) != 0 {
				t.Fatalf("due %s: unexpected reasons %v", tc.due, out[0].PriorityReasons)
			}
			continue
		}
		if got := out[0].PriorityReasons[0]; got != tc.reason {
			t.Fatalf("due %s: expected reason %q, got %q", tc.due, tc.reason, got)
		}
	}
}

func Test_PrioritizeTasks_LowImportanceAndMalformedDue(t *testing.T) {
	svc := newTestScheduler()
	out := svc.PrioritizeTasks([]graph.Task{
		{Title: "minor", Importance: "low", DueDate: "soonish"},
	}, CriteriaUrgency)
	if got := out[0].PriorityScore; got != -10 {
		t.Fatalf("expected -10, got %d", got)
	}
	if got := out[0].Recommendation; got != "🟢 Can wait - schedule when convenient" {
		t.Fatalf("unexpected recommendation: %s", got)
	}
}

func Test_PrioritizeTasks_ImportanceCriteriaBoost(t *testing.T) {
	svc := newTestScheduler()
	tasks := []graph.Task{{Title: "big", Importance: "high"}}
	urgency := svc.PrioritizeTasks(tasks, CriteriaUrgency)
	importance := svc.PrioritizeTasks(tasks, CriteriaImportance)
	if urgency[0].PriorityScore != 30 {
		t.Fatalf("urgency score mismatch: %d", urgency[0].PriorityScore)
	}
	if importance[0].PriorityScore != 50 {
		t.Fatalf("importance score mismatch: %d", importance[0].PriorityScore)
	}
}

func Test_PrioritizeTasks_BalancedMatchesUrgency(t *testing.T) {
	svc := newTestScheduler()
	tasks := []graph.Task{
		{Title: "a", Importance: "high", DueDate: "2024-01-16T12:00:00"},
		{Title: "b", Importance: "low"},
	}
	urgency := svc.PrioritizeTasks(tasks, CriteriaUrgency)
	balanced := svc.PrioritizeTasks(tasks, CriteriaBalanced)
	for i := range urgency {
		if urgency[i].PriorityScore != balanced[i].PriorityScore {
			t.Fatalf("balanced diverged from urgency at %d: %d vs %d",
				i, urgency[i].PriorityScore, balanced[i].PriorityScore)
		}
	}
}

func Test_PrioritizeTasks_UnknownCriteriaFallsBack(t *testing.T) {
	svc := newTestScheduler()
	tasks := []graph.Task{{Title: "a", Importance: "high"}}
	out := svc.PrioritizeTasks(tasks, Criteria("whatever"))
	if out[0].PriorityScore != 30 {
		t.Fatalf("expected urgency scoring, got %d", out[0].PriorityScore)
	}
}

func Test_PrioritizeTasks_StableOrder(t *testing.T) {
	svc := newTestScheduler()
	tasks := []graph.Task{
		{Title: "first"},
		{Title: "second"},
		{Title: "urgent", DueDate: "2024-01-15T16:00:00"},
	}
	out := svc.PrioritizeTasks(tasks, CriteriaUrgency)
	if out[0].Title != "urgent" {
		t.Fatalf("expected urgent first, got %s", out[0].Title)
	}
	if out[1].Title != "first" || out[2].Title != "second" {
		t.Fatalf("tie order not preserved: %s, %s", out[1].Title, out[2].Title)
	}
	for i := 1; i < len(out); i++ {
		if out[i-1].PriorityScore < out[i].PriorityScore {
			t.Fatalf("scores not descending at %d", i)
		}
	}
}
