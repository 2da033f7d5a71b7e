package assistant

import "testing"

func TestResolve(t *testing.T) {
	cases := []struct {
		text     string
		intent   Intent
		duration int
	}{
		{"help", IntentHelp, 0},
		{"/help", IntentHelp, 0},
		{"?", IntentHelp, 0},
		{"Briefing", IntentBriefing, 0},
		{"  morning  ", IntentBriefing, 0},
		{"tasks", IntentTasks, 0},
		{"priorities", IntentTasks, 0},
		{"inbox", IntentInbox, 0},
		{"emails", IntentInbox, 0},
		{"schedule", IntentSchedule, 30},
		{"schedule 45", IntentSchedule, 45},
		{"meeting with dana", IntentSchedule, 30},
		{"can you find time 60 for a review", IntentSchedule, 60},
		{"what is on my calendar", IntentBriefing, 0},
		{"can we schedule something", IntentBriefing, 0},
		{"", IntentUnknown, 0},
		{"tell me a joke", IntentUnknown, 0},
	}
	for _, tc := range cases {
		got := Resolve(tc.text)
		if got.Intent != tc.intent {
			t.Fatalf("Resolve(%q) intent = %v, want %v", tc.text, got.Intent, tc.intent)
		}
		if got.DurationMinutes != tc.duration {
			t.Fatalf("Resolve(%q) duration = %d, want %d", tc.text, got.DurationMinutes, tc.duration)
		}
	}
}

func TestIntentString(t *testing.T) {
	if IntentSchedule.String() != "schedule" {
		t.Fatalf("unexpected %q", IntentSchedule.String())
	}
	if Intent(99).String() != "unknown" {
		t.Fatalf("unexpected %q", Intent(99).String())
	}
}
