package assistant

import (
	"strconv"
	"strings"
)

// Intent enumerates the conversational commands the assistant accepts.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentHelp
	IntentBriefing
	IntentSchedule
	IntentTasks
	IntentInbox
)

func (i Intent) String() string {
	switch i {
	case IntentHelp:
		return "help"
	case IntentBriefing:
		return "briefing"
	case IntentSchedule:
		return "schedule"
	case IntentTasks:
		return "tasks"
	case IntentInbox:
		return "inbox"
	default:
		return "unknown"
	}
}

// Request is a resolved user utterance.
type Request struct {
	Intent Intent
	// DurationMinutes applies to IntentSchedule (default 30).
	DurationMinutes int
}

var (
	helpWords     = map[string]bool{"help": true, "/help": true, "?": true}
	briefingWords = map[string]bool{"briefing": true, "brief": true, "daily": true, "morning": true, "overview": true}
	taskWords     = map[string]bool{"tasks": true, "todo": true, "todos": true, "priorities": true}
	inboxWords    = map[string]bool{"inbox": true, "email": true, "emails": true, "mail": true}
)

// Resolve maps free text onto an Intent. Exact command words are
// checked first, then looser schedule/calendar phrasings; anything
// else resolves to IntentUnknown.
func Resolve(text string) Request {
	text = strings.ToLower(strings.TrimSpace(text))
	switch {
	case helpWords[text]:
		return Request{Intent: IntentHelp}
	case briefingWords[text]:
		return Request{Intent: IntentBriefing}
	case taskWords[text]:
		return Request{Intent: IntentTasks}
	case inboxWords[text]:
		return Request{Intent: IntentInbox}
	}
	if strings.HasPrefix(text, "schedule") || strings.HasPrefix(text, "meeting") || strings.Contains(text, "find time") {
		return Request{Intent: IntentSchedule, DurationMinutes: extractDuration(text)}
	}
	if strings.Contains(text, "calendar") || strings.Contains(text, "meeting") || strings.Contains(text, "schedule") {
		return Request{Intent: IntentBriefing}
	}
	return Request{Intent: IntentUnknown}
}

// extractDuration picks the first integer out of the utterance, e.g.
// "schedule 45" requests a 45-minute slot.
func extractDuration(text string) int {
	for _, word := range strings.Fields(text) {
		if n, err := strconv.Atoi(word); err == nil && n > 0 {
			return n
		}
	}
	return 30
}
