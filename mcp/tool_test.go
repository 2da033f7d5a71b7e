package mcp

import (
	"reflect"
	"strings"
	"testing"

	"github.com/prodhub/mcp-m365/scheduler"
)

// The published draftReply contract must advertise the values the
// engine actually dispatches on.
func TestDraftReplyToolContract(t *testing.T) {
	intents := []string{
		string(scheduler.IntentAcknowledge),
		string(scheduler.IntentDecline),
		string(scheduler.IntentAccept),
		string(scheduler.IntentFollowUp),
	}
	tones := []string{
		string(scheduler.ToneProfessional),
		string(scheduler.ToneFriendly),
		string(scheduler.ToneBrief),
	}

	intentField, ok := reflect.TypeOf(DraftReplyInput{}).FieldByName("Intent")
	if !ok {
		t.Fatalf("DraftReplyInput has no Intent field")
	}
	intentDesc := intentField.Tag.Get("description")
	toneField, _ := reflect.TypeOf(DraftReplyInput{}).FieldByName("Tone")
	toneDesc := toneField.Tag.Get("description")

	for _, v := range intents {
		if !strings.Contains(intentDesc, v) {
			t.Fatalf("intent description %q missing %q", intentDesc, v)
		}
		if !strings.Contains(draftReplyDesc, v) {
			t.Fatalf("tool description missing intent %q", v)
		}
	}
	for _, v := range tones {
		if !strings.Contains(toneDesc, v) {
			t.Fatalf("tone description %q missing %q", toneDesc, v)
		}
	}
	for _, stale := range []string{"schedule_meeting", "request_info"} {
		if strings.Contains(intentDesc, stale) || strings.Contains(draftReplyDesc, stale) {
			t.Fatalf("contract still advertises %q", stale)
		}
	}
}
