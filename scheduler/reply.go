package scheduler

import (
	"fmt"
	"strings"

	"github.com/prodhub/mcp-m365/graph"
)

// Tone selects the reply register.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneFriendly     Tone = "friendly"
	ToneBrief        Tone = "brief"
)

// Intent selects the reply purpose.
type Intent string

const (
	IntentAcknowledge Intent = "acknowledge"
	IntentDecline     Intent = "decline"
	IntentAccept      Intent = "accept"
	IntentFollowUp    Intent = "follow_up"
)

// ReplyDraft is a generated reply; it is never sent by this package.
type ReplyDraft struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Tone    Tone   `json:"tone"`
	Intent  Intent `json:"intent"`
}

// DraftReply composes a reply from tone and intent templates. Unknown
// tones fall back to professional, unknown intents to acknowledge.
func (s *Service) DraftReply(email graph.Email, tone Tone, intent Intent) ReplyDraft {
	senderName := "there"
	if fields := strings.Fields(email.From); len(fields) > 0 {
		senderName = fields[0]
	}
	subject := email.Subject
	if subject == "" {
		subject = "your email"
	}

	var greeting string
	switch tone {
	case ToneFriendly:
		greeting = fmt.Sprintf("Hi %s!", senderName)
	case ToneBrief:
		greeting = fmt.Sprintf("Hi %s,", senderName)
	default:
		greeting = fmt.Sprintf("Dear %s,", senderName)
	}

	var body string
	switch intent {
	case IntentDecline:
		body = fmt.Sprintf("Thank you for reaching out regarding %q. After careful consideration, I'm afraid I won't be able to proceed with this at the moment. I appreciate your understanding.", subject)
	case IntentAccept:
		body = fmt.Sprintf("Thank you for your email regarding %q. I'm happy to confirm my acceptance and look forward to moving ahead. Please let me know if you need any additional information from my end.", subject)
	case IntentFollowUp:
		body = fmt.Sprintf("I wanted to follow up on your previous email regarding %q. Please let me know if there are any updates or if you need anything from me to move forward.", subject)
	default:
		intent = IntentAcknowledge
		body = fmt.Sprintf("Thank you for your email regarding %q. I have received it and will review the details. I'll get back to you shortly with a more detailed response.", subject)
	}

	var closing string
	switch tone {
	case ToneFriendly:
		closing = "Cheers,"
	case ToneBrief:
		closing = "Thanks,"
	default:
		tone = ToneProfessional
		closing = "Best regards,"
	}

	return ReplyDraft{
		To:      email.FromEmail,
		Subject: "Re: " + subject,
		Body:    greeting + "\n\n" + body + "\n\n" + closing,
		Tone:    tone,
		Intent:  intent,
	}
}
