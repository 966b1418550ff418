package queue

import (
	"encoding/json"
	"testing"
)

func TestDLQName(t *testing.T) {
	if got := DLQName("email.notifications"); got != "dlq.email.notifications" {
		t.Fatalf("DLQName = %s, want dlq.email.notifications", got)
	}
}

func TestEmailMessageValidate(t *testing.T) {
	valid := func() EmailMessage {
		return EmailMessage{
			RecipientEmail:   "ana@example.com",
			RecipientName:    "Ana",
			Subject:          "Registration confirmed",
			HTMLBody:         "<p>Hi Ana</p>",
			NotificationType: "REGISTRATION_CONFIRMATION",
			EventID:          "42",
			ParticipantID:    "7",
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	msg := valid()
	msg.RecipientEmail = ""
	if err := msg.Validate(); err == nil {
		t.Fatal("expected error for empty recipient email")
	}

	msg = valid()
	msg.Subject = "   "
	if err := msg.Validate(); err == nil {
		t.Fatal("expected error for blank subject")
	}

	msg = valid()
	msg.HTMLBody = ""
	if err := msg.Validate(); err == nil {
		t.Fatal("expected error for empty html body")
	}

	msg = valid()
	msg.NotificationType = "CARRIER_PIGEON"
	if err := msg.Validate(); err == nil {
		t.Fatal("expected error for unknown notification type")
	}
}

func TestEmailMessageWireFormat(t *testing.T) {
	textBody := "plain"
	msg := EmailMessage{
		RecipientEmail:   "ana@example.com",
		RecipientName:    "Ana",
		Subject:          "s",
		HTMLBody:         "<p>b</p>",
		TextBody:         &textBody,
		NotificationType: "EVENT_REMINDER",
		EventID:          "42",
		ParticipantID:    "7",
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	for _, key := range []string{
		"recipientEmail", "recipientName", "subject", "htmlBody",
		"textBody", "notificationType", "eventId", "participantId",
	} {
		if _, ok := fields[key]; !ok {
			t.Fatalf("wire format missing field %q", key)
		}
	}

	// textBody is optional and must be omitted when absent.
	msg.TextBody = nil
	payload, err = json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	fields = map[string]any{}
	if err := json.Unmarshal(payload, &fields); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if _, ok := fields["textBody"]; ok {
		t.Fatal("textBody should be omitted when nil")
	}
}
