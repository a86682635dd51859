package services

import (
	"bytes"
	"strings"
	"testing"
)

func TestMailNotifierBuildsConfirmation(t *testing.T) {
	n := MailNotifier{Host: "localhost", Port: 2525, From: "reservations@railway.local"}
	msg, err := n.BuildMessage(samplePayload())
	if err != nil {
		t.Fatalf("build message: %v", err)
	}
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("write message: %v", err)
	}
	raw := buf.String()
	for _, want := range []string{"asha@example.com", "PNR 0123456789", "ticket-0123456789-asha-rao.pdf"} {
		if !strings.Contains(raw, want) {
			t.Fatalf("message missing %q", want)
		}
	}
}

func TestMailNotifierRejectsBadRecipient(t *testing.T) {
	p := samplePayload()
	p.Ticket.Passenger.Email = "not an address"
	if _, err := (MailNotifier{From: "reservations@railway.local"}).BuildMessage(p); err == nil {
		t.Fatalf("expected an address error")
	}
}
