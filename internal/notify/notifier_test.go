package notify

import (
	"context"
	"errors"
	"testing"
)

type fakeMailer struct {
	sent []string
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.sent = append(m.sent, to)
	return m.err
}

type panickingSender struct{}

func (panickingSender) Send(context.Context, string, string) error {
	panic("twilio client exploded")
}

type fakePublisher struct {
	keys   []string
	events []Event
}

func (p *fakePublisher) Publish(_ context.Context, key string, event any) error {
	p.keys = append(p.keys, key)
	if e, ok := event.(Event); ok {
		p.events = append(p.events, e)
	}
	return nil
}

func TestDispatcherAbsorbsChannelFailures(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp down")}
	events := &fakePublisher{}
	d := NewDispatcher(mailer, panickingSender{}, events)

	d.Notify(context.Background(), Notification{
		Event:     "booking.created",
		To:        Recipient{Name: "landlord", Email: "l@example.com", Phone: "+263771000000"},
		Subject:   "New booking",
		Body:      "hello",
		BookingID: 7,
	})

	if len(mailer.sent) != 1 || mailer.sent[0] != "l@example.com" {
		t.Fatalf("mailer sent = %v, want one message to l@example.com", mailer.sent)
	}
	if len(events.events) != 1 {
		t.Fatalf("published %d events, want 1 despite earlier failures", len(events.events))
	}
	if events.keys[0] != "booking.created" || events.events[0].BookingID != 7 {
		t.Errorf("unexpected event %+v with key %q", events.events[0], events.keys[0])
	}
}

func TestDispatcherSkipsChannelsWithoutRecipient(t *testing.T) {
	mailer := &fakeMailer{}
	d := NewDispatcher(mailer, nil, nil)

	d.Notify(context.Background(), Notification{To: Recipient{Phone: "+263771000000"}, Body: "hi"})

	if len(mailer.sent) != 0 {
		t.Errorf("mailer called without an email recipient: %v", mailer.sent)
	}
}

func TestNilDispatcherIsNoop(t *testing.T) {
	var d *Dispatcher
	d.Notify(context.Background(), Notification{Event: "booking.created"})
}

func TestWhatsAppAddress(t *testing.T) {
	if got := WhatsAppAddress("+263771000000"); got != "whatsapp:+263771000000" {
		t.Errorf("WhatsAppAddress = %q", got)
	}
	if got := WhatsAppAddress("whatsapp:+1"); got != "whatsapp:+1" {
		t.Errorf("WhatsAppAddress double-prefixed: %q", got)
	}
}
