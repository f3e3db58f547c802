// Package notify delivers best-effort notifications over email, WhatsApp and
// the booking event stream. Delivery failures are logged and absorbed; they
// never reach the caller.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrUnavailable marks a delivery channel that failed or is down.
var ErrUnavailable = errors.New("notification channel unavailable")

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type MessageSender interface {
	Send(ctx context.Context, to, body string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type Recipient struct {
	Name  string
	Email string
	Phone string
}

type Notification struct {
	Event      string
	To         Recipient
	Subject    string
	Body       string
	BookingID  uint
	PropertyID uint
}

// Event is the payload written to the booking event stream.
type Event struct {
	Type       string    `json:"type"`
	BookingID  uint      `json:"booking_id,omitempty"`
	PropertyID uint      `json:"property_id,omitempty"`
	Recipient  string    `json:"recipient,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Dispatcher fans a notification out to every configured channel. Any of
// the channels may be nil.
type Dispatcher struct {
	mailer   Mailer
	whatsapp MessageSender
	events   EventPublisher
}

func NewDispatcher(mailer Mailer, whatsapp MessageSender, events EventPublisher) *Dispatcher {
	return &Dispatcher{mailer: mailer, whatsapp: whatsapp, events: events}
}

// Notify sends n on every channel that applies to its recipient.
func (d *Dispatcher) Notify(ctx context.Context, n Notification) {
	if d == nil {
		return
	}
	if n.To.Email != "" && d.mailer != nil {
		d.attempt("email", n, func() error {
			return d.mailer.Send(ctx, n.To.Email, n.Subject, n.Body)
		})
	}
	if n.To.Phone != "" && d.whatsapp != nil {
		d.attempt("whatsapp", n, func() error {
			return d.whatsapp.Send(ctx, n.To.Phone, n.Body)
		})
	}
	if n.Event != "" && d.events != nil {
		d.attempt("events", n, func() error {
			return d.events.Publish(ctx, n.Event, Event{
				Type:       n.Event,
				BookingID:  n.BookingID,
				PropertyID: n.PropertyID,
				Recipient:  n.To.Name,
				OccurredAt: time.Now().UTC(),
			})
		})
	}
}

func (d *Dispatcher) attempt(channel string, n Notification, send func() error) {
	defer func() {
		if r := recover(); r != nil {
			d.report(channel, n, fmt.Errorf("panic: %v", r))
		}
	}()
	if err := send(); err != nil {
		d.report(channel, n, err)
	}
}

func (d *Dispatcher) report(channel string, n Notification, err error) {
	slog.Warn("notification failed",
		"channel", channel,
		"action", n.Event,
		"booking_id", n.BookingID,
		"property_id", n.PropertyID,
		"error", fmt.Errorf("%w: %v", ErrUnavailable, err).Error(),
	)
}
