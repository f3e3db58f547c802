package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/campus-acc/campus-backend/internal/models"
	"github.com/campus-acc/campus-backend/internal/notify"
	"github.com/getsentry/sentry-go"
)

const (
	botDetailed = 3
	botListed   = 5

	botBookingMessage = "Booking request sent via WhatsApp bot."
)

const (
	replyGreeting = "👋 Welcome to Campus Accommodation!\n\n" +
		"Reply with your monthly budget as a number (e.g. 100) and I'll show you available places within it."
	replyFallback = "Sorry, I didn't understand that. Send \"Hi\" to search for a place, " +
		"or \"UPDATE\" if you're a landlord managing your listings."
	replyNotLandlord = "This option is only for registered landlords. " +
		"Make sure the phone number on your landlord profile matches this WhatsApp number."
	replyToggleRefused = "You can only change the availability of your own listings. Send UPDATE to see them."
)

// BotService answers WhatsApp messages. Each message is handled on its own;
// everything it remembers lives in the database.
type BotService struct {
	identity     *IdentityService
	properties   *PropertyService
	availability *AvailabilityService
	bookings     *BookingService
	notifier     Notifier
	catalogURL   string
	now          func() time.Time
}

func NewBotService(identity *IdentityService, properties *PropertyService, availability *AvailabilityService,
	bookings *BookingService, notifier Notifier, catalogURL string) *BotService {
	return &BotService{
		identity:     identity,
		properties:   properties,
		availability: availability,
		bookings:     bookings,
		notifier:     notifier,
		catalogURL:   strings.TrimRight(catalogURL, "/"),
		now:          time.Now,
	}
}

// Reply maps one inbound message to one reply. It never fails: errors and
// panics degrade to the fallback text.
func (s *BotService) Reply(ctx context.Context, from, body string) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("bot panic: %v", r)
			slog.Error("bot reply failed", "phone", from, "action", "bot.reply", "error", err.Error())
			sentry.CaptureException(err)
			reply = replyFallback
		}
	}()

	text := strings.ToLower(strings.TrimSpace(body))
	out, err := s.dispatch(ctx, from, text)
	if err != nil {
		slog.Error("bot reply failed", "phone", from, "action", "bot.reply", "error", err.Error())
		sentry.CaptureException(err)
		return replyFallback
	}
	return out
}

func (s *BotService) dispatch(ctx context.Context, from, text string) (string, error) {
	switch {
	case strings.Contains(text, "hello") || strings.Contains(text, "hi"):
		return replyGreeting, nil
	case isDigits(text):
		return s.budget(ctx, text)
	case strings.HasPrefix(text, "book "):
		return s.book(ctx, from, strings.TrimSpace(text[len("book "):]))
	case text == "update" || text == "manage":
		return s.manage(ctx, from)
	case strings.HasPrefix(text, "toggle "):
		return s.toggle(ctx, from, strings.TrimSpace(text[len("toggle "):]))
	}
	return replyFallback, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (s *BotService) budget(ctx context.Context, text string) (string, error) {
	budget, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return replyFallback, nil
	}
	matches, total, err := s.properties.WithinBudget(ctx, budget, botListed)
	if err != nil {
		return "", fmt.Errorf("budget search: %w", err)
	}
	if total == 0 {
		return fmt.Sprintf("😔 No available places found for %s or less. Try a higher budget.", formatPrice(budget)), nil
	}

	var sb strings.Builder
	noun := "places"
	if total == 1 {
		noun = "place"
	}
	fmt.Fprintf(&sb, "🏠 Found %d %s within %s:\n", total, noun, formatPrice(budget))
	for i, p := range matches {
		if i < botDetailed {
			fmt.Fprintf(&sb, "\n*%s*\n💰 %s/month\n", p.Title, formatPrice(p.PricePerMonth))
			if p.Address != "" {
				fmt.Fprintf(&sb, "📍 %s\n", p.Address)
			}
			if amenities := p.Amenities(); len(amenities) > 0 {
				fmt.Fprintf(&sb, "✨ %s\n", strings.Join(amenities, ", "))
			}
			fmt.Fprintf(&sb, "Reply BOOK %d to request it\n", p.ID)
			continue
		}
		fmt.Fprintf(&sb, "\n• %s - %s/month (BOOK %d)", p.Title, formatPrice(p.PricePerMonth), p.ID)
	}
	if len(matches) > botDetailed {
		sb.WriteString("\n")
	}
	if total > botListed {
		fmt.Fprintf(&sb, "\n...and %d more! See them all: %s", total-botListed, s.catalogURL)
	} else {
		fmt.Fprintf(&sb, "\nBrowse all listings: %s", s.catalogURL)
	}
	return sb.String(), nil
}

// formatPrice renders whole amounts without cents.
func formatPrice(v float64) string {
	if v == float64(int64(v)) {
		return "$" + strconv.FormatInt(int64(v), 10)
	}
	return "$" + strconv.FormatFloat(v, 'f', 2, 64)
}

func (s *BotService) book(ctx context.Context, from, arg string) (string, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return "Please send BOOK followed by the listing number, e.g. BOOK 5.", nil
	}

	student, err := s.identity.ResolveOrCreateForPhone(ctx, from)
	if err != nil {
		return "", fmt.Errorf("resolve identity: %w", err)
	}
	booked, err := s.bookings.HasAnyBooking(ctx, student.ID)
	if err != nil {
		return "", fmt.Errorf("check bookings: %w", err)
	}
	if booked {
		return fmt.Sprintf("You've already used your free WhatsApp booking request. "+
			"To make more bookings, sign up on the web app: %s", s.catalogURL), nil
	}

	property, err := s.properties.Get(ctx, uint(id))
	if errors.Is(err, ErrNotFound) {
		return fmt.Sprintf("❌ Listing %d was not found. Send your budget to see available places.", id), nil
	}
	if err != nil {
		return "", fmt.Errorf("load property: %w", err)
	}

	booking, err := s.bookings.Create(ctx, CreateBookingInput{
		PropertyID: property.ID,
		StudentID:  student.ID,
		MoveInDate: s.now(),
		Message:    botBookingMessage,
	})
	if err != nil {
		return "", fmt.Errorf("create booking: %w", err)
	}

	if phone := property.Landlord.Profile.Phone(); phone != "" && s.notifier != nil {
		s.notifyLandlord(ctx, notify.Notification{
			To: notify.Recipient{Name: property.Landlord.Username, Phone: phone},
			Body: fmt.Sprintf("📩 New booking request for %s from %s via WhatsApp. "+
				"Log in to accept or reject it.", property.Title, student.Profile.Phone()),
			BookingID:  booking.ID,
			PropertyID: property.ID,
		})
	}

	return fmt.Sprintf("✅ Booking request sent for *%s*! The landlord will get back to you. "+
		"Track it on the web app: %s", property.Title, s.catalogURL), nil
}

func (s *BotService) notifyLandlord(ctx context.Context, n notify.Notification) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("landlord notification panicked", "booking_id", n.BookingID, "error", fmt.Sprint(r))
		}
	}()
	s.notifier.Notify(ctx, n)
}

// landlordFor returns the landlord behind a phone, or nil when the sender is
// unknown or not a landlord.
func (s *BotService) landlordFor(ctx context.Context, from string) (*models.User, error) {
	user, err := s.identity.FindByPhone(ctx, from)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	switch user.Profile.Role {
	case models.RoleLandlord:
		return user, nil
	case models.RoleStudent:
		return nil, nil
	}
	return nil, nil
}

func (s *BotService) manage(ctx context.Context, from string) (string, error) {
	landlord, err := s.landlordFor(ctx, from)
	if err != nil {
		return "", fmt.Errorf("resolve landlord: %w", err)
	}
	if landlord == nil {
		return replyNotLandlord, nil
	}

	properties, err := s.properties.ListByLandlord(ctx, landlord.ID)
	if err != nil {
		return "", fmt.Errorf("list properties: %w", err)
	}
	if len(properties) == 0 {
		return fmt.Sprintf("You don't have any listings yet. Add one on the web app: %s", s.catalogURL), nil
	}

	var sb strings.Builder
	sb.WriteString("🏘 Your listings:\n")
	for _, p := range properties {
		status := "✅ Available"
		if !p.IsAvailable {
			status = "❌ Unavailable"
		}
		fmt.Fprintf(&sb, "\n#%d %s - %s\nReply TOGGLE %d to change\n", p.ID, p.Title, status, p.ID)
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

func (s *BotService) toggle(ctx context.Context, from, arg string) (string, error) {
	landlord, err := s.landlordFor(ctx, from)
	if err != nil {
		return "", fmt.Errorf("resolve landlord: %w", err)
	}
	if landlord == nil {
		return replyNotLandlord, nil
	}
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return replyToggleRefused, nil
	}

	property, err := s.availability.ToggleOwnedProperty(ctx, uint(id), landlord.ID)
	if errors.Is(err, ErrNotFound) {
		return replyToggleRefused, nil
	}
	if err != nil {
		return "", fmt.Errorf("toggle property: %w", err)
	}

	if property.IsAvailable {
		return fmt.Sprintf("✅ %s is now AVAILABLE and visible to students.", property.Title), nil
	}
	return fmt.Sprintf("❌ %s is now UNAVAILABLE and hidden from searches.", property.Title), nil
}
