package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/campus-acc/campus-backend/internal/models"
	"github.com/campus-acc/campus-backend/internal/notify"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Notifier delivers best-effort notifications. Implementations absorb their
// own failures.
type Notifier interface {
	Notify(ctx context.Context, n notify.Notification)
}

const (
	EventBookingCreated  = "booking.created"
	EventBookingAccepted = "booking.accepted"
	EventBookingRejected = "booking.rejected"
)

type CreateBookingInput struct {
	PropertyID uint
	RoomID     *uint
	StudentID  uuid.UUID
	MoveInDate time.Time
	Message    string
}

// BookingService runs the booking lifecycle: pending, then accepted or
// rejected by the landlord who owns the property.
type BookingService struct {
	db       *gorm.DB
	notifier Notifier
}

func NewBookingService(db *gorm.DB, notifier Notifier) *BookingService {
	return &BookingService{db: db, notifier: notifier}
}

func withParties(db *gorm.DB) *gorm.DB {
	return db.Preload("Property.Landlord.Profile").Preload("Room").Preload("Student.Profile")
}

// Create files a pending booking and tells the landlord. Concurrent
// bookings of the same room are not serialised.
func (s *BookingService) Create(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	db := s.db.WithContext(ctx)

	var property models.Property
	if err := db.Preload("Landlord.Profile").First(&property, in.PropertyID).Error; err != nil {
		return nil, notFoundOr(err, ErrPropertyNotFound)
	}
	if in.RoomID != nil {
		var room models.Room
		if err := db.First(&room, *in.RoomID).Error; err != nil {
			return nil, notFoundOr(err, ErrRoomNotFound)
		}
		if room.PropertyID != property.ID {
			return nil, ErrRoomMismatch
		}
	}

	booking := models.Booking{
		PropertyID: property.ID,
		RoomID:     in.RoomID,
		StudentID:  in.StudentID,
		MoveInDate: datatypes.Date(in.MoveInDate),
		Message:    in.Message,
		Status:     models.BookingPending,
	}
	if err := db.Omit(clause.Associations).Create(&booking).Error; err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	slog.Info("booking created",
		"booking_id", booking.ID, "property_id", property.ID, "user_id", in.StudentID.String(), "action", "booking.create")

	created, err := s.Get(ctx, booking.ID)
	if err != nil {
		return nil, err
	}

	landlord := property.Landlord
	s.notify(ctx, notify.Notification{
		Event:      EventBookingCreated,
		To:         notify.Recipient{Name: landlord.Username, Email: landlord.Email},
		Subject:    fmt.Sprintf("New booking request for %s", property.Title),
		Body:       newBookingBody(created),
		BookingID:  created.ID,
		PropertyID: property.ID,
	})
	return created, nil
}

func newBookingBody(b *models.Booking) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Hello %s,\n\n", b.Property.Landlord.Username)
	fmt.Fprintf(&sb, "%s has requested to book %s", b.Student.Username, b.Property.Title)
	if b.Room != nil {
		fmt.Fprintf(&sb, " (%s)", b.Room.Label)
	}
	fmt.Fprintf(&sb, " from %s.\n", time.Time(b.MoveInDate).Format("2006-01-02"))
	if b.Message != "" {
		fmt.Fprintf(&sb, "\nMessage: %s\n", b.Message)
	}
	if phone := b.Student.Profile.Phone(); phone != "" {
		fmt.Fprintf(&sb, "Contact: %s\n", phone)
	}
	sb.WriteString("\nLog in to accept or reject the request.")
	return sb.String()
}

func (s *BookingService) Get(ctx context.Context, bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	if err := withParties(s.db.WithContext(ctx)).First(&booking, bookingID).Error; err != nil {
		return nil, notFoundOr(err, ErrBookingNotFound)
	}
	return &booking, nil
}

// UpdateStatus applies a status change requested by requesterID. The owning
// landlord may decide a pending booking; the requesting student gets the
// booking back unchanged; anyone else is refused.
func (s *BookingService) UpdateStatus(ctx context.Context, bookingID uint, status string, requesterID uuid.UUID) (*models.Booking, error) {
	target := models.BookingStatus(strings.ToLower(strings.TrimSpace(status)))
	if !target.IsValid() {
		return nil, ErrInvalidStatus
	}

	booking, err := s.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	switch requesterID {
	case booking.Property.LandlordID:
	case booking.StudentID:
		return booking, nil
	default:
		return nil, ErrBookingForbidden
	}

	if booking.Status == target {
		return booking, nil
	}
	if !booking.Status.CanTransitionTo(target) {
		return nil, ErrBookingClosed
	}

	result := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND status = ?", booking.ID, booking.Status).
		Update("status", target)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrBookingClosed
	}
	booking.Status = target
	slog.Info("booking status changed",
		"booking_id", booking.ID, "property_id", booking.PropertyID, "user_id", requesterID.String(),
		"status", string(target), "action", "booking.update_status")

	s.notifyStudent(ctx, booking)
	return booking, nil
}

func (s *BookingService) notifyStudent(ctx context.Context, b *models.Booking) {
	event := EventBookingAccepted
	verb := "accepted"
	if b.Status == models.BookingRejected {
		event = EventBookingRejected
		verb = "rejected"
	}
	body := fmt.Sprintf("Your booking request for %s has been %s.", b.Property.Title, verb)
	if b.Status == models.BookingAccepted {
		if phone := b.Property.Landlord.Profile.Phone(); phone != "" {
			body += fmt.Sprintf(" Contact the landlord on %s to arrange your move-in.", phone)
		}
	}
	s.notify(ctx, notify.Notification{
		Event: event,
		To: notify.Recipient{
			Name:  b.Student.Username,
			Email: b.Student.Email,
			Phone: b.Student.Profile.Phone(),
		},
		Subject:    fmt.Sprintf("Booking %s: %s", verb, b.Property.Title),
		Body:       body,
		BookingID:  b.ID,
		PropertyID: b.PropertyID,
	})
}

// notify never lets a notifier fault escape into the booking flow.
func (s *BookingService) notify(ctx context.Context, n notify.Notification) {
	if s.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Error("notifier panicked", "booking_id", n.BookingID, "action", n.Event, "error", fmt.Sprint(r))
		}
	}()
	s.notifier.Notify(ctx, n)
}

// ListVisible returns bookings the user requested or received as landlord.
func (s *BookingService) ListVisible(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	var bookings []models.Booking
	err := withParties(s.db.WithContext(ctx)).Scopes(VisibleTo(userID)).
		Order("bookings.created_at DESC").Order("bookings.id DESC").Find(&bookings).Error
	return bookings, err
}

// ListForLandlord returns incoming bookings across the landlord's properties.
func (s *BookingService) ListForLandlord(ctx context.Context, landlordID uuid.UUID) ([]models.Booking, error) {
	var bookings []models.Booking
	err := withParties(s.db.WithContext(ctx)).
		Where("bookings.property_id IN (SELECT id FROM properties WHERE landlord_id = ?)", landlordID).
		Order("bookings.created_at DESC").Order("bookings.id DESC").Find(&bookings).Error
	return bookings, err
}

func (s *BookingService) ListForStudent(ctx context.Context, studentID uuid.UUID) ([]models.Booking, error) {
	var bookings []models.Booking
	err := withParties(s.db.WithContext(ctx)).Where("bookings.student_id = ?", studentID).
		Order("bookings.created_at DESC").Order("bookings.id DESC").Find(&bookings).Error
	return bookings, err
}

// HasAnyBooking reports whether the student has ever booked anything, in
// any status.
func (s *BookingService) HasAnyBooking(ctx context.Context, studentID uuid.UUID) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Booking{}).Where("student_id = ?", studentID).Count(&n).Error
	return n > 0, err
}

// Withdraw deletes a still-pending booking on behalf of the student who made it.
func (s *BookingService) Withdraw(ctx context.Context, bookingID uint, requesterID uuid.UUID) error {
	db := s.db.WithContext(ctx)
	var booking models.Booking
	if err := db.First(&booking, bookingID).Error; err != nil {
		return notFoundOr(err, ErrBookingNotFound)
	}
	if booking.StudentID != requesterID {
		return ErrBookingForbidden
	}
	if booking.Status != models.BookingPending {
		return ErrBookingClosed
	}
	result := db.Where("id = ? AND status = ?", booking.ID, models.BookingPending).Delete(&models.Booking{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookingClosed
	}
	slog.Info("booking withdrawn", "booking_id", booking.ID, "user_id", requesterID.String(), "action", "booking.withdraw")
	return nil
}
