package dto

import (
	"time"

	"github.com/campus-acc/campus-backend/internal/models"
)

type CreateBookingRequest struct {
	Property   uint   `json:"property" validate:"required"`
	Room       *uint  `json:"room"`
	MoveInDate string `json:"move_in_date" validate:"required,datetime=2006-01-02"`
	Message    string `json:"message" validate:"max=2000"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type BookingResponse struct {
	ID             uint      `json:"id"`
	Property       uint      `json:"property"`
	PropertyTitle  string    `json:"property_title"`
	Room           *uint     `json:"room"`
	RoomLabel      string    `json:"room_label,omitempty"`
	Student        string    `json:"student"`
	StudentName    string    `json:"student_name"`
	StudentProgram string    `json:"student_program"`
	StudentYear    string    `json:"student_year"`
	StudentPhone   string    `json:"student_phone"`
	MoveInDate     string    `json:"move_in_date"`
	Message        string    `json:"message"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewBookingResponse expects Property, Room and Student.Profile preloaded.
func NewBookingResponse(b *models.Booking) BookingResponse {
	resp := BookingResponse{
		ID:             b.ID,
		Property:       b.PropertyID,
		PropertyTitle:  b.Property.Title,
		Room:           b.RoomID,
		Student:        b.StudentID.String(),
		StudentName:    b.Student.Username,
		StudentProgram: b.Student.Profile.Program,
		StudentYear:    b.Student.Profile.YearOfStudy,
		StudentPhone:   b.Student.Profile.Phone(),
		MoveInDate:     time.Time(b.MoveInDate).Format("2006-01-02"),
		Message:        b.Message,
		Status:         string(b.Status),
		CreatedAt:      b.CreatedAt,
	}
	if b.Room != nil {
		resp.RoomLabel = b.Room.Label
	}
	return resp
}

func NewBookingResponses(bookings []models.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, NewBookingResponse(&bookings[i]))
	}
	return out
}
