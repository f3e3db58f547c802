package handlers

import (
	"time"

	"github.com/campus-acc/campus-backend/internal/dto"
	"github.com/campus-acc/campus-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type BookingHandler struct {
	bookings *services.BookingService
}

func NewBookingHandler(bookings *services.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// List returns the bookings the caller made or received.
func (h *BookingHandler) List(c *fiber.Ctx) error {
	userID := currentUser(c)
	if userID == uuid.Nil {
		return unauthorized(c)
	}
	bookings, err := h.bookings.ListVisible(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err, "booking.list")
	}
	return c.JSON(dto.NewBookingResponses(bookings))
}

// Manage returns incoming requests across the caller's properties.
func (h *BookingHandler) Manage(c *fiber.Ctx) error {
	userID := currentUser(c)
	if userID == uuid.Nil {
		return unauthorized(c)
	}
	bookings, err := h.bookings.ListForLandlord(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err, "booking.manage")
	}
	return c.JSON(dto.NewBookingResponses(bookings))
}

func (h *BookingHandler) Create(c *fiber.Ctx) error {
	userID := currentUser(c)
	if userID == uuid.Nil {
		return unauthorized(c)
	}
	var req dto.CreateBookingRequest
	if msg := bindBody(c, &req); msg != "" {
		return fail(c, fiber.StatusBadRequest, msg)
	}
	moveIn, err := time.Parse("2006-01-02", req.MoveInDate)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "move_in_date must be YYYY-MM-DD")
	}

	booking, err := h.bookings.Create(c.UserContext(), services.CreateBookingInput{
		PropertyID: req.Property,
		RoomID:     req.Room,
		StudentID:  userID,
		MoveInDate: moveIn,
		Message:    req.Message,
	})
	if err != nil {
		return writeError(c, err, "booking.create")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewBookingResponse(booking))
}

func (h *BookingHandler) UpdateStatus(c *fiber.Ctx) error {
	userID := currentUser(c)
	if userID == uuid.Nil {
		return unauthorized(c)
	}
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid booking id")
	}
	var req dto.UpdateBookingStatusRequest
	if msg := bindBody(c, &req); msg != "" {
		return fail(c, fiber.StatusBadRequest, msg)
	}

	booking, err := h.bookings.UpdateStatus(c.UserContext(), id, req.Status, userID)
	if err != nil {
		return writeError(c, err, "booking.update_status")
	}
	return c.JSON(dto.NewBookingResponse(booking))
}

func (h *BookingHandler) Withdraw(c *fiber.Ctx) error {
	userID := currentUser(c)
	if userID == uuid.Nil {
		return unauthorized(c)
	}
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid booking id")
	}
	if err := h.bookings.Withdraw(c.UserContext(), id, userID); err != nil {
		return writeError(c, err, "booking.withdraw")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
