package handlers

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/campus-acc/campus-backend/internal/dto"
	"github.com/campus-acc/campus-backend/internal/middleware"
	"github.com/campus-acc/campus-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

// writeError maps service errors onto HTTP statuses. Unknown errors are
// logged and reported as a generic 500.
func writeError(c *fiber.Ctx, err error, action string) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return fail(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrForbidden):
		return fail(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrConflict):
		return fail(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalid):
		return fail(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInvalidToken):
		return fail(c, fiber.StatusUnauthorized, err.Error())
	}
	slog.Error("request failed", "action", action, "path", c.Path(), "error", err.Error())
	return fail(c, fiber.StatusInternalServerError, "Internal server error")
}

// bindBody decodes and validates a request body, returning the message to
// send back when it is unusable.
func bindBody(c *fiber.Ctx, req interface{}) string {
	if err := c.BodyParser(req); err != nil {
		return "Invalid request body"
	}
	if err := dto.Validate(req); err != nil {
		return err.Error()
	}
	return ""
}

func unauthorized(c *fiber.Ctx) error {
	return fail(c, fiber.StatusUnauthorized, "Unauthorized")
}

// currentUser returns the authenticated user id, or uuid.Nil for anonymous
// requests.
func currentUser(c *fiber.Ctx) uuid.UUID {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return uuid.Nil
	}
	return userID
}

func idParam(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
