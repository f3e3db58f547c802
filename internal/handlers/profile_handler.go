package handlers

import (
	"github.com/campus-acc/campus-backend/internal/dto"
	"github.com/campus-acc/campus-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ProfileHandler struct {
	identity *services.IdentityService
}

func NewProfileHandler(identity *services.IdentityService) *ProfileHandler {
	return &ProfileHandler{identity: identity}
}

func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	userID := currentUser(c)
	if userID == uuid.Nil {
		return unauthorized(c)
	}
	user, err := h.identity.GetUser(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err, "profile.get")
	}
	return c.JSON(dto.NewProfileResponse(user))
}

func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	userID := currentUser(c)
	if userID == uuid.Nil {
		return unauthorized(c)
	}
	var req dto.UpdateProfileRequest
	if msg := bindBody(c, &req); msg != "" {
		return fail(c, fiber.StatusBadRequest, msg)
	}
	user, err := h.identity.UpdateProfile(c.UserContext(), userID, &req)
	if err != nil {
		return writeError(c, err, "profile.update")
	}
	return c.JSON(dto.NewProfileResponse(user))
}
