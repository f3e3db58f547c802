package handlers

import (
	"github.com/campus-acc/campus-backend/internal/dto"
	"github.com/campus-acc/campus-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates an account, or upgrades the WhatsApp shadow account that
// holds the same phone number.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if msg := bindBody(c, &req); msg != "" {
		return fail(c, fiber.StatusBadRequest, msg)
	}

	resp, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		return writeError(c, err, "auth.register")
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if msg := bindBody(c, &req); msg != "" {
		return fail(c, fiber.StatusBadRequest, msg)
	}

	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return writeError(c, err, "auth.login")
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if msg := bindBody(c, &req); msg != "" {
		return fail(c, fiber.StatusBadRequest, msg)
	}

	resp, err := h.authService.Refresh(c.UserContext(), &req)
	if err != nil {
		return writeError(c, err, "auth.refresh")
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if msg := bindBody(c, &req); msg != "" {
		return fail(c, fiber.StatusBadRequest, msg)
	}

	if err := h.authService.Logout(c.UserContext(), &req); err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to logout")
	}
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func (h *AuthHandler) DeleteAccount(c *fiber.Ctx) error {
	userID := currentUser(c)
	if userID == uuid.Nil {
		return unauthorized(c)
	}

	var req dto.DeleteAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := h.authService.DeleteAccount(c.UserContext(), userID, req.Password); err != nil {
		return writeError(c, err, "auth.delete_account")
	}
	return c.JSON(fiber.Map{"message": "Account deleted successfully"})
}
