package middleware

import (
	"strings"

	"github.com/campus-acc/campus-backend/internal/config"
	"github.com/campus-acc/campus-backend/internal/dto"
	"github.com/campus-acc/campus-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminRequired admits the X-Admin-Token holder, emails listed in
// ADMIN_EMAILS, and staff users.
func AdminRequired(db *gorm.DB, cfg *config.Config) fiber.Handler {
	adminEmails := parseCSV(cfg.AdminEmails)

	return func(c *fiber.Ctx) error {
		if cfg.AdminToken != "" && c.Get("X-Admin-Token") == cfg.AdminToken {
			return c.Next()
		}

		claims, ok := currentClaims(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		email, _ := claims["email"].(string)
		if email != "" && contains(adminEmails, strings.ToLower(email)) {
			return c.Next()
		}

		if sub, _ := claims["sub"].(string); sub != "" {
			if userID, err := uuid.Parse(sub); err == nil {
				var user models.User
				if err := db.Select("id", "is_staff").First(&user, "id = ?", userID).Error; err == nil && user.IsStaff {
					return c.Next()
				}
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.ToLower(strings.TrimSpace(p)); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
