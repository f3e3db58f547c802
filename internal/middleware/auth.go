package middleware

import (
	"errors"
	"strings"

	"github.com/campus-acc/campus-backend/internal/config"
	"github.com/campus-acc/campus-backend/internal/dto"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	})
}

// OptionalJWT verifies a bearer token when one is sent and lets anonymous
// requests through. A bad token is still rejected.
func OptionalJWT(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		Filter: func(c *fiber.Ctx) bool {
			return !strings.HasPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	})
}

// CurrentUserID returns the authenticated user, or uuid.Nil and an error for
// anonymous requests.
func CurrentUserID(c *fiber.Ctx) (uuid.UUID, error) {
	claims, ok := currentClaims(c)
	if !ok {
		return uuid.Nil, errors.New("no token in context")
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}
	return uuid.Parse(sub)
}

func currentClaims(c *fiber.Ctx) (jwt.MapClaims, bool) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return nil, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	return claims, ok
}
