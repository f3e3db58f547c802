package middleware

import (
	"strings"

	"github.com/campus-acc/campus-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// corsHeaders are the request headers the web catalog and admin console send.
var corsHeaders = []string{
	fiber.HeaderOrigin,
	fiber.HeaderContentType,
	fiber.HeaderAccept,
	fiber.HeaderAuthorization,
	"X-Admin-Token",
}

// CORS admits the configured web origins. Credentials are only allowed for an
// explicit origin list; a wildcard stays anonymous.
func CORS(cfg *config.Config) fiber.Handler {
	origins := strings.TrimSpace(cfg.CORSOrigins)
	if origins == "" {
		origins = "*"
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     strings.Join(corsHeaders, ", "),
		AllowMethods:     "GET, POST, PUT, DELETE, PATCH, OPTIONS",
		ExposeHeaders:    fiber.HeaderXRequestID + ", " + fiber.HeaderRetryAfter,
		AllowCredentials: origins != "*",
		MaxAge:           600,
	})
}
