package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/campus-acc/campus-backend/internal/config"
	"github.com/gofiber/fiber/v2"
)

func preflight(t *testing.T, origins, origin string) *http.Response {
	t.Helper()
	app := fiber.New()
	app.Use(CORS(&config.Config{CORSOrigins: origins}))
	app.Get("/api/properties", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api/properties", nil)
	req.Header.Set(fiber.HeaderOrigin, origin)
	req.Header.Set(fiber.HeaderAccessControlRequestMethod, http.MethodGet)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	return resp
}

func TestCORSPreflight(t *testing.T) {
	tests := []struct {
		name            string
		origins         string
		origin          string
		wantOrigin      string
		wantCredentials string
	}{
		{"wildcard", "*", "https://anywhere.example", "*", ""},
		{"empty falls back to wildcard", "", "https://anywhere.example", "*", ""},
		{"listed origin", "https://campus-acc.vercel.app", "https://campus-acc.vercel.app", "https://campus-acc.vercel.app", "true"},
		{"unlisted origin", "https://campus-acc.vercel.app", "https://evil.example", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := preflight(t, tt.origins, tt.origin)
			if got := resp.Header.Get(fiber.HeaderAccessControlAllowOrigin); got != tt.wantOrigin {
				t.Errorf("allow origin = %q, want %q", got, tt.wantOrigin)
			}
			if got := resp.Header.Get(fiber.HeaderAccessControlAllowCredentials); got != tt.wantCredentials {
				t.Errorf("allow credentials = %q, want %q", got, tt.wantCredentials)
			}
			if tt.wantOrigin != "" && !strings.Contains(resp.Header.Get(fiber.HeaderAccessControlAllowHeaders), "X-Admin-Token") {
				t.Errorf("allow headers = %q", resp.Header.Get(fiber.HeaderAccessControlAllowHeaders))
			}
		})
	}
}
