package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/campus-acc/campus-backend/internal/config"
	"github.com/campus-acc/campus-backend/internal/handlers"
	"github.com/campus-acc/campus-backend/internal/services"
	"github.com/campus-acc/campus-backend/internal/testutil"
	"github.com/campus-acc/campus-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type testServer struct {
	app *fiber.App
	db  *gorm.DB
	t   *testing.T
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithWebhookAuth(t, handlers.WebhookAuth{})
}

func newTestServerWithWebhookAuth(t *testing.T, auth handlers.WebhookAuth) *testServer {
	t.Helper()
	db := testutil.OpenDB(t)
	cfg := &config.Config{
		JWTSecret:        "route-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: time.Hour,
		AdminToken:       "admin-secret",
	}

	identity := services.NewIdentityService(db)
	filter := services.NewContentFilter()
	properties := services.NewPropertyService(db)
	availability := services.NewAvailabilityService(db)
	bookings := services.NewBookingService(db, nil)
	bot := services.NewBotService(identity, properties, availability, bookings, nil, "https://catalog.example")

	app := fiber.New()
	Setup(app, cfg, db, Handlers{
		Auth:       handlers.NewAuthHandler(services.NewAuthService(db, cfg, identity)),
		Profile:    handlers.NewProfileHandler(identity),
		Health:     handlers.NewHealthHandler(func() error { return nil }),
		Property:   handlers.NewPropertyHandler(properties, availability, services.NewFavoriteService(db)),
		Booking:    handlers.NewBookingHandler(bookings),
		Moderation: handlers.NewModerationHandler(services.NewModerationService(db, filter), services.NewReviewService(db, filter)),
		Bot:        handlers.NewBotHandler(bot, nil, auth),
	})
	return &testServer{app: app, db: db, t: t}
}

func (s *testServer) do(method, path, token string, body interface{}) (int, map[string]interface{}) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		s.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	out := map[string]interface{}{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return resp.StatusCode, out
}

func (s *testServer) register(username, role string) string {
	s.t.Helper()
	status, body := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username, "password": "password123", "role": role,
	})
	if status != fiber.StatusCreated {
		s.t.Fatalf("register %s: status %d body %v", username, status, body)
	}
	return body["access_token"].(string)
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	landlord := s.register("landlord", "landlord")
	student := s.register("student", "student")

	status, property := s.do(http.MethodPost, "/api/properties", landlord, map[string]interface{}{
		"title": "Garden Cottage", "price_per_month": 120,
	})
	if status != fiber.StatusCreated {
		t.Fatalf("create property: %d %v", status, property)
	}
	propertyID := property["id"].(float64)

	if status, _ := s.do(http.MethodPost, "/api/properties", student, map[string]interface{}{
		"title": "Nope", "price_per_month": 10,
	}); status != fiber.StatusForbidden {
		t.Errorf("student create property status = %d, want 403", status)
	}

	status, booking := s.do(http.MethodPost, "/api/bookings", student, map[string]interface{}{
		"property": propertyID, "move_in_date": "2026-02-01", "message": "Keen",
	})
	if status != fiber.StatusCreated || booking["status"] != "pending" {
		t.Fatalf("create booking: %d %v", status, booking)
	}
	bookingPath := fmt.Sprintf("/api/bookings/%d", int(booking["id"].(float64)))

	if status, _ := s.do(http.MethodPatch, bookingPath, student, map[string]string{"status": "accepted"}); status != fiber.StatusOK {
		t.Errorf("student patch status = %d, want 200", status)
	}
	status, list := s.do(http.MethodGet, "/api/bookings", student, nil)
	if status != fiber.StatusOK {
		t.Errorf("list bookings: %d %v", status, list)
	}

	status, updated := s.do(http.MethodPatch, bookingPath, landlord, map[string]string{"status": "accepted"})
	if status != fiber.StatusOK || updated["status"] != "accepted" {
		t.Fatalf("landlord accept: %d %v", status, updated)
	}
	if status, _ := s.do(http.MethodPatch, bookingPath, landlord, map[string]string{"status": "rejected"}); status != fiber.StatusConflict {
		t.Errorf("re-decide status = %d, want 409", status)
	}
	if status, _ := s.do(http.MethodPatch, bookingPath, landlord, map[string]string{"status": "maybe"}); status != fiber.StatusBadRequest {
		t.Errorf("bogus status = %d, want 400", status)
	}
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t)
	landlord := s.register("owner", "landlord")
	student := s.register("visitor", "student")

	_, property := s.do(http.MethodPost, "/api/properties", landlord, map[string]interface{}{
		"title": "Flat", "price_per_month": 90,
	})
	togglePath := fmt.Sprintf("/api/properties/%d/toggle", int(property["id"].(float64)))

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"anonymous bookings", http.MethodGet, "/api/bookings", "", fiber.StatusUnauthorized},
		{"bad token", http.MethodGet, "/api/properties", "garbage", fiber.StatusUnauthorized},
		{"anonymous listing", http.MethodGet, "/api/properties", "", fiber.StatusOK},
		{"missing property", http.MethodGet, "/api/properties/999", "", fiber.StatusNotFound},
		{"non-numeric id", http.MethodGet, "/api/properties/abc", "", fiber.StatusBadRequest},
		{"toggle by non-owner", http.MethodPost, togglePath, student, fiber.StatusForbidden},
		{"toggle by owner", http.MethodPost, togglePath, landlord, fiber.StatusOK},
		{"admin without rights", http.MethodGet, "/api/admin/reports", student, fiber.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if status, body := s.do(tt.method, tt.path, tt.token, nil); status != tt.want {
				t.Errorf("status = %d, want %d (%v)", status, tt.want, body)
			}
		})
	}
}

func TestAdminTokenHeader(t *testing.T) {
	s := newTestServer(t)
	student := s.register("reader", "student")

	req := httptest.NewRequest(http.MethodGet, "/api/admin/reports?resolved=false", nil)
	req.Header.Set("Authorization", "Bearer "+student)
	req.Header.Set("X-Admin-Token", "admin-secret")
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestWhatsAppWebhookAnswersTwiML(t *testing.T) {
	s := newTestServer(t)

	form := url.Values{"From": {"whatsapp:+263771110000"}, "Body": {"Hi"}, "MessageSid": {"SM1"}}
	req := httptest.NewRequest(http.MethodPost, "/api/bot/whatsapp", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "xml") {
		t.Errorf("content type = %q", resp.Header.Get("Content-Type"))
	}
	if !strings.Contains(string(raw), "<Message>") || !strings.Contains(string(raw), "budget") {
		t.Errorf("body = %s", raw)
	}
}

func TestWhatsAppWebhookAnswersJSON(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(http.MethodPost, "/api/bot/whatsapp", "", map[string]string{
		"from": "+263771110001", "body": "what is this",
	})
	if status != fiber.StatusOK {
		t.Fatalf("status = %d", status)
	}
	reply, _ := body["reply"].(string)
	if !strings.Contains(reply, "UPDATE") {
		t.Errorf("reply = %q, want fallback", reply)
	}
}

func (s *testServer) postWebhook(form url.Values, signature string) (int, string) {
	s.t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/bot/whatsapp", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if signature != "" {
		req.Header.Set("X-Twilio-Signature", signature)
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		s.t.Fatalf("webhook: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(raw)
}

func TestWebhookNotLimitedAcrossSenders(t *testing.T) {
	s := newTestServer(t)

	for i := 1; i <= 70; i++ {
		form := url.Values{"From": {fmt.Sprintf("whatsapp:+26377100%04d", i)}, "Body": {"hi"}}
		status, body := s.postWebhook(form, "")
		if status != fiber.StatusOK || !strings.Contains(body, "<Message>") {
			t.Fatalf("message #%d: status %d body %s", i, status, body)
		}
	}

	// Webhook traffic does not count against the per-IP API limit.
	if status, _ := s.do(http.MethodGet, "/api/health", "", nil); status != fiber.StatusOK {
		t.Errorf("health after webhook burst = %d, want 200", status)
	}
}

func TestWebhookThrottlesOneSenderWithReply(t *testing.T) {
	s := newTestServer(t)
	form := url.Values{"From": {"whatsapp:+263771119999"}, "Body": {"hi"}}

	for i := 1; i <= 20; i++ {
		if status, _ := s.postWebhook(form, ""); status != fiber.StatusOK {
			t.Fatalf("message #%d: status %d", i, status)
		}
	}
	status, body := s.postWebhook(form, "")
	if status != fiber.StatusOK || !strings.Contains(body, "too quickly") {
		t.Errorf("throttled reply: status %d body %s", status, body)
	}

	other := url.Values{"From": {"whatsapp:+263771118888"}, "Body": {"hi"}}
	if status, body := s.postWebhook(other, ""); status != fiber.StatusOK || strings.Contains(body, "too quickly") {
		t.Errorf("other sender: status %d body %s", status, body)
	}
}

func TestUnsignedWebhookCannotToggleListing(t *testing.T) {
	s := newTestServerWithWebhookAuth(t, handlers.WebhookAuth{AuthToken: "twilio-token"})
	landlord := testutil.CreateUser(t, s.db, "landlord", models.RoleLandlord, "+263771234567")
	property := testutil.CreateProperty(t, s.db, landlord.ID, "Flat", 100)

	form := url.Values{"From": {"whatsapp:+263771234567"}, "Body": {fmt.Sprintf("toggle %d", property.ID)}}
	if status, body := s.postWebhook(form, ""); status != fiber.StatusForbidden {
		t.Errorf("unsigned toggle: status %d body %s", status, body)
	}
	if status, _ := s.postWebhook(form, "bm90LWEtc2lnbmF0dXJl"); status != fiber.StatusForbidden {
		t.Errorf("forged toggle: status %d", status)
	}

	var reloaded models.Property
	if err := s.db.First(&reloaded, property.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.IsAvailable {
		t.Error("listing was toggled by an unsigned request")
	}
}
