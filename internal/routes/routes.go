package routes

import (
	"encoding/json"
	"time"

	"github.com/campus-acc/campus-backend/internal/config"
	"github.com/campus-acc/campus-backend/internal/handlers"
	"github.com/campus-acc/campus-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Profile    *handlers.ProfileHandler
	Health     *handlers.HealthHandler
	Property   *handlers.PropertyHandler
	Booking    *handlers.BookingHandler
	Moderation *handlers.ModerationHandler
	Bot        *handlers.BotHandler
}

const botWebhookPath = "/api/bot/whatsapp"

func Setup(app *fiber.App, cfg *config.Config, db *gorm.DB, h Handlers) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP. Webhook deliveries all
	// come from the provider's addresses and are limited per sender instead.
	api.Use(limiter.New(limiter.Config{
		Next:              func(c *fiber.Ctx) bool { return c.Path() == botWebhookPath },
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", h.Health.Check)

	// Auth-specific rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)

	protected := middleware.JWTProtected(cfg)
	optional := middleware.OptionalJWT(cfg)

	api.Post("/auth/logout", protected, h.Auth.Logout)
	api.Delete("/auth/account", protected, h.Auth.DeleteAccount)

	api.Get("/user/info", protected, h.Profile.Get)
	api.Patch("/user/info", protected, h.Profile.Update)

	// Static segments are registered before /:id.
	properties := api.Group("/properties")
	properties.Get("/", optional, h.Property.List)
	properties.Get("/my_listings", protected, h.Property.MyListings)
	properties.Get("/favorites", protected, h.Property.Favorites)
	properties.Post("/", protected, h.Property.Create)
	properties.Get("/:id", optional, h.Property.Get)
	properties.Patch("/:id", protected, h.Property.Update)
	properties.Delete("/:id", protected, h.Property.Delete)
	properties.Post("/:id/toggle", protected, h.Property.Toggle)
	properties.Post("/:id/rooms", protected, h.Property.AddRoom)
	properties.Post("/:id/images", protected, h.Property.AddImage)
	properties.Post("/:id/review", protected, h.Moderation.CreateReview)
	properties.Post("/:id/favorite", protected, h.Property.AddFavorite)
	properties.Delete("/:id/favorite", protected, h.Property.RemoveFavorite)
	properties.Post("/:id/report", protected, h.Moderation.CreateReport)

	api.Post("/rooms/:id/toggle", protected, h.Property.ToggleRoom)

	bookings := api.Group("/bookings", protected)
	bookings.Get("/", h.Booking.List)
	bookings.Get("/manage", h.Booking.Manage)
	bookings.Post("/", h.Booking.Create)
	bookings.Patch("/:id", h.Booking.UpdateStatus)
	bookings.Delete("/:id", h.Booking.Withdraw)

	admin := api.Group("/admin", protected, middleware.AdminRequired(db, cfg))
	admin.Get("/reports", h.Moderation.ListReports)
	admin.Put("/reports/:id", h.Moderation.ResolveReport)

	// WhatsApp webhook: Twilio-signed, no JWT. 20 messages/min per sender.
	app.Post(botWebhookPath, limiter.New(limiter.Config{
		Max:               20,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      botSender,
		LimitReached:      h.Bot.Throttled,
	}), h.Bot.WhatsApp)
}

// botSender keys the webhook limiter on the sending phone, falling back to
// the client address for bodies without one.
func botSender(c *fiber.Ctx) string {
	from := c.FormValue("From")
	if from == "" {
		var msg struct {
			From string `json:"from"`
		}
		if err := json.Unmarshal(c.Body(), &msg); err == nil {
			from = msg.From
		}
	}
	if from == "" {
		return "bot:ip:" + c.IP()
	}
	return "bot:" + from
}
