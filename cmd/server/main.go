package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/campus-acc/campus-backend/internal/cache"
	"github.com/campus-acc/campus-backend/internal/config"
	"github.com/campus-acc/campus-backend/internal/database"
	"github.com/campus-acc/campus-backend/internal/handlers"
	"github.com/campus-acc/campus-backend/internal/logging"
	"github.com/campus-acc/campus-backend/internal/middleware"
	"github.com/campus-acc/campus-backend/internal/notify"
	"github.com/campus-acc/campus-backend/internal/routes"
	"github.com/campus-acc/campus-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	logging.Setup(cfg.Env)

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.NewStdoutHandler(cfg.Env),
		pgLogHandler,
	)))

	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cfg.LogRetention, cleanupDone)

	// Notification channels, each optional
	var (
		mailer   notify.Mailer
		whatsapp notify.MessageSender
		events   notify.EventPublisher
		kafka    *notify.KafkaPublisher
	)
	if cfg.SMTPEnabled() {
		mailer = notify.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
	} else {
		slog.Warn("SMTP not configured, email notifications disabled")
	}
	if cfg.WhatsAppEnabled() {
		whatsapp = notify.NewWhatsAppSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppFrom)
	} else {
		slog.Warn("Twilio not configured, WhatsApp notifications disabled")
	}
	if len(cfg.KafkaBrokers) > 0 {
		kafka = notify.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		events = kafka
	}
	dispatcher := notify.NewDispatcher(mailer, whatsapp, events)

	var deduper *cache.MessageDeduper
	if cfg.RedisURL != "" {
		deduper = cache.NewMessageDeduper(cfg.RedisURL, cfg.DedupWindow)
	}

	if cfg.TwilioAuthToken == "" {
		slog.Warn("TWILIO_AUTH_TOKEN not set, bot webhook signatures are not verified")
	}

	// Services
	filter := services.NewContentFilter()
	identityService := services.NewIdentityService(database.DB)
	authService := services.NewAuthService(database.DB, cfg, identityService)
	propertyService := services.NewPropertyService(database.DB)
	availabilityService := services.NewAvailabilityService(database.DB)
	favoriteService := services.NewFavoriteService(database.DB)
	reviewService := services.NewReviewService(database.DB, filter)
	moderationService := services.NewModerationService(database.DB, filter)
	bookingService := services.NewBookingService(database.DB, dispatcher)
	botService := services.NewBotService(identityService, propertyService, availabilityService,
		bookingService, dispatcher, cfg.CatalogURL)

	// Handlers
	h := routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		Profile:    handlers.NewProfileHandler(identityService),
		Health:     handlers.NewHealthHandler(database.Ping),
		Property:   handlers.NewPropertyHandler(propertyService, availabilityService, favoriteService),
		Booking:    handlers.NewBookingHandler(bookingService),
		Moderation: handlers.NewModerationHandler(moderationService, reviewService),
		Bot: handlers.NewBotHandler(botService, dedupeOrNil(deduper), handlers.WebhookAuth{
			AuthToken: cfg.TwilioAuthToken,
			PublicURL: cfg.TwilioWebhookURL,
		}),
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: cfg.SentrySampling,
			Environment:      cfg.Env,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	routes.Setup(app, cfg, database.DB, h)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	pgLogHandler.Stop()
	if kafka != nil {
		if err := kafka.Close(); err != nil {
			slog.Error("kafka close error", "error", err)
		}
	}
	if err := deduper.Close(); err != nil {
		slog.Error("redis close error", "error", err)
	}
	sentry.Flush(2 * time.Second)

	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

// dedupeOrNil keeps a nil *MessageDeduper from becoming a non-nil interface.
func dedupeOrNil(d *cache.MessageDeduper) handlers.Deduper {
	if d == nil {
		return nil
	}
	return d
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
