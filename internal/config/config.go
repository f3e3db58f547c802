package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Admin
	AdminEmails string
	AdminToken  string

	// Server
	Port        string
	CORSOrigins string
	Env         string

	// Public web app, linked from bot replies
	CatalogURL string

	// Email (SMTP)
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	// WhatsApp via Twilio
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioWhatsAppFrom string
	TwilioWebhookURL   string

	// Booking events
	KafkaBrokers []string
	KafkaTopic   string

	// Webhook de-duplication
	RedisURL       string
	DedupWindow    time.Duration
	LogRetention   int
	SentryDSN      string
	SentrySampling float64
}

// Load reads configuration from the environment. Outside production a local
// .env file is loaded first; a missing file is not an error.
func Load() *Config {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			slog.Warn("could not load .env file", "error", err)
		}
	}

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "campus_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),

		AdminEmails: getEnv("ADMIN_EMAILS", ""),
		AdminToken:  getEnv("ADMIN_TOKEN", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		Env:         getEnv("APP_ENV", "development"),

		CatalogURL: getEnv("CATALOG_URL", "https://campus-acc.vercel.app"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		MailFrom:     getEnv("MAIL_FROM", "no-reply@campus-acc.app"),

		TwilioAccountSID:   getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:    getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioWhatsAppFrom: getEnv("TWILIO_WHATSAPP_FROM", ""),
		TwilioWebhookURL:   getEnv("TWILIO_WEBHOOK_URL", ""),

		KafkaBrokers: splitCSV(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "booking-events"),

		RedisURL:       getEnv("REDIS_URL", ""),
		DedupWindow:    parseDuration(getEnv("BOT_DEDUP_WINDOW", "10m"), 10*time.Minute),
		LogRetention:   parseInt(getEnv("LOG_RETENTION_DAYS", "30"), 30),
		SentryDSN:      getEnv("SENTRY_DSN", ""),
		SentrySampling: parseFloat(getEnv("SENTRY_TRACES_SAMPLE_RATE", "0.2"), 0.2),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

func (c *Config) WhatsAppEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioWhatsAppFrom != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func parseFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return f
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
