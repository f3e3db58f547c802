package handlers

import (
	"time"

	"github.com/campus-acc/campus-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// Pinger reports store reachability.
type Pinger func() error

type HealthHandler struct {
	ping Pinger
}

func NewHealthHandler(ping Pinger) *HealthHandler {
	return &HealthHandler{ping: ping}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := h.ping(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
	})
}
