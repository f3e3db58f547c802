package handlers

import (
	"strconv"

	"github.com/campus-acc/campus-backend/internal/dto"
	"github.com/campus-acc/campus-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ModerationHandler struct {
	moderationService *services.ModerationService
	reviewService     *services.ReviewService
}

func NewModerationHandler(moderationService *services.ModerationService, reviewService *services.ReviewService) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService, reviewService: reviewService}
}

func (h *ModerationHandler) CreateReport(c *fiber.Ctx) error {
	userID := currentUser(c)
	if userID == uuid.Nil {
		return unauthorized(c)
	}
	propertyID, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid property id")
	}
	var req dto.CreateReportRequest
	if msg := bindBody(c, &req); msg != "" {
		return fail(c, fiber.StatusBadRequest, msg)
	}

	report, err := h.moderationService.CreateReport(c.UserContext(), userID, propertyID, &req)
	if err != nil {
		return writeError(c, err, "report.create")
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

func (h *ModerationHandler) CreateReview(c *fiber.Ctx) error {
	userID := currentUser(c)
	if userID == uuid.Nil {
		return unauthorized(c)
	}
	propertyID, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid property id")
	}
	var req dto.CreateReviewRequest
	if msg := bindBody(c, &req); msg != "" {
		return fail(c, fiber.StatusBadRequest, msg)
	}

	review, err := h.reviewService.Create(c.UserContext(), userID, propertyID, &req)
	if err != nil {
		return writeError(c, err, "review.create")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ReviewResponse{
		ID:        review.ID.String(),
		User:      review.User.Username,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	})
}

func (h *ModerationHandler) ListReports(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	var resolved *bool
	if raw := c.Query("resolved"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "resolved must be true or false")
		}
		resolved = &v
	}

	reports, total, err := h.moderationService.ListReports(c.UserContext(), resolved, limit, offset)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to fetch reports")
	}

	return c.JSON(fiber.Map{
		"reports": reports,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

func (h *ModerationHandler) ResolveReport(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid report ID")
	}
	var req dto.ResolveReportRequest
	if msg := bindBody(c, &req); msg != "" {
		return fail(c, fiber.StatusBadRequest, msg)
	}

	report, err := h.moderationService.ResolveReport(c.UserContext(), reportID, &req)
	if err != nil {
		return writeError(c, err, "report.resolve")
	}
	return c.JSON(report)
}
