package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/deskforge/helpdesk/internal/auth"
	"github.com/deskforge/helpdesk/internal/service"
	apperrors "github.com/deskforge/helpdesk/pkg/util"
)

// AnalyticsHandler serves the resolution report.
type AnalyticsHandler struct {
	service *service.AnalyticsService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: analyticsService}
}

// GetReport GET /staff/analytics/resolutions?from=2026-01-01&to=2026-03-31&view=MONTHLY.
func (h *AnalyticsHandler) GetReport(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}

	from, err := parseDate(c.Query("from"))
	if err != nil {
		return apperrors.NewValidationError("from must be a YYYY-MM-DD date", nil)
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		return apperrors.NewValidationError("to must be a YYYY-MM-DD date", nil)
	}
	mode, err := service.ParseViewMode(c.Query("view", string(service.ViewModeDaily)))
	if err != nil {
		return err
	}

	report, err := h.service.Report(c.UserContext(), principal.User, service.AnalyticsQuery{
		From: from,
		To:   to,
		Mode: mode,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

func parseDate(val string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", val, time.UTC)
}
