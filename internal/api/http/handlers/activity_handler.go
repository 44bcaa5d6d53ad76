package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/query"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// activityDefaultLimit applies when the request names no limit. The
// trail grows quickly, so the window is wider than the ticket default.
const activityDefaultLimit = "50"

// ActivityHandler exposes the audit trail.
type ActivityHandler struct {
	service *service.ActivityService
}

// NewActivityHandler constructs handler.
func NewActivityHandler(activityService *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: activityService}
}

// List GET /activity.
func (h *ActivityHandler) List(c *fiber.Ctx) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	limit := c.Query("limit")
	if limit == "" {
		limit = activityDefaultLimit
	}
	params := service.ActivityListParams{
		User:  c.Query("user"),
		Page:  c.Query("page"),
		Limit: limit,
	}
	entries, total, err := h.service.List(c.UserContext(), caller, params)
	if err != nil {
		return err
	}

	page := query.NormalizePage(params.Page, params.Limit)
	return c.JSON(dto.ActivityListResponse{
		Data:       dto.ActivitiesFromDomain(entries),
		Pagination: query.ShapePage(total, page),
	})
}
