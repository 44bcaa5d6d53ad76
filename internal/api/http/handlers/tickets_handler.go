package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/policy"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// List GET /tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	params := service.TicketListParams{
		Search:        c.Query("search"),
		Status:        c.Query("status"),
		Priority:      c.Query("priority"),
		AssignedAgent: c.Query("assignedAgent"),
		Page:          c.Query("page"),
		Limit:         c.Query("limit"),
	}
	tickets, pageInfo, err := h.service.List(c.UserContext(), caller, params)
	if err != nil {
		return err
	}
	return c.JSON(dto.TicketListResponse{
		Data:       dto.TicketsFromDomain(tickets),
		Pagination: pageInfo,
	})
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.service.Get(c.UserContext(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// Create POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" {
		return apperrors.NewValidationError("title and description required", nil)
	}
	if req.Status != "" && !domain.ValidTicketStatus(req.Status) {
		return apperrors.NewValidationError("invalid status", map[string]any{"status": req.Status})
	}
	if req.Priority != "" && !domain.ValidTicketPriority(req.Priority) {
		return apperrors.NewValidationError("invalid priority", map[string]any{"priority": req.Priority})
	}

	ticket, err := h.service.Create(c.UserContext(), caller, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	}, requestMeta(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// Update PUT /tickets/:id. The body is read as a raw map so that
// non-updatable keys, assignedAgent in particular, are dropped rather
// than rejected.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var body map[string]any
	if err := c.BodyParser(&body); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	patch := policy.WhitelistTicketPatch(body)
	if patch.Status != nil && !domain.ValidTicketStatus(*patch.Status) {
		return apperrors.NewValidationError("invalid status", map[string]any{"status": *patch.Status})
	}
	if patch.Priority != nil && !domain.ValidTicketPriority(*patch.Priority) {
		return apperrors.NewValidationError("invalid priority", map[string]any{"priority": *patch.Priority})
	}

	ticket, err := h.service.Update(c.UserContext(), caller, c.Params("id"), patch, requestMeta(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// Assign PUT /tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.AgentID == "" {
		return apperrors.NewValidationError("agentId required", nil)
	}

	ticket, err := h.service.Assign(c.UserContext(), caller, c.Params("id"), req.AgentID, requestMeta(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// Delete DELETE /tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if _, err := h.service.Delete(c.UserContext(), caller, c.Params("id"), requestMeta(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Ticket deleted successfully"})
}

// Activity GET /tickets/:id/activity.
func (h *TicketsHandler) Activity(c *fiber.Ctx) error {
	entries, err := h.service.ActivityForTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ActivitiesFromDomain(entries)})
}

// requestMeta collects request context worth keeping on audit entries.
func requestMeta(c *fiber.Ctx) service.RequestMeta {
	return service.RequestMeta{
		"method": c.Method(),
		"path":   c.Path(),
		"ip":     c.IP(),
	}
}
