package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/deskforge/helpdesk/internal/api/dto"
	"github.com/deskforge/helpdesk/internal/auth"
	"github.com/deskforge/helpdesk/internal/service"
	apperrors "github.com/deskforge/helpdesk/pkg/util"
)

// StaffTicketsHandler covers staff-only ticket operations.
type StaffTicketsHandler struct {
	tickets *service.TicketService
	sweeper *service.SweeperService
}

// NewStaffTicketsHandler constructs handler.
func NewStaffTicketsHandler(tickets *service.TicketService, sweeper *service.SweeperService) *StaffTicketsHandler {
	return &StaffTicketsHandler{tickets: tickets, sweeper: sweeper}
}

// AssignTicket POST /staff/tickets/:id/assign.
func (h *StaffTicketsHandler) AssignTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.AssigneeID == "" {
		return apperrors.NewValidationError("assignee_id required", nil)
	}
	ticket, err := h.tickets.Assign(c.UserContext(), principal.User, c.Params("id"), req.AssigneeID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// SweepIdleResolved POST /admin/tickets/sweep. Closes the tenant's idle
// resolved tickets immediately instead of waiting for the schedule.
func (h *StaffTicketsHandler) SweepIdleResolved(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	tenantID := principal.User.TenantID
	closed, err := h.sweeper.SweepIdleResolved(c.UserContext(), &tenantID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"closed": closed}})
}
