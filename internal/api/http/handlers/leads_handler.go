package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lead-service/internal/access"
	"github.com/spec-kit/lead-service/internal/api/dto"
	"github.com/spec-kit/lead-service/internal/auth"
	"github.com/spec-kit/lead-service/internal/domain"
	"github.com/spec-kit/lead-service/internal/service"
	apperrors "github.com/spec-kit/lead-service/pkg/util"
)

// LeadsHandler manages lead endpoints, including the my-leads and
// my-work sub-views.
type LeadsHandler struct {
	service *service.LeadService
}

// NewLeadsHandler constructs handler.
func NewLeadsHandler(leadService *service.LeadService) *LeadsHandler {
	return &LeadsHandler{service: leadService}
}

// ListLeads GET /leads.
func (h *LeadsHandler) ListLeads(c *fiber.Ctx) error {
	return h.list(c, access.ScopeAll)
}

// ListMyLeads GET /leads/my-leads. Leads the caller created.
func (h *LeadsHandler) ListMyLeads(c *fiber.Ctx) error {
	return h.list(c, access.ScopeOwnedByMe)
}

// ListMyWork GET /leads/my-work. Leads assigned to the caller.
func (h *LeadsHandler) ListMyWork(c *fiber.Ctx) error {
	return h.list(c, access.ScopeAssignedToMe)
}

func (h *LeadsHandler) list(c *fiber.Ctx, sub access.SubScope) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	leads, err := h.service.List(c.Context(), principal.Actor(), sub, parseLeadQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.LeadResponse, 0, len(leads))
	for i := range leads {
		items = append(items, dto.NewLeadResponse(&leads[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetLead GET /leads/:id.
func (h *LeadsHandler) GetLead(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	lead, err := h.service.Get(c.Context(), principal.Actor(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewLeadResponse(lead)})
}

// CreateLead POST /leads.
func (h *LeadsHandler) CreateLead(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	lead, err := h.service.Create(c.Context(), principal.Actor(), service.LeadCreateInput{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Status:     req.Status,
		Location:   req.Location,
		Note:       req.Note,
		AssignedID: req.AssignedID,
		CompanyID:  req.CompanyID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewLeadResponse(lead)})
}

// UpdateLead PUT /leads/:id.
func (h *LeadsHandler) UpdateLead(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	lead, err := h.service.Update(c.Context(), principal.Actor(), c.Params("id"), service.LeadUpdateInput{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Status:     req.Status,
		Location:   req.Location,
		Note:       req.Note,
		AssignedID: req.AssignedID,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewLeadResponse(lead)})
}

// DeleteLead DELETE /leads/:id.
func (h *LeadsHandler) DeleteLead(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.Delete(c.Context(), principal.Actor(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parseLeadQuery(c *fiber.Ctx) service.LeadListFilter {
	filter := service.LeadListFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			if status, err := domain.ParseLeadStatus(strings.TrimSpace(part)); err == nil {
				filter.Statuses = append(filter.Statuses, status)
			}
		}
	}
	if term := strings.TrimSpace(c.Query("search")); term != "" {
		filter.SearchTerm = &term
	}
	filter.Limit, filter.Offset = parsePagination(c)
	return filter
}
