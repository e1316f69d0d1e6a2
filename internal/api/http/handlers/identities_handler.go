package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lead-service/internal/access"
	"github.com/spec-kit/lead-service/internal/api/dto"
	"github.com/spec-kit/lead-service/internal/auth"
	"github.com/spec-kit/lead-service/internal/domain"
	"github.com/spec-kit/lead-service/internal/repository"
	"github.com/spec-kit/lead-service/internal/service"
	apperrors "github.com/spec-kit/lead-service/pkg/util"
)

// IdentitiesHandler manages admin and user profile endpoints.
type IdentitiesHandler struct {
	service *service.IdentityService
}

// NewIdentitiesHandler constructs handler.
func NewIdentitiesHandler(identityService *service.IdentityService) *IdentitiesHandler {
	return &IdentitiesHandler{service: identityService}
}

// ListAdmins GET /admins.
func (h *IdentitiesHandler) ListAdmins(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	identities, err := h.service.ListAdmins(c.Context(), principal.Actor(), parseIdentityQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponses(identities)})
}

// ListUsers GET /users.
func (h *IdentitiesHandler) ListUsers(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	identities, err := h.service.ListUsers(c.Context(), principal.Actor(), parseIdentityQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponses(identities)})
}

// GetProfile GET /admins/:id and /users/:id. The service resolves the
// row's actual role, so a user id requested under /admins still gets
// the user-profile rules.
func (h *IdentitiesHandler) GetProfile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	identity, err := h.service.Get(c.Context(), principal.Actor(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProfileResponse(identity)})
}

// CreateAdmin POST /admins.
func (h *IdentitiesHandler) CreateAdmin(c *fiber.Ctx) error {
	return h.create(c, h.service.CreateAdmin)
}

// CreateUser POST /users.
func (h *IdentitiesHandler) CreateUser(c *fiber.Ctx) error {
	return h.create(c, h.service.CreateUser)
}

func (h *IdentitiesHandler) create(c *fiber.Ctx, createProfile func(ctx context.Context, actor access.Actor, input service.IdentityCreateInput) (*domain.Identity, error)) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	identity, err := createProfile(c.Context(), principal.Actor(), service.IdentityCreateInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
		Gender:    req.Gender,
		Address:   req.Address,
		CompanyID: req.CompanyID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewProfileResponse(identity)})
}

// UpdateProfile PUT /admins/:id and /users/:id.
func (h *IdentitiesHandler) UpdateProfile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	identity, err := h.service.Update(c.Context(), principal.Actor(), c.Params("id"), service.IdentityUpdateInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Gender:  req.Gender,
		Address: req.Address,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProfileResponse(identity)})
}

// DeleteProfile DELETE /admins/:id and /users/:id.
func (h *IdentitiesHandler) DeleteProfile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.Delete(c.Context(), principal.Actor(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parseIdentityQuery(c *fiber.Ctx) repository.IdentityFilter {
	filter := repository.IdentityFilter{}
	if term := strings.TrimSpace(c.Query("search")); term != "" {
		filter.SearchTerm = &term
	}
	filter.Limit, filter.Offset = parsePagination(c)
	return filter
}

func profileResponses(identities []domain.Identity) []dto.ProfileResponse {
	items := make([]dto.ProfileResponse, 0, len(identities))
	for i := range identities {
		items = append(items, dto.NewProfileResponse(&identities[i]))
	}
	return items
}
