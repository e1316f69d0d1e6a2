package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lead-service/internal/access"
	"github.com/spec-kit/lead-service/internal/api/dto"
	"github.com/spec-kit/lead-service/internal/auth"
	"github.com/spec-kit/lead-service/internal/domain"
	"github.com/spec-kit/lead-service/internal/service"
	apperrors "github.com/spec-kit/lead-service/pkg/util"
)

// CommentsHandler manages comment endpoints.
type CommentsHandler struct {
	service *service.CommentService
}

// NewCommentsHandler constructs handler.
func NewCommentsHandler(commentService *service.CommentService) *CommentsHandler {
	return &CommentsHandler{service: commentService}
}

// ListComments GET /comments.
func (h *CommentsHandler) ListComments(c *fiber.Ctx) error {
	return h.list(c, access.ScopeAll)
}

// ListMyComments GET /comments/mine. Comments the caller authored.
func (h *CommentsHandler) ListMyComments(c *fiber.Ctx) error {
	return h.list(c, access.ScopeAuthoredByMe)
}

// ListLeadComments GET /leads/:id/comments.
func (h *CommentsHandler) ListLeadComments(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	leadID := c.Params("id")
	filter := parseCommentQuery(c)
	filter.LeadID = &leadID

	comments, err := h.service.List(c.Context(), principal.Actor(), access.ScopeAll, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": commentResponses(comments)})
}

func (h *CommentsHandler) list(c *fiber.Ctx, sub access.SubScope) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	comments, err := h.service.List(c.Context(), principal.Actor(), sub, parseCommentQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": commentResponses(comments)})
}

// GetComment GET /comments/:id.
func (h *CommentsHandler) GetComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	comment, err := h.service.Get(c.Context(), principal.Actor(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCommentResponse(comment)})
}

// CreateComment POST /comments.
func (h *CommentsHandler) CreateComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.LeadID == "" {
		return apperrors.NewValidationError("lead_id required", nil)
	}

	comment, err := h.service.Create(c.Context(), principal.Actor(), service.CommentCreateInput{
		LeadID: req.LeadID,
		Text:   req.Text,
		Status: req.Status,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewCommentResponse(comment)})
}

// UpdateComment PUT /comments/:id.
func (h *CommentsHandler) UpdateComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	comment, err := h.service.Update(c.Context(), principal.Actor(), c.Params("id"), service.CommentUpdateInput{
		Text:   req.Text,
		Status: req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCommentResponse(comment)})
}

// DeleteComment DELETE /comments/:id.
func (h *CommentsHandler) DeleteComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.Delete(c.Context(), principal.Actor(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parseCommentQuery(c *fiber.Ctx) service.CommentListFilter {
	filter := service.CommentListFilter{}
	filter.Limit, filter.Offset = parsePagination(c)
	return filter
}

func commentResponses(comments []domain.Comment) []dto.CommentResponse {
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, dto.NewCommentResponse(&comments[i]))
	}
	return items
}
