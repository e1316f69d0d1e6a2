package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/spec-kit/lead-service/internal/access"
	"github.com/spec-kit/lead-service/internal/domain"
	"github.com/spec-kit/lead-service/internal/events"
	"github.com/spec-kit/lead-service/internal/observability"
	"github.com/spec-kit/lead-service/internal/repository"
	apperrors "github.com/spec-kit/lead-service/pkg/util"
)

const commentPreviewLength = 120

// CommentService manages status notes on leads. A comment can only be
// attached to a live lead the actor can read, but stays listed after
// its lead is soft-deleted.
type CommentService struct {
	comments   repository.CommentRepository
	leads      repository.LeadRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
}

// CommentDependencies bundles repositories for the comment service.
type CommentDependencies struct {
	CommentRepo repository.CommentRepository
	LeadRepo    repository.LeadRepository
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
}

// CommentCreateInput describes a new comment on a lead.
type CommentCreateInput struct {
	LeadID string
	Text   string
	Status string
}

// CommentUpdateInput describes the mutable comment fields.
type CommentUpdateInput struct {
	Text   string
	Status string
}

// CommentListFilter describes caller-chosen listing refinements.
type CommentListFilter struct {
	LeadID *string
	Limit  int
	Offset int
}

// NewCommentService constructs the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	return &CommentService{
		comments:   deps.CommentRepo,
		leads:      deps.LeadRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
	}
}

// List returns comments within the actor's read scope. ScopeAuthoredByMe
// narrows the feed to the actor's own comments.
func (s *CommentService) List(ctx context.Context, actor access.Actor, sub access.SubScope, filter CommentListFilter) ([]domain.Comment, error) {
	scope, err := access.ReadScope(actor, access.EntityComment, sub)
	if err != nil {
		return nil, apperrors.NewForbidden(err.Error())
	}
	if scope.Denied {
		s.metrics.RecordAccessDenied(string(access.EntityComment), "list")
		return nil, apperrors.NewForbidden("comment listing denied")
	}

	repoFilter := repository.CommentFilter{
		CompanyID: scope.CompanyID,
		AuthorID:  scope.AuthorID,
		LeadID:    filter.LeadID,
		Limit:     filter.Limit,
		Offset:    filter.Offset,
	}
	return s.comments.ListWithFilter(ctx, repoFilter)
}

// Get fetches a comment when it lies within the actor's read scope.
func (s *CommentService) Get(ctx context.Context, actor access.Actor, id string) (*domain.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	scope, err := access.ReadScope(actor, access.EntityComment, access.ScopeAll)
	if err != nil {
		return nil, apperrors.NewForbidden(err.Error())
	}
	if !scope.Matches(commentRecord(comment)) {
		s.metrics.RecordAccessDenied(string(access.EntityComment), "get")
		return nil, apperrors.NewNotFound("comment", nil)
	}
	return comment, nil
}

// Create attaches a comment to a live lead the actor can read. The
// comment inherits the lead's company and records the lead status the
// author observed at the time.
func (s *CommentService) Create(ctx context.Context, actor access.Actor, input CommentCreateInput) (*domain.Comment, error) {
	lead, err := s.leads.GetByID(ctx, input.LeadID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	leadScope, err := access.ReadScope(actor, access.EntityLead, access.ScopeAll)
	if err != nil {
		return nil, apperrors.NewForbidden(err.Error())
	}
	if !leadScope.Matches(leadRecord(lead)) {
		s.metrics.RecordAccessDenied(string(access.EntityComment), "create")
		return nil, apperrors.NewNotFound("lead", nil)
	}

	stamp, err := access.CreateStamp(actor, access.EntityComment, access.StampTarget{CompanyID: lead.CompanyID})
	if err != nil {
		s.metrics.RecordAccessDenied(string(access.EntityComment), "create")
		return nil, apperrors.NewForbidden("comment creation denied")
	}

	if strings.TrimSpace(input.Text) == "" {
		return nil, apperrors.NewValidationError("comment_text required", nil)
	}
	status, err := domain.ParseLeadStatus(input.Status)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}

	comment := &domain.Comment{
		Text:      strings.TrimSpace(input.Text),
		Status:    status,
		CompanyID: stamp.CompanyID,
		LeadID:    lead.ID,
		AuthorID:  stamp.AuthorID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, actor, events.Event{
		Type:      events.EventCommentAdded,
		LeadID:    lead.ID,
		CompanyID: lead.CompanyID,
		Payload: events.CommentAddedPayload{
			CommentID:   comment.ID,
			Status:      comment.Status,
			TextPreview: previewText(comment.Text),
		},
	})
	return comment, nil
}

// Update modifies a comment the actor may edit. Users can only edit
// their own comments; Admins and SuperAdmins any.
func (s *CommentService) Update(ctx context.Context, actor access.Actor, id string, input CommentUpdateInput) (*domain.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !access.CanEdit(actor, commentRecord(comment)) {
		s.metrics.RecordAccessDenied(string(access.EntityComment), "edit")
		return nil, apperrors.NewForbidden("not allowed to edit this comment")
	}

	if strings.TrimSpace(input.Text) == "" {
		return nil, apperrors.NewValidationError("comment_text required", nil)
	}
	status, err := domain.ParseLeadStatus(input.Status)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}

	comment.Text = strings.TrimSpace(input.Text)
	comment.Status = status
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	return comment, nil
}

// Delete soft-deletes a comment. The delete rule mirrors the edit rule.
func (s *CommentService) Delete(ctx context.Context, actor access.Actor, id string) error {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !access.CanDelete(actor, commentRecord(comment)) {
		s.metrics.RecordAccessDenied(string(access.EntityComment), "delete")
		return apperrors.NewForbidden("not allowed to delete this comment")
	}
	if err := s.comments.SoftDelete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *CommentService) publishEvent(ctx context.Context, actor access.Actor, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Actor = events.Actor{
		IdentityID: actor.ID,
		Role:       actor.Role,
		CompanyID:  actor.CompanyID,
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func commentRecord(comment *domain.Comment) access.Record {
	return access.Record{
		Entity:    access.EntityComment,
		CompanyID: comment.CompanyID,
		AuthorID:  comment.AuthorID,
	}
}

func previewText(text string) string {
	if len(text) <= commentPreviewLength {
		return text
	}
	cut := commentPreviewLength
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
