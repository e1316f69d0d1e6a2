package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/lead-service/internal/access"
	"github.com/spec-kit/lead-service/internal/domain"
	"github.com/spec-kit/lead-service/internal/events"
	"github.com/spec-kit/lead-service/internal/observability"
	"github.com/spec-kit/lead-service/internal/repository"
	apperrors "github.com/spec-kit/lead-service/pkg/util"
)

// LeadService coordinates lead workflows. All visibility and mutation
// decisions come from the access engine; the service only translates
// them into repository calls.
type LeadService struct {
	leads      repository.LeadRepository
	identities repository.IdentityRepository
	companies  repository.CompanyRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
}

// LeadDependencies bundles repositories for the lead service.
type LeadDependencies struct {
	LeadRepo     repository.LeadRepository
	IdentityRepo repository.IdentityRepository
	CompanyRepo  repository.CompanyRepository
	Dispatcher   events.Dispatcher
	Metrics      *observability.Metrics
}

// LeadCreateInput describes lead creation payload. CompanyID is only
// honored for SuperAdmin actors, who have no company of their own.
type LeadCreateInput struct {
	Name       string
	Email      string
	Phone      string
	Status     string
	Location   string
	Note       string
	AssignedID *string
	CompanyID  string
}

// LeadUpdateInput describes the mutable lead fields.
type LeadUpdateInput struct {
	Name       string
	Email      string
	Phone      string
	Status     string
	Location   string
	Note       string
	AssignedID *string
}

// LeadListFilter describes caller-chosen listing refinements.
type LeadListFilter struct {
	Statuses   []domain.LeadStatus
	SearchTerm *string
	Limit      int
	Offset     int
}

// NewLeadService constructs the service.
func NewLeadService(deps LeadDependencies) *LeadService {
	return &LeadService{
		leads:      deps.LeadRepo,
		identities: deps.IdentityRepo,
		companies:  deps.CompanyRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
	}
}

// List returns leads within the actor's read scope. The sub-scope
// selects the all-leads, my-leads (owned) or my-work (assigned) view.
func (s *LeadService) List(ctx context.Context, actor access.Actor, sub access.SubScope, filter LeadListFilter) ([]domain.Lead, error) {
	scope, err := access.ReadScope(actor, access.EntityLead, sub)
	if err != nil {
		return nil, apperrors.NewForbidden(err.Error())
	}
	if scope.Denied {
		s.metrics.RecordAccessDenied(string(access.EntityLead), "list")
		return nil, apperrors.NewForbidden("lead listing denied")
	}

	repoFilter := repository.LeadFilter{
		CompanyID:  scope.CompanyID,
		OwnerID:    scope.OwnerID,
		AssignedID: scope.AssignedID,
		Statuses:   filter.Statuses,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	return s.leads.ListWithFilter(ctx, repoFilter)
}

// Get fetches a lead when it lies within the actor's read scope.
func (s *LeadService) Get(ctx context.Context, actor access.Actor, id string) (*domain.Lead, error) {
	lead, err := s.leads.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	scope, err := access.ReadScope(actor, access.EntityLead, access.ScopeAll)
	if err != nil {
		return nil, apperrors.NewForbidden(err.Error())
	}
	if !scope.Matches(leadRecord(lead)) {
		s.metrics.RecordAccessDenied(string(access.EntityLead), "get")
		return nil, apperrors.NewNotFound("lead", nil)
	}
	return lead, nil
}

// Create inserts a lead stamped with the actor as owner. SuperAdmin
// actors must name a company since they carry none of their own.
func (s *LeadService) Create(ctx context.Context, actor access.Actor, input LeadCreateInput) (*domain.Lead, error) {
	stamp, err := access.CreateStamp(actor, access.EntityLead, access.StampTarget{CompanyID: input.CompanyID})
	if err != nil {
		switch err {
		case access.ErrMissingCompany:
			return nil, apperrors.NewValidationError("company_id required", nil)
		default:
			s.metrics.RecordAccessDenied(string(access.EntityLead), "create")
			return nil, apperrors.NewForbidden("lead creation denied")
		}
	}

	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("lead_name required", nil)
	}
	status := domain.StatusNew
	if input.Status != "" {
		status, err = domain.ParseLeadStatus(input.Status)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error(), nil)
		}
	}
	if actor.Role == domain.RoleSuperAdmin {
		if _, err := s.companies.GetByID(ctx, stamp.CompanyID); err != nil {
			if err == pgx.ErrNoRows {
				return nil, apperrors.NewValidationError("company does not exist", nil)
			}
			return nil, apperrors.MapError(err)
		}
	}
	if err := s.validateAssignee(ctx, input.AssignedID, stamp.CompanyID); err != nil {
		return nil, err
	}

	lead := &domain.Lead{
		Name:       strings.TrimSpace(input.Name),
		Email:      strings.TrimSpace(input.Email),
		Phone:      input.Phone,
		Status:     status,
		Location:   input.Location,
		Note:       input.Note,
		CompanyID:  stamp.CompanyID,
		OwnerID:    stamp.OwnerID,
		AssignedID: input.AssignedID,
	}
	if err := s.leads.Create(ctx, lead); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, actor, events.Event{
		Type:      events.EventLeadCreated,
		LeadID:    lead.ID,
		CompanyID: lead.CompanyID,
		Payload: events.LeadCreatedPayload{
			Name:     lead.Name,
			Status:   lead.Status,
			Location: lead.Location,
		},
	})
	return lead, nil
}

// Update modifies a lead the actor may edit. Status is a free-form
// reassignment: any of the nine literals may follow any other.
func (s *LeadService) Update(ctx context.Context, actor access.Actor, id string, input LeadUpdateInput) (*domain.Lead, error) {
	lead, err := s.leads.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !access.CanEdit(actor, leadRecord(lead)) {
		s.metrics.RecordAccessDenied(string(access.EntityLead), "edit")
		return nil, apperrors.NewForbidden("not allowed to edit this lead")
	}

	status, err := domain.ParseLeadStatus(input.Status)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	if err := s.validateAssignee(ctx, input.AssignedID, lead.CompanyID); err != nil {
		return nil, err
	}

	oldStatus := lead.Status
	oldAssigned := lead.AssignedID

	lead.Name = strings.TrimSpace(input.Name)
	lead.Email = strings.TrimSpace(input.Email)
	lead.Phone = input.Phone
	lead.Status = status
	lead.Location = input.Location
	lead.Note = input.Note
	lead.AssignedID = input.AssignedID
	if err := s.leads.Update(ctx, lead); err != nil {
		return nil, apperrors.MapError(err)
	}

	if oldStatus != lead.Status {
		s.publishEvent(ctx, actor, events.Event{
			Type:      events.EventLeadStatusChanged,
			LeadID:    lead.ID,
			CompanyID: lead.CompanyID,
			Payload: events.LeadStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: lead.Status,
			},
		})
	}
	if !sameAssignee(oldAssigned, lead.AssignedID) {
		s.publishEvent(ctx, actor, events.Event{
			Type:      events.EventLeadAssigned,
			LeadID:    lead.ID,
			CompanyID: lead.CompanyID,
			Payload: events.LeadAssignedPayload{
				AssignedID: lead.AssignedID,
			},
		})
	}
	return lead, nil
}

// Delete soft-deletes a lead the actor may delete. Users may edit any
// in-company lead but delete only the ones they created.
func (s *LeadService) Delete(ctx context.Context, actor access.Actor, id string) error {
	lead, err := s.leads.GetByID(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !access.CanDelete(actor, leadRecord(lead)) {
		s.metrics.RecordAccessDenied(string(access.EntityLead), "delete")
		return apperrors.NewForbidden("not allowed to delete this lead")
	}
	if err := s.leads.SoftDelete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}

	s.publishEvent(ctx, actor, events.Event{
		Type:      events.EventLeadDeleted,
		LeadID:    lead.ID,
		CompanyID: lead.CompanyID,
		Payload:   events.LeadDeletedPayload{Name: lead.Name},
	})
	return nil
}

func (s *LeadService) validateAssignee(ctx context.Context, assignedID *string, companyID string) error {
	if assignedID == nil || *assignedID == "" {
		return nil
	}
	assignee, err := s.identities.GetByID(ctx, *assignedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewValidationError("assignee not found", nil)
		}
		return apperrors.MapError(err)
	}
	if assignee.CompanyID != companyID {
		return apperrors.NewValidationError("assignee belongs to another company", nil)
	}
	return nil
}

func (s *LeadService) publishEvent(ctx context.Context, actor access.Actor, event events.Event) {
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

func leadRecord(lead *domain.Lead) access.Record {
	record := access.Record{
		Entity:    access.EntityLead,
		CompanyID: lead.CompanyID,
		OwnerID:   lead.OwnerID,
	}
	if lead.AssignedID != nil {
		record.AssignedID = *lead.AssignedID
	}
	return record
}

func sameAssignee(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
