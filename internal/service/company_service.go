package service

import (
	"context"
	"strings"

	"github.com/spec-kit/lead-service/internal/access"
	"github.com/spec-kit/lead-service/internal/domain"
	"github.com/spec-kit/lead-service/internal/observability"
	"github.com/spec-kit/lead-service/internal/repository"
	apperrors "github.com/spec-kit/lead-service/pkg/util"
)

// CompanyService manages tenant companies. Every operation is gated by
// the access engine before any store call.
type CompanyService struct {
	companies repository.CompanyRepository
	metrics   *observability.Metrics
}

// CompanyInput describes company create/update payloads.
type CompanyInput struct {
	Name         string
	ContactEmail string
	Phone        string
	Address      string
	Note         string
}

// NewCompanyService constructs the service.
func NewCompanyService(companies repository.CompanyRepository, metrics *observability.Metrics) *CompanyService {
	return &CompanyService{companies: companies, metrics: metrics}
}

// List returns companies visible to the actor (SuperAdmin only).
func (s *CompanyService) List(ctx context.Context, actor access.Actor, filter repository.CompanyFilter) ([]domain.Company, error) {
	scope, err := access.ReadScope(actor, access.EntityCompany, access.ScopeAll)
	if err != nil {
		return nil, apperrors.NewForbidden(err.Error())
	}
	if scope.Denied {
		s.metrics.RecordAccessDenied(string(access.EntityCompany), "list")
		return nil, apperrors.NewForbidden("company listing requires SuperAdmin")
	}
	return s.companies.ListWithFilter(ctx, filter)
}

// Get fetches a single company for the actor.
func (s *CompanyService) Get(ctx context.Context, actor access.Actor, id string) (*domain.Company, error) {
	scope, err := access.ReadScope(actor, access.EntityCompany, access.ScopeAll)
	if err != nil {
		return nil, apperrors.NewForbidden(err.Error())
	}
	if scope.Denied {
		s.metrics.RecordAccessDenied(string(access.EntityCompany), "get")
		return nil, apperrors.NewForbidden("company access requires SuperAdmin")
	}
	company, err := s.companies.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return company, nil
}

// Create inserts a new company.
func (s *CompanyService) Create(ctx context.Context, actor access.Actor, input CompanyInput) (*domain.Company, error) {
	if !access.CanCreate(actor, access.EntityCompany) {
		s.metrics.RecordAccessDenied(string(access.EntityCompany), "create")
		return nil, apperrors.NewForbidden("company creation requires SuperAdmin")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}

	company := &domain.Company{
		Name:         strings.TrimSpace(input.Name),
		ContactEmail: strings.TrimSpace(input.ContactEmail),
		Phone:        input.Phone,
		Address:      input.Address,
		Note:         input.Note,
	}
	if err := s.companies.Create(ctx, company); err != nil {
		return nil, apperrors.MapError(err)
	}
	return company, nil
}

// Update modifies company metadata.
func (s *CompanyService) Update(ctx context.Context, actor access.Actor, id string, input CompanyInput) (*domain.Company, error) {
	company, err := s.companies.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	record := access.Record{Entity: access.EntityCompany, CompanyID: company.ID}
	if !access.CanEdit(actor, record) {
		s.metrics.RecordAccessDenied(string(access.EntityCompany), "edit")
		return nil, apperrors.NewForbidden("not allowed to edit this company")
	}

	company.Name = strings.TrimSpace(input.Name)
	company.ContactEmail = strings.TrimSpace(input.ContactEmail)
	company.Phone = input.Phone
	company.Address = input.Address
	company.Note = input.Note
	if err := s.companies.Update(ctx, company); err != nil {
		return nil, apperrors.MapError(err)
	}
	return company, nil
}

// Delete soft-deletes the company row. There is no cascade: staff,
// leads and comments of the company stay in place and remain subject
// to the ordinary scope rules.
func (s *CompanyService) Delete(ctx context.Context, actor access.Actor, id string) error {
	company, err := s.companies.GetByID(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	record := access.Record{Entity: access.EntityCompany, CompanyID: company.ID}
	if !access.CanDelete(actor, record) {
		s.metrics.RecordAccessDenied(string(access.EntityCompany), "delete")
		return apperrors.NewForbidden("not allowed to delete this company")
	}
	if err := s.companies.SoftDelete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}
