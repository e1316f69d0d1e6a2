package service

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/lead-service/internal/access"
	"github.com/spec-kit/lead-service/internal/auth"
	"github.com/spec-kit/lead-service/internal/config"
	"github.com/spec-kit/lead-service/internal/domain"
	"github.com/spec-kit/lead-service/internal/observability"
	"github.com/spec-kit/lead-service/internal/repository"
	apperrors "github.com/spec-kit/lead-service/pkg/util"
)

// ProfileCacheInvalidator drops a cached profile after mutation so a
// stale copy cannot keep serving requests.
type ProfileCacheInvalidator interface {
	InvalidateProfile(ctx context.Context, id string)
}

// IdentityService manages admin and user profiles. Role is assigned at
// creation and never changes afterwards.
type IdentityService struct {
	identities repository.IdentityRepository
	companies  repository.CompanyRepository
	cache      ProfileCacheInvalidator
	metrics    *observability.Metrics
	bcryptCost int
}

// IdentityDependencies bundles repositories for the identity service.
type IdentityDependencies struct {
	IdentityRepo repository.IdentityRepository
	CompanyRepo  repository.CompanyRepository
	Cache        ProfileCacheInvalidator
	Metrics      *observability.Metrics
}

// IdentityCreateInput describes profile creation payloads. CompanyID
// is required when a SuperAdmin creates the profile; Admins always
// create into their own company.
type IdentityCreateInput struct {
	Name      string
	Email     string
	Password  string
	Phone     string
	Gender    string
	Address   string
	CompanyID string
}

// IdentityUpdateInput describes the mutable profile fields.
type IdentityUpdateInput struct {
	Name    string
	Email   string
	Phone   string
	Gender  string
	Address string
}

// NewIdentityService constructs the service.
func NewIdentityService(cfg config.Config, deps IdentityDependencies) *IdentityService {
	return &IdentityService{
		identities: deps.IdentityRepo,
		companies:  deps.CompanyRepo,
		cache:      deps.Cache,
		metrics:    deps.Metrics,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// ListAdmins returns admin profiles within the actor's scope.
func (s *IdentityService) ListAdmins(ctx context.Context, actor access.Actor, filter repository.IdentityFilter) ([]domain.Identity, error) {
	return s.list(ctx, actor, access.EntityAdminProfile, domain.RoleAdmin, filter)
}

// ListUsers returns user profiles within the actor's scope.
func (s *IdentityService) ListUsers(ctx context.Context, actor access.Actor, filter repository.IdentityFilter) ([]domain.Identity, error) {
	return s.list(ctx, actor, access.EntityUserProfile, domain.RoleUser, filter)
}

func (s *IdentityService) list(ctx context.Context, actor access.Actor, entity access.EntityType, role domain.Role, filter repository.IdentityFilter) ([]domain.Identity, error) {
	scope, err := access.ReadScope(actor, entity, access.ScopeAll)
	if err != nil {
		return nil, apperrors.NewForbidden(err.Error())
	}
	if scope.Denied {
		s.metrics.RecordAccessDenied(string(entity), "list")
		return nil, apperrors.NewForbidden("profile listing denied")
	}

	filter.Role = &role
	filter.CompanyID = scope.CompanyID
	return s.identities.ListWithFilter(ctx, filter)
}

// Get fetches a single profile when it lies within the actor's scope.
func (s *IdentityService) Get(ctx context.Context, actor access.Actor, id string) (*domain.Identity, error) {
	identity, err := s.identities.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	entity := profileEntity(identity.Role)
	scope, err := access.ReadScope(actor, entity, access.ScopeAll)
	if err != nil {
		return nil, apperrors.NewForbidden(err.Error())
	}
	if !scope.Matches(identityRecord(identity)) {
		s.metrics.RecordAccessDenied(string(entity), "get")
		return nil, apperrors.NewNotFound("profile", nil)
	}
	return identity, nil
}

// CreateAdmin creates an admin profile bound to the given company.
// SuperAdmin only.
func (s *IdentityService) CreateAdmin(ctx context.Context, actor access.Actor, input IdentityCreateInput) (*domain.Identity, error) {
	return s.create(ctx, actor, access.EntityAdminProfile, domain.RoleAdmin, input)
}

// CreateUser creates a user profile. Admins create into their own
// company; SuperAdmin must name the company explicitly.
func (s *IdentityService) CreateUser(ctx context.Context, actor access.Actor, input IdentityCreateInput) (*domain.Identity, error) {
	return s.create(ctx, actor, access.EntityUserProfile, domain.RoleUser, input)
}

func (s *IdentityService) create(ctx context.Context, actor access.Actor, entity access.EntityType, role domain.Role, input IdentityCreateInput) (*domain.Identity, error) {
	stamp, err := access.CreateStamp(actor, entity, access.StampTarget{CompanyID: input.CompanyID})
	if err != nil {
		switch err {
		case access.ErrMissingCompany:
			return nil, apperrors.NewValidationError("company_id required", nil)
		default:
			s.metrics.RecordAccessDenied(string(entity), "create")
			return nil, apperrors.NewForbidden("profile creation denied")
		}
	}

	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Email) == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("name, email, password required", nil)
	}
	if _, err := s.identities.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if err != pgx.ErrNoRows {
		return nil, apperrors.MapError(err)
	}
	if _, err := s.companies.GetByID(ctx, stamp.CompanyID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewValidationError("company does not exist", nil)
		}
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	identity := &domain.Identity{
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: hash,
		Phone:        input.Phone,
		Gender:       input.Gender,
		Address:      input.Address,
		Role:         role,
		CompanyID:    stamp.CompanyID,
	}
	if err := s.identities.Create(ctx, identity); err != nil {
		return nil, apperrors.MapError(err)
	}
	return identity, nil
}

// Update modifies the mutable profile fields. Role and company binding
// stay untouched regardless of payload.
func (s *IdentityService) Update(ctx context.Context, actor access.Actor, id string, input IdentityUpdateInput) (*domain.Identity, error) {
	identity, err := s.identities.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	entity := profileEntity(identity.Role)
	if !access.CanEdit(actor, identityRecord(identity)) {
		s.metrics.RecordAccessDenied(string(entity), "edit")
		return nil, apperrors.NewForbidden("not allowed to edit this profile")
	}

	identity.Name = strings.TrimSpace(input.Name)
	identity.Email = strings.TrimSpace(input.Email)
	identity.Phone = input.Phone
	identity.Gender = input.Gender
	identity.Address = input.Address
	if err := s.identities.Update(ctx, identity); err != nil {
		return nil, apperrors.MapError(err)
	}
	if s.cache != nil {
		s.cache.InvalidateProfile(ctx, identity.ID)
	}
	return identity, nil
}

// Delete soft-deletes the profile, revoking its access on the next
// request once the cache entry is dropped.
func (s *IdentityService) Delete(ctx context.Context, actor access.Actor, id string) error {
	identity, err := s.identities.GetByID(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	entity := profileEntity(identity.Role)
	if !access.CanDelete(actor, identityRecord(identity)) {
		s.metrics.RecordAccessDenied(string(entity), "delete")
		return apperrors.NewForbidden("not allowed to delete this profile")
	}
	if err := s.identities.SoftDelete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	if s.cache != nil {
		s.cache.InvalidateProfile(ctx, id)
	}
	return nil
}

func profileEntity(role domain.Role) access.EntityType {
	if role == domain.RoleUser {
		return access.EntityUserProfile
	}
	// SuperAdmin profiles fall under the stricter admin-profile rules.
	return access.EntityAdminProfile
}

func identityRecord(identity *domain.Identity) access.Record {
	return access.Record{
		Entity:    profileEntity(identity.Role),
		CompanyID: identity.CompanyID,
	}
}
