package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/lead-service/internal/config"
	"github.com/spec-kit/lead-service/internal/domain"
	"github.com/spec-kit/lead-service/internal/repository"
)

type fakeInvalidator struct {
	dropped []string
}

func (f *fakeInvalidator) InvalidateProfile(ctx context.Context, id string) {
	f.dropped = append(f.dropped, id)
}

func newIdentityServiceForTest(identities *MockIdentityRepository, companies *MockCompanyRepository, cache ProfileCacheInvalidator) *IdentityService {
	cfg := config.Config{Auth: config.AuthConfig{BcryptCost: 4}}
	return NewIdentityService(cfg, IdentityDependencies{
		IdentityRepo: identities,
		CompanyRepo:  companies,
		Cache:        cache,
	})
}

func TestListUsersScopedToAdminCompany(t *testing.T) {
	identities := new(MockIdentityRepository)
	svc := newIdentityServiceForTest(identities, new(MockCompanyRepository), nil)

	identities.On("ListWithFilter", mock.Anything, mock.MatchedBy(func(f repository.IdentityFilter) bool {
		return f.Role != nil && *f.Role == domain.RoleUser &&
			f.CompanyID != nil && *f.CompanyID == "c1"
	})).Return([]domain.Identity{}, nil)

	_, err := svc.ListUsers(context.Background(), adminC1, repository.IdentityFilter{})
	require.NoError(t, err)
	identities.AssertExpectations(t)
}

func TestListAdminsScopedToAdminCompany(t *testing.T) {
	identities := new(MockIdentityRepository)
	svc := newIdentityServiceForTest(identities, new(MockCompanyRepository), nil)

	identities.On("ListWithFilter", mock.Anything, mock.MatchedBy(func(f repository.IdentityFilter) bool {
		return f.Role != nil && *f.Role == domain.RoleAdmin &&
			f.CompanyID != nil && *f.CompanyID == "c1"
	})).Return([]domain.Identity{}, nil)

	_, err := svc.ListAdmins(context.Background(), adminC1, repository.IdentityFilter{})
	require.NoError(t, err)
	identities.AssertExpectations(t)
}

func TestCreateAdminRequiresSuperAdmin(t *testing.T) {
	identities := new(MockIdentityRepository)
	svc := newIdentityServiceForTest(identities, new(MockCompanyRepository), nil)

	_, err := svc.CreateAdmin(context.Background(), adminC1, IdentityCreateInput{
		Name: "A", Email: "a@x.io", Password: "pw", CompanyID: "c1",
	})
	assert.Equal(t, "FORBIDDEN", domainErrCode(t, err))
	identities.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateUserAdminStampsOwnCompany(t *testing.T) {
	identities := new(MockIdentityRepository)
	companies := new(MockCompanyRepository)
	svc := newIdentityServiceForTest(identities, companies, nil)

	identities.On("GetByEmail", mock.Anything, "new@x.io").Return(nil, pgx.ErrNoRows)
	companies.On("GetByID", mock.Anything, "c1").Return(&domain.Company{ID: "c1"}, nil)
	identities.On("Create", mock.Anything, mock.MatchedBy(func(identity *domain.Identity) bool {
		return identity.CompanyID == "c1" && identity.Role == domain.RoleUser &&
			identity.PasswordHash != "" && identity.PasswordHash != "pw"
	})).Return(nil)

	// company_id in the payload points elsewhere; the stamp wins
	identity, err := svc.CreateUser(context.Background(), adminC1, IdentityCreateInput{
		Name: "New User", Email: "new@x.io", Password: "pw", CompanyID: "c2",
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", identity.CompanyID)
}

func TestCreateUserSuperAdminNeedsCompany(t *testing.T) {
	svc := newIdentityServiceForTest(new(MockIdentityRepository), new(MockCompanyRepository), nil)

	_, err := svc.CreateUser(context.Background(), superAdmin, IdentityCreateInput{
		Name: "U", Email: "u@x.io", Password: "pw",
	})
	assert.Equal(t, "VALIDATION_FAILED", domainErrCode(t, err))
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	identities := new(MockIdentityRepository)
	svc := newIdentityServiceForTest(identities, new(MockCompanyRepository), nil)

	identities.On("GetByEmail", mock.Anything, "dup@x.io").Return(&domain.Identity{ID: "existing"}, nil)

	_, err := svc.CreateUser(context.Background(), adminC1, IdentityCreateInput{
		Name: "U", Email: "dup@x.io", Password: "pw",
	})
	assert.Equal(t, "CONFLICT", domainErrCode(t, err))
}

func TestUpdateProfileInvalidatesCache(t *testing.T) {
	identities := new(MockIdentityRepository)
	cache := &fakeInvalidator{}
	svc := newIdentityServiceForTest(identities, new(MockCompanyRepository), cache)

	identities.On("GetByID", mock.Anything, "usr-2").Return(&domain.Identity{
		ID: "usr-2", Role: domain.RoleUser, CompanyID: "c1",
	}, nil)
	identities.On("Update", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Update(context.Background(), adminC1, "usr-2", IdentityUpdateInput{Name: "Renamed", Email: "r@x.io"})
	require.NoError(t, err)
	assert.Equal(t, []string{"usr-2"}, cache.dropped)
}

func TestDeleteAdminProfileDeniedForAdmin(t *testing.T) {
	identities := new(MockIdentityRepository)
	svc := newIdentityServiceForTest(identities, new(MockCompanyRepository), nil)

	identities.On("GetByID", mock.Anything, "adm-2").Return(&domain.Identity{
		ID: "adm-2", Role: domain.RoleAdmin, CompanyID: "c1",
	}, nil)

	err := svc.Delete(context.Background(), adminC1, "adm-2")
	assert.Equal(t, "FORBIDDEN", domainErrCode(t, err))
	identities.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything)
}

func TestDeleteUserProfileInvalidatesCache(t *testing.T) {
	identities := new(MockIdentityRepository)
	cache := &fakeInvalidator{}
	svc := newIdentityServiceForTest(identities, new(MockCompanyRepository), cache)

	identities.On("GetByID", mock.Anything, "usr-3").Return(&domain.Identity{
		ID: "usr-3", Role: domain.RoleUser, CompanyID: "c1",
	}, nil)
	identities.On("SoftDelete", mock.Anything, "usr-3").Return(nil)

	require.NoError(t, svc.Delete(context.Background(), adminC1, "usr-3"))
	assert.Equal(t, []string{"usr-3"}, cache.dropped)
}

func TestGetForeignUserReadsAsNotFound(t *testing.T) {
	identities := new(MockIdentityRepository)
	svc := newIdentityServiceForTest(identities, new(MockCompanyRepository), nil)

	identities.On("GetByID", mock.Anything, "usr-9").Return(&domain.Identity{
		ID: "usr-9", Role: domain.RoleUser, CompanyID: "c2",
	}, nil)

	_, err := svc.Get(context.Background(), adminC1, "usr-9")
	assert.Equal(t, "NOT_FOUND", domainErrCode(t, err))
}
