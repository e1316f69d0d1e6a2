package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/lead-service/internal/access"
	"github.com/spec-kit/lead-service/internal/domain"
	"github.com/spec-kit/lead-service/internal/events"
	"github.com/spec-kit/lead-service/internal/repository"
	apperrors "github.com/spec-kit/lead-service/pkg/util"
)

var (
	superAdmin = access.Actor{ID: "sa-1", Role: domain.RoleSuperAdmin}
	adminC1    = access.Actor{ID: "adm-1", Role: domain.RoleAdmin, CompanyID: "c1"}
	userC1     = access.Actor{ID: "usr-1", Role: domain.RoleUser, CompanyID: "c1"}
)

func newLeadServiceForTest(leads *MockLeadRepository, identities *MockIdentityRepository, companies *MockCompanyRepository, dispatcher events.Dispatcher) *LeadService {
	return NewLeadService(LeadDependencies{
		LeadRepo:     leads,
		IdentityRepo: identities,
		CompanyRepo:  companies,
		Dispatcher:   dispatcher,
	})
}

func domainErrCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	require.NotNil(t, domainErr)
	return domainErr.Code
}

func TestLeadListScopesToCompanyForUser(t *testing.T) {
	leads := new(MockLeadRepository)
	svc := newLeadServiceForTest(leads, new(MockIdentityRepository), new(MockCompanyRepository), nil)

	leads.On("ListWithFilter", mock.Anything, mock.MatchedBy(func(f repository.LeadFilter) bool {
		return f.CompanyID != nil && *f.CompanyID == "c1" && f.OwnerID == nil && f.AssignedID == nil
	})).Return([]domain.Lead{}, nil)

	_, err := svc.List(context.Background(), userC1, access.ScopeAll, LeadListFilter{})
	require.NoError(t, err)
	leads.AssertExpectations(t)
}

func TestLeadListOwnedByMeAddsOwnerFilter(t *testing.T) {
	leads := new(MockLeadRepository)
	svc := newLeadServiceForTest(leads, new(MockIdentityRepository), new(MockCompanyRepository), nil)

	leads.On("ListWithFilter", mock.Anything, mock.MatchedBy(func(f repository.LeadFilter) bool {
		return f.CompanyID != nil && *f.CompanyID == "c1" &&
			f.OwnerID != nil && *f.OwnerID == "usr-1" && f.AssignedID == nil
	})).Return([]domain.Lead{}, nil)

	_, err := svc.List(context.Background(), userC1, access.ScopeOwnedByMe, LeadListFilter{})
	require.NoError(t, err)
	leads.AssertExpectations(t)
}

func TestLeadListAssignedToMeAddsAssigneeFilter(t *testing.T) {
	leads := new(MockLeadRepository)
	svc := newLeadServiceForTest(leads, new(MockIdentityRepository), new(MockCompanyRepository), nil)

	leads.On("ListWithFilter", mock.Anything, mock.MatchedBy(func(f repository.LeadFilter) bool {
		return f.AssignedID != nil && *f.AssignedID == "usr-1"
	})).Return([]domain.Lead{}, nil)

	_, err := svc.List(context.Background(), userC1, access.ScopeAssignedToMe, LeadListFilter{})
	require.NoError(t, err)
}

func TestLeadListUnrestrictedForSuperAdmin(t *testing.T) {
	leads := new(MockLeadRepository)
	svc := newLeadServiceForTest(leads, new(MockIdentityRepository), new(MockCompanyRepository), nil)

	leads.On("ListWithFilter", mock.Anything, mock.MatchedBy(func(f repository.LeadFilter) bool {
		return f.CompanyID == nil && f.OwnerID == nil && f.AssignedID == nil
	})).Return([]domain.Lead{}, nil)

	_, err := svc.List(context.Background(), superAdmin, access.ScopeAll, LeadListFilter{})
	require.NoError(t, err)
}

func TestLeadCreateStampsOwnerAndCompany(t *testing.T) {
	leads := new(MockLeadRepository)
	dispatcher := &recordingDispatcher{}
	svc := newLeadServiceForTest(leads, new(MockIdentityRepository), new(MockCompanyRepository), dispatcher)

	leads.On("Create", mock.Anything, mock.MatchedBy(func(lead *domain.Lead) bool {
		return lead.CompanyID == "c1" && lead.OwnerID == "usr-1" && lead.Status == domain.StatusNew
	})).Return(nil)

	lead, err := svc.Create(context.Background(), userC1, LeadCreateInput{Name: "Acme Prospect"})
	require.NoError(t, err)
	assert.Equal(t, "c1", lead.CompanyID)
	assert.Equal(t, "usr-1", lead.OwnerID)
	assert.Equal(t, []events.EventType{events.EventLeadCreated}, dispatcher.types())
}

func TestLeadCreateIgnoresForeignCompanyFromAdmin(t *testing.T) {
	leads := new(MockLeadRepository)
	svc := newLeadServiceForTest(leads, new(MockIdentityRepository), new(MockCompanyRepository), nil)

	leads.On("Create", mock.Anything, mock.MatchedBy(func(lead *domain.Lead) bool {
		return lead.CompanyID == "c1"
	})).Return(nil)

	lead, err := svc.Create(context.Background(), adminC1, LeadCreateInput{Name: "Lead", CompanyID: "c2"})
	require.NoError(t, err)
	assert.Equal(t, "c1", lead.CompanyID)
}

func TestLeadCreateSuperAdminRequiresCompany(t *testing.T) {
	svc := newLeadServiceForTest(new(MockLeadRepository), new(MockIdentityRepository), new(MockCompanyRepository), nil)

	_, err := svc.Create(context.Background(), superAdmin, LeadCreateInput{Name: "Lead"})
	assert.Equal(t, "VALIDATION_FAILED", domainErrCode(t, err))
}

func TestLeadCreateSuperAdminChecksCompanyExists(t *testing.T) {
	leads := new(MockLeadRepository)
	companies := new(MockCompanyRepository)
	svc := newLeadServiceForTest(leads, new(MockIdentityRepository), companies, nil)

	companies.On("GetByID", mock.Anything, "c9").Return(&domain.Company{ID: "c9"}, nil)
	leads.On("Create", mock.Anything, mock.Anything).Return(nil)

	lead, err := svc.Create(context.Background(), superAdmin, LeadCreateInput{Name: "Lead", CompanyID: "c9"})
	require.NoError(t, err)
	assert.Equal(t, "c9", lead.CompanyID)
	companies.AssertExpectations(t)
}

func TestLeadCreateRejectsUnknownStatus(t *testing.T) {
	svc := newLeadServiceForTest(new(MockLeadRepository), new(MockIdentityRepository), new(MockCompanyRepository), nil)

	_, err := svc.Create(context.Background(), userC1, LeadCreateInput{Name: "Lead", Status: "Closed Won"})
	assert.Equal(t, "VALIDATION_FAILED", domainErrCode(t, err))
}

func TestLeadCreateRejectsCrossCompanyAssignee(t *testing.T) {
	identities := new(MockIdentityRepository)
	svc := newLeadServiceForTest(new(MockLeadRepository), identities, new(MockCompanyRepository), nil)

	other := "usr-9"
	identities.On("GetByID", mock.Anything, other).Return(&domain.Identity{ID: other, Role: domain.RoleUser, CompanyID: "c2"}, nil)

	_, err := svc.Create(context.Background(), userC1, LeadCreateInput{Name: "Lead", AssignedID: &other})
	assert.Equal(t, "VALIDATION_FAILED", domainErrCode(t, err))
}

func TestLeadUpdateEmitsStatusAndAssignmentEvents(t *testing.T) {
	leads := new(MockLeadRepository)
	identities := new(MockIdentityRepository)
	dispatcher := &recordingDispatcher{}
	svc := newLeadServiceForTest(leads, identities, new(MockCompanyRepository), dispatcher)

	assignee := "usr-2"
	leads.On("GetByID", mock.Anything, "l1").Return(&domain.Lead{
		ID: "l1", Name: "Lead", CompanyID: "c1", OwnerID: "usr-1", Status: domain.StatusNew,
	}, nil)
	identities.On("GetByID", mock.Anything, assignee).Return(&domain.Identity{ID: assignee, Role: domain.RoleUser, CompanyID: "c1"}, nil)
	leads.On("Update", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Update(context.Background(), userC1, "l1", LeadUpdateInput{
		Name:       "Lead",
		Status:     string(domain.StatusInConversation),
		AssignedID: &assignee,
	})
	require.NoError(t, err)
	assert.Equal(t, []events.EventType{events.EventLeadStatusChanged, events.EventLeadAssigned}, dispatcher.types())
}

func TestLeadUpdateNoEventsWhenNothingTracked(t *testing.T) {
	leads := new(MockLeadRepository)
	dispatcher := &recordingDispatcher{}
	svc := newLeadServiceForTest(leads, new(MockIdentityRepository), new(MockCompanyRepository), dispatcher)

	leads.On("GetByID", mock.Anything, "l1").Return(&domain.Lead{
		ID: "l1", Name: "Lead", CompanyID: "c1", OwnerID: "usr-1", Status: domain.StatusNew,
	}, nil)
	leads.On("Update", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Update(context.Background(), userC1, "l1", LeadUpdateInput{
		Name:   "Renamed",
		Status: string(domain.StatusNew),
	})
	require.NoError(t, err)
	assert.Empty(t, dispatcher.types())
}

func TestLeadUpdateDeniedAcrossCompanies(t *testing.T) {
	leads := new(MockLeadRepository)
	svc := newLeadServiceForTest(leads, new(MockIdentityRepository), new(MockCompanyRepository), nil)

	leads.On("GetByID", mock.Anything, "l2").Return(&domain.Lead{
		ID: "l2", CompanyID: "c2", OwnerID: "usr-9", Status: domain.StatusNew,
	}, nil)

	_, err := svc.Update(context.Background(), adminC1, "l2", LeadUpdateInput{Status: string(domain.StatusNew)})
	assert.Equal(t, "FORBIDDEN", domainErrCode(t, err))
	leads.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestLeadDeleteUserMustOwn(t *testing.T) {
	leads := new(MockLeadRepository)
	svc := newLeadServiceForTest(leads, new(MockIdentityRepository), new(MockCompanyRepository), nil)

	// same company, editable by the user, but owned by someone else
	leads.On("GetByID", mock.Anything, "l3").Return(&domain.Lead{
		ID: "l3", CompanyID: "c1", OwnerID: "usr-2", Status: domain.StatusNew,
	}, nil)

	err := svc.Delete(context.Background(), userC1, "l3")
	assert.Equal(t, "FORBIDDEN", domainErrCode(t, err))
	leads.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything)
}

func TestLeadDeleteOwnerEmitsEvent(t *testing.T) {
	leads := new(MockLeadRepository)
	dispatcher := &recordingDispatcher{}
	svc := newLeadServiceForTest(leads, new(MockIdentityRepository), new(MockCompanyRepository), dispatcher)

	leads.On("GetByID", mock.Anything, "l4").Return(&domain.Lead{
		ID: "l4", Name: "Lead", CompanyID: "c1", OwnerID: "usr-1", Status: domain.StatusNew,
	}, nil)
	leads.On("SoftDelete", mock.Anything, "l4").Return(nil)

	err := svc.Delete(context.Background(), userC1, "l4")
	require.NoError(t, err)
	assert.Equal(t, []events.EventType{events.EventLeadDeleted}, dispatcher.types())
	require.Len(t, dispatcher.published, 1)
	assert.Equal(t, "usr-1", dispatcher.published[0].Actor.IdentityID)
	assert.NotEmpty(t, dispatcher.published[0].ID)
}

func TestLeadGetOutsideScopeReadsAsNotFound(t *testing.T) {
	leads := new(MockLeadRepository)
	svc := newLeadServiceForTest(leads, new(MockIdentityRepository), new(MockCompanyRepository), nil)

	leads.On("GetByID", mock.Anything, "l5").Return(&domain.Lead{
		ID: "l5", CompanyID: "c2", OwnerID: "usr-9", Status: domain.StatusNew,
	}, nil)

	_, err := svc.Get(context.Background(), userC1, "l5")
	assert.Equal(t, "NOT_FOUND", domainErrCode(t, err))
}
