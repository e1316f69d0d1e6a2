package service

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/lead-service/internal/access"
	"github.com/spec-kit/lead-service/internal/domain"
	"github.com/spec-kit/lead-service/internal/events"
	"github.com/spec-kit/lead-service/internal/repository"
)

func newCommentServiceForTest(comments *MockCommentRepository, leads *MockLeadRepository, dispatcher events.Dispatcher) *CommentService {
	return NewCommentService(CommentDependencies{
		CommentRepo: comments,
		LeadRepo:    leads,
		Dispatcher:  dispatcher,
	})
}

func TestCommentListScopesToCompany(t *testing.T) {
	comments := new(MockCommentRepository)
	svc := newCommentServiceForTest(comments, new(MockLeadRepository), nil)

	comments.On("ListWithFilter", mock.Anything, mock.MatchedBy(func(f repository.CommentFilter) bool {
		return f.CompanyID != nil && *f.CompanyID == "c1" && f.AuthorID == nil
	})).Return([]domain.Comment{}, nil)

	_, err := svc.List(context.Background(), userC1, access.ScopeAll, CommentListFilter{})
	require.NoError(t, err)
	comments.AssertExpectations(t)
}

func TestCommentListMineAddsAuthorFilter(t *testing.T) {
	comments := new(MockCommentRepository)
	svc := newCommentServiceForTest(comments, new(MockLeadRepository), nil)

	comments.On("ListWithFilter", mock.Anything, mock.MatchedBy(func(f repository.CommentFilter) bool {
		return f.AuthorID != nil && *f.AuthorID == "usr-1"
	})).Return([]domain.Comment{}, nil)

	_, err := svc.List(context.Background(), userC1, access.ScopeAuthoredByMe, CommentListFilter{})
	require.NoError(t, err)
}

func TestCommentCreateStampsAuthorAndLeadCompany(t *testing.T) {
	comments := new(MockCommentRepository)
	leads := new(MockLeadRepository)
	dispatcher := &recordingDispatcher{}
	svc := newCommentServiceForTest(comments, leads, dispatcher)

	leads.On("GetByID", mock.Anything, "l1").Return(&domain.Lead{
		ID: "l1", CompanyID: "c1", OwnerID: "usr-2", Status: domain.StatusNew,
	}, nil)
	comments.On("Create", mock.Anything, mock.MatchedBy(func(comment *domain.Comment) bool {
		return comment.CompanyID == "c1" && comment.AuthorID == "usr-1" && comment.LeadID == "l1"
	})).Return(nil)

	comment, err := svc.Create(context.Background(), userC1, CommentCreateInput{
		LeadID: "l1",
		Text:   "called, no answer",
		Status: string(domain.StatusDNP),
	})
	require.NoError(t, err)
	assert.Equal(t, "usr-1", comment.AuthorID)
	assert.Equal(t, []events.EventType{events.EventCommentAdded}, dispatcher.types())
}

func TestCommentCreateDeniedOnForeignLead(t *testing.T) {
	comments := new(MockCommentRepository)
	leads := new(MockLeadRepository)
	svc := newCommentServiceForTest(comments, leads, nil)

	leads.On("GetByID", mock.Anything, "l2").Return(&domain.Lead{
		ID: "l2", CompanyID: "c2", OwnerID: "usr-9", Status: domain.StatusNew,
	}, nil)

	_, err := svc.Create(context.Background(), userC1, CommentCreateInput{
		LeadID: "l2",
		Text:   "note",
		Status: string(domain.StatusNew),
	})
	assert.Equal(t, "NOT_FOUND", domainErrCode(t, err))
	comments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCommentCreateRejectsUnknownStatus(t *testing.T) {
	leads := new(MockLeadRepository)
	svc := newCommentServiceForTest(new(MockCommentRepository), leads, nil)

	leads.On("GetByID", mock.Anything, "l1").Return(&domain.Lead{
		ID: "l1", CompanyID: "c1", Status: domain.StatusNew,
	}, nil)

	_, err := svc.Create(context.Background(), userC1, CommentCreateInput{
		LeadID: "l1",
		Text:   "note",
		Status: "Escalated",
	})
	assert.Equal(t, "VALIDATION_FAILED", domainErrCode(t, err))
}

func TestCommentUpdateUserMustBeAuthor(t *testing.T) {
	comments := new(MockCommentRepository)
	svc := newCommentServiceForTest(comments, new(MockLeadRepository), nil)

	comments.On("GetByID", mock.Anything, "cm1").Return(&domain.Comment{
		ID: "cm1", CompanyID: "c1", AuthorID: "usr-2", Status: domain.StatusNew,
	}, nil)

	_, err := svc.Update(context.Background(), userC1, "cm1", CommentUpdateInput{
		Text:   "edited",
		Status: string(domain.StatusNew),
	})
	assert.Equal(t, "FORBIDDEN", domainErrCode(t, err))
	comments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCommentUpdateAdminMayEditAny(t *testing.T) {
	comments := new(MockCommentRepository)
	svc := newCommentServiceForTest(comments, new(MockLeadRepository), nil)

	comments.On("GetByID", mock.Anything, "cm2").Return(&domain.Comment{
		ID: "cm2", CompanyID: "c1", AuthorID: "usr-2", Status: domain.StatusNew,
	}, nil)
	comments.On("Update", mock.Anything, mock.Anything).Return(nil)

	comment, err := svc.Update(context.Background(), adminC1, "cm2", CommentUpdateInput{
		Text:   "corrected",
		Status: string(domain.StatusRejected),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, comment.Status)
}

func TestPreviewTextKeepsRunesIntact(t *testing.T) {
	short := "brief note"
	assert.Equal(t, short, previewText(short))

	// "a" shifts every two-byte rune onto an odd offset, so the raw cut
	// would land mid-rune
	long := "a" + strings.Repeat("é", commentPreviewLength)
	preview := previewText(long)
	assert.LessOrEqual(t, len(preview), commentPreviewLength)
	assert.True(t, utf8.ValidString(preview))
}

func TestCommentDeleteMirrorsEditRule(t *testing.T) {
	comments := new(MockCommentRepository)
	svc := newCommentServiceForTest(comments, new(MockLeadRepository), nil)

	comments.On("GetByID", mock.Anything, "cm3").Return(&domain.Comment{
		ID: "cm3", CompanyID: "c1", AuthorID: "usr-1", Status: domain.StatusNew,
	}, nil)
	comments.On("SoftDelete", mock.Anything, "cm3").Return(nil)

	require.NoError(t, svc.Delete(context.Background(), userC1, "cm3"))
	comments.AssertExpectations(t)
}
