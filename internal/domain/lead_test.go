package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLeadStatusAcceptsAllLiterals(t *testing.T) {
	for _, literal := range []string{
		"New", "In Conversation", "DNP", "DND", "Not Interested",
		"Out of reach", "Wrong details", "Rejected", "PO",
	} {
		status, err := ParseLeadStatus(literal)
		require.NoError(t, err, literal)
		assert.Equal(t, LeadStatus(literal), status)
	}
}

func TestParseLeadStatusRejectsUnknownAndCaseVariants(t *testing.T) {
	for _, literal := range []string{"", "new", "NEW", "In conversation", "Closed", "po"} {
		_, err := ParseLeadStatus(literal)
		assert.Error(t, err, literal)
	}
}

func TestKnownRole(t *testing.T) {
	assert.True(t, KnownRole(RoleSuperAdmin))
	assert.True(t, KnownRole(RoleAdmin))
	assert.True(t, KnownRole(RoleUser))
	assert.False(t, KnownRole("Owner"))
	assert.False(t, KnownRole(""))
	assert.False(t, KnownRole("superadmin"))
}
