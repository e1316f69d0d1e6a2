package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/lead-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 30)

	identity := &domain.Identity{ID: "usr-1", Role: domain.RoleAdmin, CompanyID: "c1"}
	token, expiresAt, err := tm.GenerateToken(identity)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), expiresAt, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "usr-1", claims.IdentityID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.Equal(t, "c1", claims.CompanyID)
}

func TestTokenSuperAdminOmitsCompany(t *testing.T) {
	tm := NewTokenManager("test-secret", 30)

	token, _, err := tm.GenerateToken(&domain.Identity{ID: "sa-1", Role: domain.RoleSuperAdmin})
	require.NoError(t, err)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Empty(t, claims.CompanyID)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("secret-a", 30)
	other := NewTokenManager("secret-b", 30)

	token, _, err := tm.GenerateToken(&domain.Identity{ID: "usr-1", Role: domain.RoleUser, CompanyID: "c1"})
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	assert.Error(t, err)
}

func TestTokenRejectsExpired(t *testing.T) {
	tm := &TokenManager{secret: []byte("test-secret"), ttl: -time.Minute}

	token, _, err := tm.GenerateToken(&domain.Identity{ID: "usr-1", Role: domain.RoleUser, CompanyID: "c1"})
	require.NoError(t, err)

	_, err = tm.ParseToken(token)
	assert.Error(t, err)
}

func TestPasswordHashAndCompare(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.NoError(t, ComparePassword(hash, "s3cret"))
	assert.Error(t, ComparePassword(hash, "wrong"))
}
