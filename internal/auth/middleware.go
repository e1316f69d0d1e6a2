package auth

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/lead-service/internal/access"
	"github.com/spec-kit/lead-service/internal/domain"
	"github.com/spec-kit/lead-service/internal/persistence"
	"github.com/spec-kit/lead-service/internal/repository"
	apperrors "github.com/spec-kit/lead-service/pkg/util"
)

const principalKey = "auth_principal"

const profileCachePrefix = "profile:"

// Principal represents the authenticated caller.
type Principal struct {
	Identity *domain.Identity
}

// Actor converts the principal into the value the access engine consumes.
func (p *Principal) Actor() access.Actor {
	return access.Actor{
		ID:        p.Identity.ID,
		Role:      p.Identity.Role,
		CompanyID: p.Identity.CompanyID,
	}
}

// AuthMiddleware validates bearer tokens and loads the live profile.
// Profiles are cached in Redis briefly so a request does not always
// cost a Postgres lookup; a soft-deleted profile is rejected either way.
type AuthMiddleware struct {
	tokens     *TokenManager
	identities repository.IdentityRepository
	cache      *persistence.Redis
	cacheTTL   time.Duration
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, identities repository.IdentityRepository, cache *persistence.Redis, cacheTTL time.Duration) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, identities: identities, cache: cache, cacheTTL: cacheTTL}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	identity, err := m.loadIdentity(c.Context(), claims.IdentityID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewUnauthorized("profile not found or not active")
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{Identity: identity})
	return c.Next()
}

func (m *AuthMiddleware) loadIdentity(ctx context.Context, id string) (*domain.Identity, error) {
	if cached := m.fromCache(ctx, id); cached != nil {
		return cached, nil
	}

	identity, err := m.identities.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	m.toCache(ctx, identity)
	return identity, nil
}

func (m *AuthMiddleware) fromCache(ctx context.Context, id string) *domain.Identity {
	if m.cache == nil || m.cache.Client == nil {
		return nil
	}
	payload, err := m.cache.Client.Get(ctx, profileCachePrefix+id).Bytes()
	if err != nil {
		return nil
	}
	var identity domain.Identity
	if err := json.Unmarshal(payload, &identity); err != nil {
		return nil
	}
	return &identity
}

func (m *AuthMiddleware) toCache(ctx context.Context, identity *domain.Identity) {
	if m.cache == nil || m.cache.Client == nil {
		return
	}
	payload, err := json.Marshal(identity)
	if err != nil {
		return
	}
	_ = m.cache.Client.Set(ctx, profileCachePrefix+identity.ID, payload, m.cacheTTL).Err()
}

// InvalidateProfile drops a cached profile after it is mutated or
// soft-deleted so stale role/company data cannot outlive the change.
func (m *AuthMiddleware) InvalidateProfile(ctx context.Context, id string) {
	if m.cache == nil || m.cache.Client == nil {
		return
	}
	_ = m.cache.Client.Del(ctx, profileCachePrefix+id).Err()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok && principal.Identity != nil
}
