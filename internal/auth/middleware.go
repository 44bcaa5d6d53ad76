package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// AuthMiddleware validates bearer tokens and loads caller identities.
type AuthMiddleware struct {
	tokens *TokenManager
	users  repository.UserRepository
	cache  PrincipalCache
}

// NewAuthMiddleware constructs middleware. cache may be nil.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository, cache PrincipalCache) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, cache: cache}
}

// Handle enforces authentication for protected routes and stores the
// caller identity in request locals.
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

	user, err := m.loadUser(c, claims.Subject)
	if err != nil {
		if err == repository.ErrNotFound {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.ToDomainError(err)
	}

	c.Locals(principalKey, &domain.Identity{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	return c.Next()
}

func (m *AuthMiddleware) loadUser(c *fiber.Ctx, id string) (*domain.User, error) {
	if m.cache != nil {
		if user, ok := m.cache.Get(c.Context(), id); ok {
			return user, nil
		}
	}
	user, err := m.users.GetByID(c.Context(), id)
	if err != nil {
		return nil, err
	}
	if m.cache != nil {
		m.cache.Set(c.Context(), user)
	}
	return user, nil
}

// CallerFromContext retrieves the authenticated identity.
func CallerFromContext(c *fiber.Ctx) (domain.Identity, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return domain.Identity{}, false
	}
	identity, ok := val.(*domain.Identity)
	if !ok {
		return domain.Identity{}, false
	}
	return *identity, true
}
