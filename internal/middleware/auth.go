package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/REGENCY-14/Finalyear/internal/model"
	"github.com/REGENCY-14/Finalyear/internal/repository"
	"github.com/REGENCY-14/Finalyear/pkg/apperror"
	"github.com/REGENCY-14/Finalyear/pkg/httputil"
	"github.com/REGENCY-14/Finalyear/pkg/token"
)

const (
	// ContextIdentity is the gin context key the auth middleware sets.
	ContextIdentity = "identity"
	// ContextTokenClaims carries the raw verified claims for refresh/logout.
	ContextTokenClaims = "token_claims"
)

// TokenVerifier is the slice of the token service the middleware needs.
type TokenVerifier interface {
	Verify(raw string) (*token.Claims, error)
}

type AuthMiddleware struct {
	tokens     TokenVerifier
	personnel  repository.PersonnelRepository
	revocation repository.RevocationStore
}

func NewAuthMiddleware(tokens TokenVerifier, personnel repository.PersonnelRepository, revocation repository.RevocationStore) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:     tokens,
		personnel:  personnel,
		revocation: revocation,
	}
}

// Authenticate verifies the bearer token, re-checks the account against the
// credential store and attaches the identity to the request context. The live
// re-check turns the active flag into a semi-live revocation switch.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, claims, err := m.resolve(c)
		if err != nil {
			httputil.Fail(c, err)
			return
		}
		c.Set(ContextIdentity, identity)
		c.Set(ContextTokenClaims, claims)
		c.Next()
	}
}

// OptionalAuthenticate attaches the identity when a valid token is presented
// and proceeds unauthenticated on any failure.
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, claims, err := m.resolve(c)
		if err == nil {
			c.Set(ContextIdentity, identity)
			c.Set(ContextTokenClaims, claims)
		}
		c.Next()
	}
}

// RequireRole rejects authenticated requests whose role is outside the
// allowed set. It must run after Authenticate.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	allowed := make(map[model.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			httputil.Fail(c, apperror.New(apperror.Unauthenticated, "authentication required"))
			return
		}
		if _, ok := allowed[identity.Role]; !ok {
			httputil.Fail(c, apperror.New(apperror.Forbidden, "insufficient role"))
			return
		}
		c.Next()
	}
}

// IdentityFrom extracts the authenticated identity from the gin context.
func IdentityFrom(c *gin.Context) (*model.AuthContext, bool) {
	v, ok := c.Get(ContextIdentity)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*model.AuthContext)
	return identity, ok
}

// ClaimsFrom extracts the verified token claims from the gin context.
func ClaimsFrom(c *gin.Context) (*token.Claims, bool) {
	v, ok := c.Get(ContextTokenClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*token.Claims)
	return claims, ok
}

func (m *AuthMiddleware) resolve(c *gin.Context) (*model.AuthContext, *token.Claims, error) {
	raw, err := bearerToken(c)
	if err != nil {
		return nil, nil, err
	}

	claims, err := m.tokens.Verify(raw)
	if err != nil {
		if errors.Is(err, token.ErrExpiredToken) {
			return nil, nil, apperror.New(apperror.Unauthenticated, "token expired")
		}
		return nil, nil, apperror.New(apperror.Unauthenticated, "invalid token")
	}

	revoked, err := m.revocation.IsRevoked(c.Request.Context(), claims.TokenID)
	if err != nil {
		// Denylist unreachable: fail closed.
		log.Error().Err(err).Msg("revocation check failed")
		return nil, nil, apperror.Internal(err)
	}
	if revoked {
		return nil, nil, apperror.New(apperror.Unauthenticated, "token revoked")
	}

	identity, err := m.personnel.Get(c.Request.Context(), claims.SubjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperror.New(apperror.Unauthenticated, "account no longer exists")
		}
		return nil, nil, apperror.Internal(err)
	}
	if !identity.Active {
		return nil, nil, apperror.New(apperror.Forbidden, "account is deactivated")
	}

	return &model.AuthContext{
		ID:    identity.ID,
		Email: identity.Email,
		Role:  identity.Role,
	}, claims, nil
}

func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", apperror.New(apperror.Unauthenticated, "missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", apperror.New(apperror.Unauthenticated, "invalid authorization format")
	}
	return parts[1], nil
}
