package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/REGENCY-14/Finalyear/internal/model"
	"github.com/REGENCY-14/Finalyear/internal/repository"
	"github.com/REGENCY-14/Finalyear/pkg/token"
)

type fakeVerifier struct {
	claims *token.Claims
	err    error
}

func (f *fakeVerifier) Verify(string) (*token.Claims, error) {
	return f.claims, f.err
}

type fakePersonnelRepo struct {
	repository.PersonnelRepository
	person *model.Personnel
	err    error
}

func (f *fakePersonnelRepo) Get(context.Context, uuid.UUID) (*model.Personnel, error) {
	return f.person, f.err
}

type fakeRevocation struct {
	revoked bool
	err     error
}

func (f *fakeRevocation) Revoke(context.Context, string, time.Duration) error { return nil }
func (f *fakeRevocation) IsRevoked(context.Context, string) (bool, error) {
	return f.revoked, f.err
}

func activePerson(id uuid.UUID) *model.Personnel {
	return &model.Personnel{
		Base:      model.Base{ID: id},
		Email:     "doc@example.com",
		FirstName: "Ada",
		LastName:  "Mensah",
		Role:      model.RoleDoctor,
		Active:    true,
	}
}

func validClaims(id uuid.UUID) *token.Claims {
	return &token.Claims{
		SubjectID: id,
		Email:     "doc@example.com",
		Role:      "doctor",
		TokenID:   uuid.NewString(),
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
}

func runAuth(t *testing.T, mw *AuthMiddleware, header string, extra ...gin.HandlerFunc) (*httptest.ResponseRecorder, *model.AuthContext) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var captured *model.AuthContext
	r := gin.New()
	handlers := append([]gin.HandlerFunc{mw.Authenticate()}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		captured, _ = IdentityFrom(c)
		c.Status(http.StatusOK)
	})
	r.GET("/protected", handlers...)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	r.ServeHTTP(w, req)
	return w, captured
}

func TestAuthenticateMissingHeader(t *testing.T) {
	mw := NewAuthMiddleware(&fakeVerifier{}, &fakePersonnelRepo{}, &fakeRevocation{})
	w, _ := runAuth(t, mw, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateMalformedHeader(t *testing.T) {
	mw := NewAuthMiddleware(&fakeVerifier{}, &fakePersonnelRepo{}, &fakeRevocation{})

	for _, header := range []string{"sometoken", "Basic abc", "Bearer "} {
		w, _ := runAuth(t, mw, header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestAuthenticateInvalidToken(t *testing.T) {
	mw := NewAuthMiddleware(
		&fakeVerifier{err: token.ErrInvalidToken},
		&fakePersonnelRepo{},
		&fakeRevocation{},
	)
	w, _ := runAuth(t, mw, "Bearer bad")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateExpiredToken(t *testing.T) {
	mw := NewAuthMiddleware(
		&fakeVerifier{err: token.ErrExpiredToken},
		&fakePersonnelRepo{},
		&fakeRevocation{},
	)
	w, _ := runAuth(t, mw, "Bearer expired")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token expired")
}

func TestAuthenticateRevokedToken(t *testing.T) {
	id := uuid.New()
	mw := NewAuthMiddleware(
		&fakeVerifier{claims: validClaims(id)},
		&fakePersonnelRepo{person: activePerson(id)},
		&fakeRevocation{revoked: true},
	)
	w, _ := runAuth(t, mw, "Bearer revoked")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateRevocationStoreDown(t *testing.T) {
	id := uuid.New()
	mw := NewAuthMiddleware(
		&fakeVerifier{claims: validClaims(id)},
		&fakePersonnelRepo{person: activePerson(id)},
		&fakeRevocation{err: assert.AnError},
	)
	w, _ := runAuth(t, mw, "Bearer ok")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAuthenticateDeletedAccount(t *testing.T) {
	id := uuid.New()
	mw := NewAuthMiddleware(
		&fakeVerifier{claims: validClaims(id)},
		&fakePersonnelRepo{err: repository.ErrNotFound},
		&fakeRevocation{},
	)
	w, _ := runAuth(t, mw, "Bearer ok")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateDeactivatedAccount(t *testing.T) {
	id := uuid.New()
	person := activePerson(id)
	person.Active = false
	mw := NewAuthMiddleware(
		&fakeVerifier{claims: validClaims(id)},
		&fakePersonnelRepo{person: person},
		&fakeRevocation{},
	)
	w, _ := runAuth(t, mw, "Bearer ok")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthenticateSetsIdentity(t *testing.T) {
	id := uuid.New()
	mw := NewAuthMiddleware(
		&fakeVerifier{claims: validClaims(id)},
		&fakePersonnelRepo{person: activePerson(id)},
		&fakeRevocation{},
	)
	w, identity := runAuth(t, mw, "Bearer ok")
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, identity)
	assert.Equal(t, id, identity.ID)
	assert.Equal(t, model.RoleDoctor, identity.Role)
}

func TestRequireRole(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name       string
		role       model.Role
		allowed    []model.Role
		wantStatus int
	}{
		{"admin allowed", model.RoleAdmin, []model.Role{model.RoleAdmin}, http.StatusOK},
		{"nurse rejected", model.RoleNurse, []model.Role{model.RoleAdmin}, http.StatusForbidden},
		{"one of several", model.RoleRadiologist, []model.Role{model.RoleDoctor, model.RoleRadiologist}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			person := activePerson(id)
			person.Role = tt.role
			mw := NewAuthMiddleware(
				&fakeVerifier{claims: validClaims(id)},
				&fakePersonnelRepo{person: person},
				&fakeRevocation{},
			)
			w, _ := runAuth(t, mw, "Bearer ok", RequireRole(tt.allowed...))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRequireRoleWithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", RequireRole(model.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuthenticate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mw := NewAuthMiddleware(&fakeVerifier{err: token.ErrInvalidToken}, &fakePersonnelRepo{}, &fakeRevocation{})

	r := gin.New()
	r.GET("/open", mw.OptionalAuthenticate(), func(c *gin.Context) {
		_, ok := IdentityFrom(c)
		assert.False(t, ok)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/open", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
