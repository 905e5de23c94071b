package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(now time.Time) *Service {
	svc := NewService(Config{
		Secret:   "test-secret",
		Lifetime: 24 * time.Hour,
		Issuer:   "test",
	})
	svc.now = func() time.Time { return now }
	return svc
}

func TestIssueAndVerify(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(now)
	subjectID := uuid.New()

	raw, err := svc.Issue(subjectID, "doc@example.com", "doctor")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := svc.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, subjectID, claims.SubjectID)
	assert.Equal(t, "doc@example.com", claims.Email)
	assert.Equal(t, "doctor", claims.Role)
	assert.NotEmpty(t, claims.TokenID)
	assert.Equal(t, now.Add(24*time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestVerifyExpired(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(issued)

	raw, err := svc.Issue(uuid.New(), "doc@example.com", "doctor")
	require.NoError(t, err)

	// Just past the 24h lifetime.
	svc.now = func() time.Time { return issued.Add(24*time.Hour + time.Minute) }

	_, err = svc.Verify(raw)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := newTestService(now)

	raw, err := issuer.Issue(uuid.New(), "doc@example.com", "doctor")
	require.NoError(t, err)

	verifier := NewService(Config{Secret: "other-secret"})
	verifier.now = func() time.Time { return now }

	_, err = verifier.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyGarbage(t *testing.T) {
	svc := newTestService(time.Now())

	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := svc.Verify(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestTokenIDsAreUnique(t *testing.T) {
	svc := newTestService(time.Now())
	subjectID := uuid.New()

	first, err := svc.Issue(subjectID, "doc@example.com", "doctor")
	require.NoError(t, err)
	second, err := svc.Issue(subjectID, "doc@example.com", "doctor")
	require.NoError(t, err)

	c1, err := svc.Verify(first)
	require.NoError(t, err)
	c2, err := svc.Verify(second)
	require.NoError(t, err)
	assert.NotEqual(t, c1.TokenID, c2.TokenID)
}

func TestClaimsRemaining(t *testing.T) {
	now := time.Now()
	c := &Claims{ExpiresAt: now.Add(time.Hour)}
	assert.Equal(t, time.Hour, c.Remaining(now))
	assert.Negative(t, c.Remaining(now.Add(2*time.Hour)))
}
