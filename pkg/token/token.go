package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims is the decoded payload of a session token.
type Claims struct {
	SubjectID uuid.UUID
	Email     string
	Role      string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Remaining reports the time until natural expiry.
func (c *Claims) Remaining(now time.Time) time.Duration {
	return c.ExpiresAt.Sub(now)
}

// Config holds the signing secret and token lifetime, injected at construction.
type Config struct {
	Secret   string
	Lifetime time.Duration
	Issuer   string
}

// Service issues and verifies HS256 session tokens.
type Service struct {
	secret   []byte
	lifetime time.Duration
	issuer   string
	now      func() time.Time
}

func NewService(cfg Config) *Service {
	lifetime := cfg.Lifetime
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	return &Service{
		secret:   []byte(cfg.Secret),
		lifetime: lifetime,
		issuer:   cfg.Issuer,
		now:      time.Now,
	}
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Issue signs a token carrying the identity's id, email and role.
func (s *Service) Issue(subjectID uuid.UUID, email, role string) (string, error) {
	now := s.now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID.String(),
			Issuer:    s.issuer,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
		Email: email,
		Role:  role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token. It returns ErrExpiredToken for tokens
// past their expiry and ErrInvalidToken for anything else that fails.
func (s *Service) Verify(raw string) (*Claims, error) {
	var claims sessionClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}

	subjectID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return nil, ErrInvalidToken
	}

	return &Claims{
		SubjectID: subjectID,
		Email:     claims.Email,
		Role:      claims.Role,
		TokenID:   claims.ID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
