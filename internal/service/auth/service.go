package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/REGENCY-14/Finalyear/internal/model"
	"github.com/REGENCY-14/Finalyear/internal/repository"
	"github.com/REGENCY-14/Finalyear/internal/service/audit"
	"github.com/REGENCY-14/Finalyear/internal/service/mail"
	"github.com/REGENCY-14/Finalyear/pkg/apperror"
	"github.com/REGENCY-14/Finalyear/pkg/security"
	"github.com/REGENCY-14/Finalyear/pkg/token"
)

const resetTokenExpiry = 1 * time.Hour

// TokenIssuer is the slice of the token service the auth service needs.
type TokenIssuer interface {
	Issue(subjectID uuid.UUID, email, role string) (string, error)
}

type Service struct {
	personnel  repository.PersonnelRepository
	resetRepo  repository.ResetTokenRepository
	revocation repository.RevocationStore
	tokens     TokenIssuer
	hasher     security.PasswordHasher
	mailer     mail.Service
	auditor    *audit.Service
	logger     zerolog.Logger
}

func NewService(
	personnel repository.PersonnelRepository,
	resetRepo repository.ResetTokenRepository,
	revocation repository.RevocationStore,
	tokens TokenIssuer,
	hasher security.PasswordHasher,
	mailer mail.Service,
	auditor *audit.Service,
	logger zerolog.Logger,
) *Service {
	return &Service{
		personnel:  personnel,
		resetRepo:  resetRepo,
		revocation: revocation,
		tokens:     tokens,
		hasher:     hasher,
		mailer:     mailer,
		auditor:    auditor,
		logger:     logger,
	}
}

// Signup registers a new personnel account and issues its first session
// token. The uniqueness probe is advisory; the unique index on email is the
// final arbiter for concurrent signups.
func (s *Service) Signup(ctx context.Context, req *model.SignupRequest) (*model.AuthResponse, error) {
	if existing, err := s.personnel.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, apperror.Conflictf("email %s is already registered", req.Email)
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Internal(err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooWeak) {
			return nil, apperror.Validation("password too short", nil)
		}
		return nil, apperror.Internal(err)
	}

	p := &model.Personnel{
		Base:          model.Base{ID: uuid.New()},
		Email:         req.Email,
		PasswordHash:  hash,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Role:          req.Role,
		LicenseNumber: req.LicenseNumber,
		Active:        true,
	}

	if err := s.personnel.Create(ctx, p); err != nil {
		// The unique index catches concurrent signups the probe missed.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Conflictf("email %s is already registered", req.Email)
		}
		return nil, apperror.Internal(err)
	}

	signed, err := s.tokens.Issue(p.ID, p.Email, p.Role.String())
	if err != nil {
		return nil, apperror.Internal(err)
	}

	s.auditor.Log(ctx, p.ID, "signup", "personnel", p.ID, model.JSONMap{"email": p.Email, "role": p.Role})

	return &model.AuthResponse{User: p, Token: signed}, nil
}

// Signin verifies credentials and issues a session token. Failed attempts do
// not touch lastLogin.
func (s *Service) Signin(ctx context.Context, email, password string) (*model.AuthResponse, error) {
	p, err := s.personnel.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.New(apperror.Unauthenticated, "invalid credentials")
		}
		return nil, apperror.Internal(err)
	}

	if err := s.hasher.Compare(p.PasswordHash, password); err != nil {
		return nil, apperror.New(apperror.Unauthenticated, "invalid credentials")
	}

	if !p.Active {
		return nil, apperror.New(apperror.Forbidden, "account is deactivated")
	}

	now := time.Now()
	if err := s.personnel.UpdateLastLogin(ctx, p.ID, now); err != nil {
		// Login still succeeds; the stamp is informational.
		s.logger.Warn().Err(err).Str("personnel_id", p.ID.String()).Msg("failed to stamp last login")
	} else {
		p.LastLoginAt = &now
	}

	signed, err := s.tokens.Issue(p.ID, p.Email, p.Role.String())
	if err != nil {
		return nil, apperror.Internal(err)
	}

	s.auditor.Log(ctx, p.ID, "signin", "personnel", p.ID, model.JSONMap{"email": p.Email})

	return &model.AuthResponse{User: p, Token: signed}, nil
}

// Profile returns the live account for an authenticated subject.
func (s *Service) Profile(ctx context.Context, id uuid.UUID) (*model.Personnel, error) {
	p, err := s.personnel.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFoundf("account")
		}
		return nil, apperror.Internal(err)
	}
	return p, nil
}

// Refresh rotates the session: the presented token's jti is revoked for its
// remaining lifetime and a fresh token is issued from the live account.
func (s *Service) Refresh(ctx context.Context, identity *model.AuthContext, claims *token.Claims) (*model.TokenResponse, error) {
	signed, err := s.tokens.Issue(identity.ID, identity.Email, identity.Role.String())
	if err != nil {
		return nil, apperror.Internal(err)
	}

	if err := s.revocation.Revoke(ctx, claims.TokenID, claims.Remaining(time.Now())); err != nil {
		return nil, apperror.Internal(err)
	}

	s.auditor.Log(ctx, identity.ID, "refresh", "personnel", identity.ID, nil)

	return &model.TokenResponse{Token: signed}, nil
}

// Logout revokes the presented token for its remaining lifetime.
func (s *Service) Logout(ctx context.Context, identity *model.AuthContext, claims *token.Claims) error {
	if err := s.revocation.Revoke(ctx, claims.TokenID, claims.Remaining(time.Now())); err != nil {
		return apperror.Internal(err)
	}
	s.auditor.Log(ctx, identity.ID, "logout", "personnel", identity.ID, nil)
	return nil
}

// ForgotPassword stores a reset token and mails it. The response never
// discloses whether the address exists.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	p, err := s.personnel.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return apperror.Internal(err)
	}

	reset := uuid.New().String()
	if err := s.resetRepo.Store(ctx, p.ID, reset, time.Now().Add(resetTokenExpiry)); err != nil {
		return apperror.Internal(err)
	}

	if err := s.mailer.SendPasswordReset(p.Email, reset); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// ResetPassword consumes a reset token and stores the new password hash.
func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	personnelID, err := s.resetRepo.Consume(ctx, resetToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.Validation("invalid or expired reset token", nil)
		}
		return apperror.Internal(err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooWeak) {
			return apperror.Validation("password too short", nil)
		}
		return apperror.Internal(err)
	}

	p, err := s.personnel.Get(ctx, personnelID)
	if err != nil {
		return apperror.Internal(err)
	}

	p.PasswordHash = hash
	if err := s.personnel.Update(ctx, p); err != nil {
		return apperror.Internal(err)
	}

	s.auditor.Log(ctx, personnelID, "reset_password", "personnel", personnelID, nil)
	return nil
}
