package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/REGENCY-14/Finalyear/internal/model"
)

var (
	// ErrNotFound is returned by repositories when no row matches.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("duplicate")
)

type PersonnelRepository interface {
	Create(ctx context.Context, p *model.Personnel) error
	Get(ctx context.Context, id uuid.UUID) (*model.Personnel, error)
	GetByEmail(ctx context.Context, email string) (*model.Personnel, error)
	Update(ctx context.Context, p *model.Personnel) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters *model.PersonnelFilters) ([]*model.Personnel, int, error)
}

type PatientRepository interface {
	Create(ctx context.Context, p *model.Patient) error
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	FindDuplicate(ctx context.Context, firstName, lastName string, dob time.Time) (*model.Patient, error)
	Update(ctx context.Context, p *model.Patient) error
	SoftDelete(ctx context.Context, id, deletedBy uuid.UUID, at time.Time) error
	List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, int, error)
	Stats(ctx context.Context, recentWindow time.Duration) (*model.PatientStats, error)
}

type SymptomRepository interface {
	CreateBatch(ctx context.Context, symptoms []*model.Symptom) error
	CreateSession(ctx context.Context, session *model.SymptomSession) error
	Get(ctx context.Context, id uuid.UUID) (*model.Symptom, error)
	Update(ctx context.Context, s *model.Symptom) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters *model.SymptomFilters) ([]*model.Symptom, int, error)
	Stats(ctx context.Context) (*model.SymptomStats, error)
}

type ImageRepository interface {
	Create(ctx context.Context, img *model.XRayImage) error
	Get(ctx context.Context, id uuid.UUID) (*model.XRayImage, error)
	Update(ctx context.Context, img *model.XRayImage) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters *model.ImageFilters) ([]*model.XRayImage, int, error)
	Stats(ctx context.Context) (*model.ImageStats, error)
}

type ResetTokenRepository interface {
	Store(ctx context.Context, personnelID uuid.UUID, token string, expiresAt time.Time) error
	Consume(ctx context.Context, token string) (uuid.UUID, error)
}

type AuditRepository interface {
	Create(ctx context.Context, entry *model.AuditLog) error
}

// RevocationStore is the token denylist consulted by the auth middleware.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
