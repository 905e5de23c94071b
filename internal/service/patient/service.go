package patient

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/REGENCY-14/Finalyear/internal/model"
	"github.com/REGENCY-14/Finalyear/internal/repository"
	"github.com/REGENCY-14/Finalyear/internal/service/audit"
	"github.com/REGENCY-14/Finalyear/pkg/apperror"
)

const (
	statsCacheKey    = "patient_stats"
	statsCacheTTL    = 30 * time.Second
	statsRecentAfter = 30 * 24 * time.Hour
)

type Service struct {
	repo    repository.PatientRepository
	auditor *audit.Service
	cache   *gocache.Cache
}

func NewService(repo repository.PatientRepository, auditor *audit.Service) *Service {
	return &Service{
		repo:    repo,
		auditor: auditor,
		cache:   gocache.New(statsCacheTTL, 2*statsCacheTTL),
	}
}

// Create inserts a patient stamped with the acting identity. The duplicate
// probe is read-then-write; two concurrent identical creates can both pass.
func (s *Service) Create(ctx context.Context, actorID uuid.UUID, req *model.CreatePatientRequest) (*model.Patient, error) {
	if dup, err := s.repo.FindDuplicate(ctx, req.FirstName, req.LastName, req.DateOfBirth); err == nil && dup != nil {
		return nil, apperror.Conflictf("patient %s %s with the same date of birth already exists", req.FirstName, req.LastName)
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Internal(err)
	}

	p := &model.Patient{
		Base:           model.Base{ID: uuid.New()},
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		DateOfBirth:    req.DateOfBirth,
		Gender:         req.Gender,
		Phone:          req.Phone,
		Email:          req.Email,
		Address:        req.Address,
		MedicalHistory: req.MedicalHistory,
		CreatedBy:      actorID,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, apperror.Internal(err)
	}

	s.auditor.Log(ctx, actorID, "create", "patient", p.ID, nil)
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFoundf("patient")
		}
		return nil, apperror.Internal(err)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, int, error) {
	rows, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return rows, total, nil
}

// Update merges the provided fields onto the stored row and stamps updatedBy.
func (s *Service) Update(ctx context.Context, actorID, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		p.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		p.LastName = *req.LastName
	}
	if req.DateOfBirth != nil {
		p.DateOfBirth = *req.DateOfBirth
	}
	if req.Gender != nil {
		p.Gender = *req.Gender
	}
	if req.Phone != nil {
		p.Phone = req.Phone
	}
	if req.Email != nil {
		p.Email = req.Email
	}
	if req.Address != nil {
		p.Address = req.Address
	}
	if req.MedicalHistory != nil {
		p.MedicalHistory = req.MedicalHistory
	}
	p.UpdatedBy = &actorID

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFoundf("patient")
		}
		return nil, apperror.Internal(err)
	}

	s.auditor.Log(ctx, actorID, "update", "patient", id, nil)
	return p, nil
}

// Delete soft-deletes: the row is retained with isDeleted set and the acting
// admin recorded.
func (s *Service) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id, actorID, time.Now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFoundf("patient")
		}
		return apperror.Internal(err)
	}
	s.auditor.Log(ctx, actorID, "delete", "patient", id, nil)
	return nil
}

func (s *Service) Stats(ctx context.Context) (*model.PatientStats, error) {
	if cached, ok := s.cache.Get(statsCacheKey); ok {
		return cached.(*model.PatientStats), nil
	}

	stats, err := s.repo.Stats(ctx, statsRecentAfter)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	s.cache.SetDefault(statsCacheKey, stats)
	return stats, nil
}
