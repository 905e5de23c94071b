package personnel

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/REGENCY-14/Finalyear/internal/model"
	"github.com/REGENCY-14/Finalyear/internal/repository"
	"github.com/REGENCY-14/Finalyear/internal/service/audit"
	"github.com/REGENCY-14/Finalyear/pkg/apperror"
)

type Service struct {
	repo    repository.PersonnelRepository
	auditor *audit.Service
}

func NewService(repo repository.PersonnelRepository, auditor *audit.Service) *Service {
	return &Service{repo: repo, auditor: auditor}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Personnel, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFoundf("personnel")
		}
		return nil, apperror.Internal(err)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, filters *model.PersonnelFilters) ([]*model.Personnel, int, error) {
	rows, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return rows, total, nil
}

func (s *Service) Update(ctx context.Context, actorID, id uuid.UUID, req *model.UpdatePersonnelRequest) (*model.Personnel, error) {
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
	if req.LicenseNumber != nil {
		p.LicenseNumber = req.LicenseNumber
	}

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFoundf("personnel")
		}
		return nil, apperror.Internal(err)
	}

	s.auditor.Log(ctx, actorID, "update", "personnel", id, nil)
	return p, nil
}

// Deactivate flips the active flag. Accounts are never hard-deleted, and the
// auth middleware's live re-check makes the flag take effect on the next
// request even for still-valid tokens.
func (s *Service) Deactivate(ctx context.Context, actorID, id uuid.UUID) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFoundf("personnel")
		}
		return apperror.Internal(err)
	}
	s.auditor.Log(ctx, actorID, "deactivate", "personnel", id, nil)
	return nil
}
