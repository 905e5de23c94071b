package symptom

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/REGENCY-14/Finalyear/internal/model"
	"github.com/REGENCY-14/Finalyear/internal/repository"
	"github.com/REGENCY-14/Finalyear/internal/service/audit"
	"github.com/REGENCY-14/Finalyear/pkg/apperror"
)

type Service struct {
	repo        repository.SymptomRepository
	patientRepo repository.PatientRepository
	auditor     *audit.Service
	logger      zerolog.Logger
}

func NewService(repo repository.SymptomRepository, patientRepo repository.PatientRepository, auditor *audit.Service, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		patientRepo: patientRepo,
		auditor:     auditor,
		logger:      logger,
	}
}

// Record inserts the symptom batch and then the session row. The two writes
// are deliberately not transactional: a session insert failure leaves the
// symptoms in place and is reported only in the log.
func (s *Service) Record(ctx context.Context, actorID uuid.UUID, req *model.CreateSymptomsRequest) ([]*model.Symptom, error) {
	if _, err := s.patientRepo.Get(ctx, req.PatientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFoundf("patient")
		}
		return nil, apperror.Internal(err)
	}

	symptoms := make([]*model.Symptom, 0, len(req.Symptoms))
	for _, in := range req.Symptoms {
		symptoms = append(symptoms, &model.Symptom{
			Base:       model.Base{ID: uuid.New()},
			PatientID:  req.PatientID,
			Name:       in.Name,
			Severity:   in.Severity,
			Duration:   in.Duration,
			Notes:      in.Notes,
			RecordedBy: actorID,
		})
	}

	if err := s.repo.CreateBatch(ctx, symptoms); err != nil {
		return nil, apperror.Internal(err)
	}

	session := &model.SymptomSession{
		ID:         uuid.New(),
		PatientID:  req.PatientID,
		Notes:      req.Notes,
		RecordedBy: actorID,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		s.logger.Warn().
			Err(err).
			Str("patient_id", req.PatientID.String()).
			Msg("symptom session insert failed; symptoms retained")
	}

	s.auditor.Log(ctx, actorID, "record", "symptoms", req.PatientID, model.JSONMap{"count": len(symptoms)})
	return symptoms, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Symptom, error) {
	sym, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFoundf("symptom")
		}
		return nil, apperror.Internal(err)
	}
	return sym, nil
}

func (s *Service) List(ctx context.Context, filters *model.SymptomFilters) ([]*model.Symptom, int, error) {
	rows, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return rows, total, nil
}

func (s *Service) Update(ctx context.Context, actorID, id uuid.UUID, req *model.UpdateSymptomRequest) (*model.Symptom, error) {
	sym, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		sym.Name = *req.Name
	}
	if req.Severity != nil {
		sym.Severity = *req.Severity
	}
	if req.Duration != nil {
		sym.Duration = *req.Duration
	}
	if req.Notes != nil {
		sym.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, sym); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFoundf("symptom")
		}
		return nil, apperror.Internal(err)
	}

	s.auditor.Log(ctx, actorID, "update", "symptom", id, nil)
	return sym, nil
}

// Delete removes the row permanently; symptoms have no soft-delete.
func (s *Service) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFoundf("symptom")
		}
		return apperror.Internal(err)
	}
	s.auditor.Log(ctx, actorID, "delete", "symptom", id, nil)
	return nil
}

func (s *Service) Stats(ctx context.Context) (*model.SymptomStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return stats, nil
}
