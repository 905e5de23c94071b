package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/REGENCY-14/Finalyear/internal/model"
	"github.com/REGENCY-14/Finalyear/internal/repository"
)

// Service records who did what to which entity. Logging is best-effort: an
// audit failure is logged and swallowed, never surfaced to the caller.
type Service struct {
	repo   repository.AuditRepository
	logger zerolog.Logger
}

func NewService(repo repository.AuditRepository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Log(ctx context.Context, actorID uuid.UUID, action, entityType string, entityID uuid.UUID, metadata model.JSONMap) {
	entry := &model.AuditLog{
		ID:         uuid.New(),
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   metadata,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Warn().
			Err(err).
			Str("action", action).
			Str("entity_type", entityType).
			Str("entity_id", entityID.String()).
			Msg("audit log write failed")
	}
}
