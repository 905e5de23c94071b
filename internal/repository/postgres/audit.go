package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/REGENCY-14/Finalyear/internal/model"
	"github.com/REGENCY-14/Finalyear/internal/repository"
)

type auditRepository struct {
	db *sqlx.DB
}

func NewAuditRepository(db *sqlx.DB) repository.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *model.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, actor_id, action, entity_type, entity_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	entry.CreatedAt = time.Now()

	var metadata []byte
	if entry.Metadata != nil {
		var err error
		metadata, err = json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal audit metadata: %w", err)
		}
	}

	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.ActorID, entry.Action, entry.EntityType, entry.EntityID, metadata, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}
