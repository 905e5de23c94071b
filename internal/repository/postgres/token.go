package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/REGENCY-14/Finalyear/internal/repository"
)

type resetTokenRepository struct {
	db *sqlx.DB
}

func NewResetTokenRepository(db *sqlx.DB) repository.ResetTokenRepository {
	return &resetTokenRepository{db: db}
}

func (r *resetTokenRepository) Store(ctx context.Context, personnelID uuid.UUID, token string, expiresAt time.Time) error {
	query := `
		INSERT INTO password_reset_tokens (token, personnel_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query, token, personnelID, expiresAt, time.Now()); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	return nil
}

// Consume validates and deletes the token in one statement so a token can be
// used at most once.
func (r *resetTokenRepository) Consume(ctx context.Context, token string) (uuid.UUID, error) {
	query := `
		DELETE FROM password_reset_tokens
		WHERE token = $1 AND expires_at > $2
		RETURNING personnel_id
	`
	var personnelID uuid.UUID
	if err := r.db.GetContext(ctx, &personnelID, query, token, time.Now()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, repository.ErrNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to consume reset token: %w", err)
	}
	return personnelID, nil
}
