package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/REGENCY-14/Finalyear/internal/model"
	"github.com/REGENCY-14/Finalyear/internal/repository"
)

type symptomRepository struct {
	db *sqlx.DB
}

func NewSymptomRepository(db *sqlx.DB) repository.SymptomRepository {
	return &symptomRepository{db: db}
}

func (r *symptomRepository) CreateBatch(ctx context.Context, symptoms []*model.Symptom) error {
	query := `
		INSERT INTO symptoms (id, patient_id, name, severity, duration, notes, recorded_by, created_at, updated_at)
		VALUES (:id, :patient_id, :name, :severity, :duration, :notes, :recorded_by, :created_at, :updated_at)
	`
	now := time.Now()
	for _, s := range symptoms {
		s.CreatedAt = now
		s.UpdatedAt = now
	}
	if _, err := r.db.NamedExecContext(ctx, query, symptoms); err != nil {
		return fmt.Errorf("failed to create symptoms: %w", err)
	}
	return nil
}

// CreateSession records the visit grouping. Symptom rows are not keyed to the
// session, so a failure here leaves already-inserted symptoms in place.
func (r *symptomRepository) CreateSession(ctx context.Context, session *model.SymptomSession) error {
	query := `
		INSERT INTO symptom_sessions (id, patient_id, notes, recorded_by, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	session.RecordedAt = time.Now()
	if _, err := r.db.ExecContext(ctx, query,
		session.ID, session.PatientID, session.Notes, session.RecordedBy, session.RecordedAt); err != nil {
		return fmt.Errorf("failed to create symptom session: %w", err)
	}
	return nil
}

func (r *symptomRepository) Get(ctx context.Context, id uuid.UUID) (*model.Symptom, error) {
	query := `SELECT * FROM symptoms WHERE id = $1`
	var s model.Symptom
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get symptom: %w", err)
	}
	return &s, nil
}

func (r *symptomRepository) Update(ctx context.Context, s *model.Symptom) error {
	query := `
		UPDATE symptoms
		SET name = $1, severity = $2, duration = $3, notes = $4, updated_at = $5
		WHERE id = $6
	`
	s.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, query, s.Name, s.Severity, s.Duration, s.Notes, s.UpdatedAt, s.ID)
	if err != nil {
		return fmt.Errorf("failed to update symptom: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the row; symptoms are hard-deleted.
func (r *symptomRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM symptoms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete symptom: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *symptomRepository) List(ctx context.Context, filters *model.SymptomFilters) ([]*model.Symptom, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	i := 1

	if filters.PatientID != nil {
		where += fmt.Sprintf(" AND patient_id = $%d", i)
		args = append(args, *filters.PatientID)
		i++
	}
	if filters.Severity != "" {
		where += fmt.Sprintf(" AND severity = $%d", i)
		args = append(args, filters.Severity)
		i++
	}
	if filters.SearchTerm != "" {
		where += fmt.Sprintf(" AND name ILIKE $%d", i)
		args = append(args, "%"+filters.SearchTerm+"%")
		i++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM symptoms`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count symptoms: %w", err)
	}

	query := `SELECT * FROM symptoms` + where + fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", i, i+1)
	args = append(args, filters.Limit, filters.Offset)

	var rows []*model.Symptom
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list symptoms: %w", err)
	}
	return rows, total, nil
}

func (r *symptomRepository) Stats(ctx context.Context) (*model.SymptomStats, error) {
	stats := &model.SymptomStats{BySeverity: make(map[string]int)}

	if err := r.db.GetContext(ctx, &stats.Total, `SELECT COUNT(*) FROM symptoms`); err != nil {
		return nil, fmt.Errorf("failed to count symptoms: %w", err)
	}

	rows, err := r.db.QueryxContext(ctx, `SELECT severity, COUNT(*) FROM symptoms GROUP BY severity`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate symptoms by severity: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var severity string
		var count int
		if err := rows.Scan(&severity, &count); err != nil {
			return nil, fmt.Errorf("failed to scan severity aggregate: %w", err)
		}
		stats.BySeverity[severity] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.db.SelectContext(ctx, &stats.TopNames,
		`SELECT name, COUNT(*) AS count FROM symptoms GROUP BY name ORDER BY count DESC LIMIT 10`); err != nil {
		return nil, fmt.Errorf("failed to aggregate symptom names: %w", err)
	}
	return stats, nil
}
