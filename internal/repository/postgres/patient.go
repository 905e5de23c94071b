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

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Create(ctx context.Context, p *model.Patient) error {
	query := `
		INSERT INTO patients (id, first_name, last_name, date_of_birth, gender, phone, email, address,
			medical_history, is_deleted, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, false, $10, $11, $12)
	`
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.FirstName, p.LastName, p.DateOfBirth, p.Gender, p.Phone, p.Email, p.Address,
		p.MedicalHistory, p.CreatedBy, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT * FROM patients WHERE id = $1 AND is_deleted = false`
	var p model.Patient
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &p, nil
}

// FindDuplicate is an advisory read-then-write probe; concurrent creates can
// still race past it.
func (r *patientRepository) FindDuplicate(ctx context.Context, firstName, lastName string, dob time.Time) (*model.Patient, error) {
	query := `
		SELECT * FROM patients
		WHERE lower(first_name) = lower($1) AND lower(last_name) = lower($2)
		  AND date_of_birth = $3 AND is_deleted = false
		LIMIT 1
	`
	var p model.Patient
	if err := r.db.GetContext(ctx, &p, query, firstName, lastName, dob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to probe duplicate patient: %w", err)
	}
	return &p, nil
}

func (r *patientRepository) Update(ctx context.Context, p *model.Patient) error {
	query := `
		UPDATE patients
		SET first_name = $1, last_name = $2, date_of_birth = $3, gender = $4, phone = $5,
			email = $6, address = $7, medical_history = $8, updated_by = $9, updated_at = $10
		WHERE id = $11 AND is_deleted = false
	`
	p.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, query,
		p.FirstName, p.LastName, p.DateOfBirth, p.Gender, p.Phone,
		p.Email, p.Address, p.MedicalHistory, p.UpdatedBy, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SoftDelete flags the row; it is never removed.
func (r *patientRepository) SoftDelete(ctx context.Context, id, deletedBy uuid.UUID, at time.Time) error {
	query := `
		UPDATE patients
		SET is_deleted = true, deleted_at = $1, deleted_by = $2, updated_at = $1
		WHERE id = $3 AND is_deleted = false
	`
	res, err := r.db.ExecContext(ctx, query, at, deletedBy, id)
	if err != nil {
		return fmt.Errorf("failed to soft delete patient: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *patientRepository) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, int, error) {
	where := ` WHERE is_deleted = false`
	args := []interface{}{}
	i := 1

	if filters.Gender != "" {
		where += fmt.Sprintf(" AND gender = $%d", i)
		args = append(args, filters.Gender)
		i++
	}
	if filters.SearchTerm != "" {
		where += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR phone ILIKE $%d OR email ILIKE $%d)", i, i, i, i)
		args = append(args, "%"+filters.SearchTerm+"%")
		i++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM patients`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count patients: %w", err)
	}

	query := `SELECT * FROM patients` + where + fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", i, i+1)
	args = append(args, filters.Limit, filters.Offset)

	var rows []*model.Patient
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list patients: %w", err)
	}
	return rows, total, nil
}

func (r *patientRepository) Stats(ctx context.Context, recentWindow time.Duration) (*model.PatientStats, error) {
	stats := &model.PatientStats{ByGender: make(map[string]int)}

	if err := r.db.GetContext(ctx, &stats.Total,
		`SELECT COUNT(*) FROM patients WHERE is_deleted = false`); err != nil {
		return nil, fmt.Errorf("failed to count patients: %w", err)
	}
	if err := r.db.GetContext(ctx, &stats.DeletedCount,
		`SELECT COUNT(*) FROM patients WHERE is_deleted = true`); err != nil {
		return nil, fmt.Errorf("failed to count deleted patients: %w", err)
	}
	if err := r.db.GetContext(ctx, &stats.RecentCount,
		`SELECT COUNT(*) FROM patients WHERE is_deleted = false AND created_at > $1`,
		time.Now().Add(-recentWindow)); err != nil {
		return nil, fmt.Errorf("failed to count recent patients: %w", err)
	}

	rows, err := r.db.QueryxContext(ctx,
		`SELECT gender, COUNT(*) FROM patients WHERE is_deleted = false GROUP BY gender`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate patients by gender: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var gender string
		var count int
		if err := rows.Scan(&gender, &count); err != nil {
			return nil, fmt.Errorf("failed to scan gender aggregate: %w", err)
		}
		stats.ByGender[gender] = count
	}
	return stats, rows.Err()
}
