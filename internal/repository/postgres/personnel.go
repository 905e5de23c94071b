package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/REGENCY-14/Finalyear/internal/model"
	"github.com/REGENCY-14/Finalyear/internal/repository"
)

type personnelRepository struct {
	db *sqlx.DB
}

func NewPersonnelRepository(db *sqlx.DB) repository.PersonnelRepository {
	return &personnelRepository{db: db}
}

func (r *personnelRepository) Create(ctx context.Context, p *model.Personnel) error {
	query := `
		INSERT INTO personnel (id, email, password_hash, first_name, last_name, role, license_number, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Email, p.PasswordHash, p.FirstName, p.LastName,
		p.Role, p.LicenseNumber, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		// 23505: unique_violation on the email index
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("email already registered: %w", repository.ErrDuplicate)
		}
		return fmt.Errorf("failed to create personnel: %w", err)
	}
	return nil
}

func (r *personnelRepository) Get(ctx context.Context, id uuid.UUID) (*model.Personnel, error) {
	query := `SELECT * FROM personnel WHERE id = $1`
	var p model.Personnel
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get personnel: %w", err)
	}
	return &p, nil
}

func (r *personnelRepository) GetByEmail(ctx context.Context, email string) (*model.Personnel, error) {
	query := `SELECT * FROM personnel WHERE email = $1`
	var p model.Personnel
	if err := r.db.GetContext(ctx, &p, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get personnel by email: %w", err)
	}
	return &p, nil
}

func (r *personnelRepository) Update(ctx context.Context, p *model.Personnel) error {
	query := `
		UPDATE personnel
		SET first_name = $1, last_name = $2, license_number = $3, password_hash = $4, updated_at = $5
		WHERE id = $6
	`
	p.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, query,
		p.FirstName, p.LastName, p.LicenseNumber, p.PasswordHash, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update personnel: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *personnelRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE personnel SET last_login_at = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, at, id); err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

func (r *personnelRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE personnel SET active = false, updated_at = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate personnel: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *personnelRepository) List(ctx context.Context, filters *model.PersonnelFilters) ([]*model.Personnel, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	i := 1

	if filters.Role != "" {
		where += fmt.Sprintf(" AND role = $%d", i)
		args = append(args, filters.Role)
		i++
	}
	if filters.SearchTerm != "" {
		where += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)", i, i, i)
		args = append(args, "%"+filters.SearchTerm+"%")
		i++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM personnel`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count personnel: %w", err)
	}

	query := `SELECT * FROM personnel` + where + fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", i, i+1)
	args = append(args, filters.Limit, filters.Offset)

	var rows []*model.Personnel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list personnel: %w", err)
	}
	return rows, total, nil
}
