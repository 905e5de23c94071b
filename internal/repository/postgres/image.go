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

type imageRepository struct {
	db *sqlx.DB
}

func NewImageRepository(db *sqlx.DB) repository.ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(ctx context.Context, img *model.XRayImage) error {
	query := `
		INSERT INTO xray_images (id, patient_id, file_path, file_size, mime_type, image_type,
			body_part, notes, uploaded_by, public_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	img.CreatedAt = time.Now()
	img.UpdatedAt = img.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		img.ID, img.PatientID, img.FilePath, img.FileSize, img.MimeType, img.ImageType,
		img.BodyPart, img.Notes, img.UploadedBy, img.PublicURL, img.CreatedAt, img.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create image record: %w", err)
	}
	return nil
}

func (r *imageRepository) Get(ctx context.Context, id uuid.UUID) (*model.XRayImage, error) {
	query := `SELECT * FROM xray_images WHERE id = $1`
	var img model.XRayImage
	if err := r.db.GetContext(ctx, &img, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get image record: %w", err)
	}
	return &img, nil
}

func (r *imageRepository) Update(ctx context.Context, img *model.XRayImage) error {
	query := `
		UPDATE xray_images
		SET image_type = $1, body_part = $2, notes = $3, updated_at = $4
		WHERE id = $5
	`
	img.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, query, img.ImageType, img.BodyPart, img.Notes, img.UpdatedAt, img.ID)
	if err != nil {
		return fmt.Errorf("failed to update image record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *imageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM xray_images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete image record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *imageRepository) List(ctx context.Context, filters *model.ImageFilters) ([]*model.XRayImage, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	i := 1

	if filters.PatientID != nil {
		where += fmt.Sprintf(" AND patient_id = $%d", i)
		args = append(args, *filters.PatientID)
		i++
	}
	if filters.ImageType != "" {
		where += fmt.Sprintf(" AND image_type = $%d", i)
		args = append(args, filters.ImageType)
		i++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM xray_images`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count image records: %w", err)
	}

	query := `SELECT * FROM xray_images` + where + fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", i, i+1)
	args = append(args, filters.Limit, filters.Offset)

	var rows []*model.XRayImage
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list image records: %w", err)
	}
	return rows, total, nil
}

func (r *imageRepository) Stats(ctx context.Context) (*model.ImageStats, error) {
	stats := &model.ImageStats{ByType: make(map[string]int)}

	row := r.db.QueryRowxContext(ctx, `SELECT COUNT(*), COALESCE(SUM(file_size), 0) FROM xray_images`)
	if err := row.Scan(&stats.Total, &stats.TotalBytes); err != nil {
		return nil, fmt.Errorf("failed to aggregate image records: %w", err)
	}

	rows, err := r.db.QueryxContext(ctx, `SELECT image_type, COUNT(*) FROM xray_images GROUP BY image_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate images by type: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var imageType string
		var count int
		if err := rows.Scan(&imageType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan image type aggregate: %w", err)
		}
		stats.ByType[imageType] = count
	}
	return stats, rows.Err()
}
