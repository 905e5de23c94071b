package image

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/REGENCY-14/Finalyear/internal/config"
	"github.com/REGENCY-14/Finalyear/internal/model"
	"github.com/REGENCY-14/Finalyear/internal/repository"
	"github.com/REGENCY-14/Finalyear/internal/service/audit"
	"github.com/REGENCY-14/Finalyear/pkg/apperror"
	"github.com/REGENCY-14/Finalyear/pkg/metrics"
	"github.com/REGENCY-14/Finalyear/pkg/storage"
)

const (
	statsCacheKey = "image_stats"
	statsCacheTTL = 30 * time.Second
)

var extByMime = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// UploadInput describes one accepted multipart image part.
type UploadInput struct {
	PatientID uuid.UUID
	ImageType string
	BodyPart  *string
	Notes     *string
	Reader    io.Reader
	Size      int64
	MimeType  string
}

type Service struct {
	repo        repository.ImageRepository
	patientRepo repository.PatientRepository
	store       storage.Store
	cfg         config.UploadConfig
	auditor     *audit.Service
	metrics     *metrics.Metrics
	logger      zerolog.Logger
	cache       *gocache.Cache
}

func NewService(
	repo repository.ImageRepository,
	patientRepo repository.PatientRepository,
	store storage.Store,
	cfg config.UploadConfig,
	auditor *audit.Service,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Service {
	return &Service{
		repo:        repo,
		patientRepo: patientRepo,
		store:       store,
		cfg:         cfg,
		auditor:     auditor,
		metrics:     m,
		logger:      logger,
		cache:       gocache.New(statsCacheTTL, 2*statsCacheTTL),
	}
}

// Upload validates the part, stores the blob and inserts the metadata row.
// If the insert fails after a successful upload the blob is removed again so
// storage never holds unreferenced files.
func (s *Service) Upload(ctx context.Context, actorID uuid.UUID, in *UploadInput) (*model.XRayImage, error) {
	if in.Size > s.cfg.MaxSizeBytes {
		s.metrics.UploadsRejected.WithLabelValues("too_large").Inc()
		return nil, apperror.New(apperror.PayloadTooLarge,
			fmt.Sprintf("file exceeds maximum size of %d bytes", s.cfg.MaxSizeBytes))
	}
	if !s.mimeAllowed(in.MimeType) {
		s.metrics.UploadsRejected.WithLabelValues("unsupported_type").Inc()
		return nil, apperror.New(apperror.InvalidFileType,
			fmt.Sprintf("file type %q is not allowed", in.MimeType))
	}

	if _, err := s.patientRepo.Get(ctx, in.PatientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFoundf("patient")
		}
		return nil, apperror.Internal(err)
	}

	imageType := in.ImageType
	if imageType == "" {
		imageType = "xray"
	}

	id := uuid.New()
	key := path.Join("xrays", in.PatientID.String(), id.String()+extByMime[in.MimeType])

	err := s.store.Put(ctx, storage.PutInput{
		Key:         key,
		Reader:      in.Reader,
		Size:        in.Size,
		ContentType: in.MimeType,
		Tags: map[string]string{
			"patient_id": in.PatientID.String(),
			"image_type": imageType,
		},
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}

	img := &model.XRayImage{
		Base:       model.Base{ID: id},
		PatientID:  in.PatientID,
		FilePath:   key,
		FileSize:   in.Size,
		MimeType:   in.MimeType,
		ImageType:  imageType,
		BodyPart:   in.BodyPart,
		Notes:      in.Notes,
		UploadedBy: actorID,
		PublicURL:  s.store.PublicURL(key),
	}

	if err := s.repo.Create(ctx, img); err != nil {
		// Compensating removal so the blob does not become an orphan.
		if rmErr := s.store.Remove(ctx, key); rmErr != nil {
			s.logger.Error().Err(rmErr).Str("key", key).Msg("failed to remove blob after metadata insert failure")
		}
		return nil, apperror.Internal(err)
	}

	s.metrics.UploadBytes.Observe(float64(in.Size))
	s.metrics.UploadsTotal.WithLabelValues(imageType).Inc()
	s.auditor.Log(ctx, actorID, "upload", "xray_image", img.ID, model.JSONMap{
		"patient_id": in.PatientID,
		"size":       in.Size,
	})
	return img, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.XRayImage, error) {
	img, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFoundf("image")
		}
		return nil, apperror.Internal(err)
	}
	return img, nil
}

func (s *Service) List(ctx context.Context, filters *model.ImageFilters) ([]*model.XRayImage, int, error) {
	rows, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return rows, total, nil
}

func (s *Service) Update(ctx context.Context, actorID, id uuid.UUID, req *model.UpdateImageRequest) (*model.XRayImage, error) {
	img, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ImageType != nil {
		img.ImageType = *req.ImageType
	}
	if req.BodyPart != nil {
		img.BodyPart = req.BodyPart
	}
	if req.Notes != nil {
		img.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, img); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFoundf("image")
		}
		return nil, apperror.Internal(err)
	}

	s.auditor.Log(ctx, actorID, "update", "xray_image", id, nil)
	return img, nil
}

// Delete removes the blob first, then the metadata row. A blob removal
// failure aborts the delete so metadata never dangles without its file. A
// blob that is already gone does not block the metadata removal.
func (s *Service) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	img, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	exists, err := s.store.Exists(ctx, img.FilePath)
	if err != nil {
		return apperror.Internal(err)
	}
	if exists {
		if err := s.store.Remove(ctx, img.FilePath); err != nil {
			return apperror.Internal(err)
		}
	} else {
		s.logger.Warn().Str("key", img.FilePath).Msg("blob already missing, removing metadata only")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFoundf("image")
		}
		return apperror.Internal(err)
	}

	s.auditor.Log(ctx, actorID, "delete", "xray_image", id, nil)
	return nil
}

func (s *Service) Stats(ctx context.Context) (*model.ImageStats, error) {
	if cached, ok := s.cache.Get(statsCacheKey); ok {
		return cached.(*model.ImageStats), nil
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	s.cache.SetDefault(statsCacheKey, stats)
	return stats, nil
}

func (s *Service) mimeAllowed(mime string) bool {
	for _, allowed := range s.cfg.AllowedTypes {
		if mime == allowed {
			return true
		}
	}
	return false
}
