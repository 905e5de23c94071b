package image

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/REGENCY-14/Finalyear/internal/config"
	"github.com/REGENCY-14/Finalyear/internal/model"
	"github.com/REGENCY-14/Finalyear/internal/repository"
	"github.com/REGENCY-14/Finalyear/internal/service/audit"
	"github.com/REGENCY-14/Finalyear/pkg/apperror"
	"github.com/REGENCY-14/Finalyear/pkg/metrics"
	"github.com/REGENCY-14/Finalyear/pkg/storage"
)

type fakeImageRepo struct {
	images     map[uuid.UUID]*model.XRayImage
	createFail error
}

func newFakeImageRepo() *fakeImageRepo {
	return &fakeImageRepo{images: map[uuid.UUID]*model.XRayImage{}}
}

func (f *fakeImageRepo) Create(_ context.Context, img *model.XRayImage) error {
	if f.createFail != nil {
		return f.createFail
	}
	f.images[img.ID] = img
	return nil
}

func (f *fakeImageRepo) Get(_ context.Context, id uuid.UUID) (*model.XRayImage, error) {
	img, ok := f.images[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return img, nil
}

func (f *fakeImageRepo) Update(_ context.Context, img *model.XRayImage) error {
	f.images[img.ID] = img
	return nil
}

func (f *fakeImageRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.images[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.images, id)
	return nil
}

func (f *fakeImageRepo) List(context.Context, *model.ImageFilters) ([]*model.XRayImage, int, error) {
	return nil, 0, nil
}

func (f *fakeImageRepo) Stats(context.Context) (*model.ImageStats, error) {
	return &model.ImageStats{Total: len(f.images)}, nil
}

type fakePatientRepo struct {
	repository.PatientRepository
	known map[uuid.UUID]bool
}

func (f *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	if !f.known[id] {
		return nil, repository.ErrNotFound
	}
	return &model.Patient{Base: model.Base{ID: id}}, nil
}

type fakeStore struct {
	objects    map[string][]byte
	removed    []string
	removeFail error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (f *fakeStore) Put(_ context.Context, in storage.PutInput) error {
	data, err := io.ReadAll(in.Reader)
	if err != nil {
		return err
	}
	f.objects[in.Key] = data
	return nil
}

func (f *fakeStore) Remove(_ context.Context, key string) error {
	if f.removeFail != nil {
		return f.removeFail
	}
	f.removed = append(f.removed, key)
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeStore) PublicURL(key string) string {
	return "http://store.local/" + key
}

type fakeAuditRepo struct{}

func (fakeAuditRepo) Create(context.Context, *model.AuditLog) error { return nil }

// Registered once; promauto panics on duplicate metric names.
var testMetrics = metrics.New("image_service_test")

func newTestService(repo *fakeImageRepo, store *fakeStore, patientID uuid.UUID) *Service {
	return NewService(
		repo,
		&fakePatientRepo{known: map[uuid.UUID]bool{patientID: true}},
		store,
		config.UploadConfig{
			MaxSizeBytes: 10 << 20,
			AllowedTypes: []string{"image/jpeg", "image/png"},
		},
		audit.NewService(fakeAuditRepo{}, zerolog.Nop()),
		testMetrics,
		zerolog.Nop(),
	)
}

func uploadInput(patientID uuid.UUID, size int64, mime string) *UploadInput {
	return &UploadInput{
		PatientID: patientID,
		ImageType: "xray",
		Reader:    strings.NewReader(strings.Repeat("x", int(min(size, 64)))),
		Size:      size,
		MimeType:  mime,
	}
}

func TestUpload(t *testing.T) {
	patientID := uuid.New()
	repo := newFakeImageRepo()
	store := newFakeStore()
	svc := newTestService(repo, store, patientID)

	img, err := svc.Upload(context.Background(), uuid.New(), uploadInput(patientID, 64, "image/jpeg"))
	require.NoError(t, err)

	assert.Contains(t, img.FilePath, "xrays/"+patientID.String())
	assert.True(t, strings.HasSuffix(img.FilePath, ".jpg"))
	assert.Equal(t, "http://store.local/"+img.FilePath, img.PublicURL)
	assert.Contains(t, store.objects, img.FilePath)
	assert.Contains(t, repo.images, img.ID)
}

func TestUploadTooLarge(t *testing.T) {
	patientID := uuid.New()
	store := newFakeStore()
	svc := newTestService(newFakeImageRepo(), store, patientID)

	_, err := svc.Upload(context.Background(), uuid.New(), uploadInput(patientID, 15<<20, "image/jpeg"))
	assert.Equal(t, apperror.PayloadTooLarge, apperror.KindOf(err))
	assert.Empty(t, store.objects, "oversized upload must not reach storage")
}

func TestUploadUnsupportedType(t *testing.T) {
	patientID := uuid.New()
	store := newFakeStore()
	svc := newTestService(newFakeImageRepo(), store, patientID)

	for _, mime := range []string{"application/pdf", "image/gif", "text/plain"} {
		_, err := svc.Upload(context.Background(), uuid.New(), uploadInput(patientID, 64, mime))
		assert.Equal(t, apperror.InvalidFileType, apperror.KindOf(err), "mime %s", mime)
	}
	assert.Empty(t, store.objects)
}

func TestUploadUnknownPatient(t *testing.T) {
	svc := newTestService(newFakeImageRepo(), newFakeStore(), uuid.New())

	_, err := svc.Upload(context.Background(), uuid.New(), uploadInput(uuid.New(), 64, "image/png"))
	assert.Equal(t, apperror.NotFound, apperror.KindOf(err))
}

func TestUploadCompensatesOnInsertFailure(t *testing.T) {
	patientID := uuid.New()
	repo := newFakeImageRepo()
	repo.createFail = assert.AnError
	store := newFakeStore()
	svc := newTestService(repo, store, patientID)

	_, err := svc.Upload(context.Background(), uuid.New(), uploadInput(patientID, 64, "image/png"))
	assert.Equal(t, apperror.InternalFailure, apperror.KindOf(err))

	// The stored blob is removed again so no orphan remains.
	assert.Len(t, store.removed, 1)
	assert.Empty(t, store.objects)
}

func TestDeleteRemovesBlobFirst(t *testing.T) {
	patientID := uuid.New()
	repo := newFakeImageRepo()
	store := newFakeStore()
	svc := newTestService(repo, store, patientID)

	img, err := svc.Upload(context.Background(), uuid.New(), uploadInput(patientID, 64, "image/jpeg"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), uuid.New(), img.ID))
	assert.Equal(t, []string{img.FilePath}, store.removed)
	assert.Empty(t, repo.images)
}

func TestDeleteToleratesMissingBlob(t *testing.T) {
	patientID := uuid.New()
	repo := newFakeImageRepo()
	store := newFakeStore()
	svc := newTestService(repo, store, patientID)

	img, err := svc.Upload(context.Background(), uuid.New(), uploadInput(patientID, 64, "image/jpeg"))
	require.NoError(t, err)

	// Blob vanished out of band; the metadata row must still be removable.
	delete(store.objects, img.FilePath)

	require.NoError(t, svc.Delete(context.Background(), uuid.New(), img.ID))
	assert.Empty(t, repo.images)
	assert.Empty(t, store.removed, "no removal attempted for a missing blob")
}

func TestDeleteKeepsRowWhenBlobRemovalFails(t *testing.T) {
	patientID := uuid.New()
	repo := newFakeImageRepo()
	store := newFakeStore()
	svc := newTestService(repo, store, patientID)

	img, err := svc.Upload(context.Background(), uuid.New(), uploadInput(patientID, 64, "image/jpeg"))
	require.NoError(t, err)

	store.removeFail = assert.AnError
	err = svc.Delete(context.Background(), uuid.New(), img.ID)
	assert.Equal(t, apperror.InternalFailure, apperror.KindOf(err))
	assert.Contains(t, repo.images, img.ID, "metadata row survives a failed blob removal")
}

func TestStatsAreCached(t *testing.T) {
	patientID := uuid.New()
	repo := newFakeImageRepo()
	svc := newTestService(repo, newFakeStore(), patientID)

	first, err := svc.Stats(context.Background())
	require.NoError(t, err)

	_, err = svc.Upload(context.Background(), uuid.New(), uploadInput(patientID, 64, "image/jpeg"))
	require.NoError(t, err)

	second, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.Total, second.Total, "within the cache window the count is stale")
}

func TestUpdateImageMetadata(t *testing.T) {
	patientID := uuid.New()
	repo := newFakeImageRepo()
	svc := newTestService(repo, newFakeStore(), patientID)

	img, err := svc.Upload(context.Background(), uuid.New(), uploadInput(patientID, 64, "image/jpeg"))
	require.NoError(t, err)

	bodyPart := "chest"
	updated, err := svc.Update(context.Background(), uuid.New(), img.ID, &model.UpdateImageRequest{BodyPart: &bodyPart})
	require.NoError(t, err)
	require.NotNil(t, updated.BodyPart)
	assert.Equal(t, "chest", *updated.BodyPart)
	assert.Equal(t, img.FilePath, updated.FilePath, "blob path never changes on metadata update")
}
