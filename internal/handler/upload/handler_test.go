package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/REGENCY-14/Finalyear/internal/config"
	"github.com/REGENCY-14/Finalyear/internal/middleware"
	"github.com/REGENCY-14/Finalyear/internal/model"
	"github.com/REGENCY-14/Finalyear/internal/repository"
	"github.com/REGENCY-14/Finalyear/internal/service/audit"
	"github.com/REGENCY-14/Finalyear/internal/service/image"
	"github.com/REGENCY-14/Finalyear/pkg/metrics"
	"github.com/REGENCY-14/Finalyear/pkg/storage"
)

type fakeImageRepo struct {
	images map[uuid.UUID]*model.XRayImage
}

func (f *fakeImageRepo) Create(_ context.Context, img *model.XRayImage) error {
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
	delete(f.images, id)
	return nil
}

func (f *fakeImageRepo) List(context.Context, *model.ImageFilters) ([]*model.XRayImage, int, error) {
	return nil, 0, nil
}

func (f *fakeImageRepo) Stats(context.Context) (*model.ImageStats, error) {
	return &model.ImageStats{}, nil
}

type fakePatientRepo struct {
	repository.PatientRepository
	known uuid.UUID
}

func (f *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	if id != f.known {
		return nil, repository.ErrNotFound
	}
	return &model.Patient{Base: model.Base{ID: id}}, nil
}

type fakeStore struct {
	objects map[string][]byte
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
var testMetrics = metrics.New("upload_handler_test")

func newTestRouter(patientID uuid.UUID) (*gin.Engine, *fakeImageRepo) {
	gin.SetMode(gin.TestMode)

	repo := &fakeImageRepo{images: map[uuid.UUID]*model.XRayImage{}}
	svc := image.NewService(
		repo,
		&fakePatientRepo{known: patientID},
		&fakeStore{objects: map[string][]byte{}},
		config.UploadConfig{
			MaxSizeBytes: 10 << 20,
			AllowedTypes: []string{"image/jpeg", "image/png"},
		},
		audit.NewService(fakeAuditRepo{}, zerolog.Nop()),
		testMetrics,
		zerolog.Nop(),
	)

	r := gin.New()
	group := r.Group("/api", func(c *gin.Context) {
		c.Set(middleware.ContextIdentity, &model.AuthContext{
			ID:    uuid.New(),
			Email: "rad@example.com",
			Role:  model.RoleRadiologist,
		})
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(group)
	return r, repo
}

func multipartBody(t *testing.T, fields map[string]string, withImage bool) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if withImage {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="image"; filename="scan.jpg"`)
		h.Set("Content-Type", "image/jpeg")
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("jpegbytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUploadWithoutImageType(t *testing.T) {
	patientID := uuid.New()
	r, repo := newTestRouter(patientID)

	body, contentType := multipartBody(t, map[string]string{"patientId": patientID.String()}, true)
	req := httptest.NewRequest(http.MethodPost, "/api/upload/xray", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Image model.XRayImage `json:"image"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "xray", resp.Image.ImageType, "omitted type falls back to the default")
	assert.Contains(t, repo.images, resp.Image.ID)
}

func TestUploadWithImageType(t *testing.T) {
	patientID := uuid.New()
	r, _ := newTestRouter(patientID)

	body, contentType := multipartBody(t, map[string]string{
		"patientId": patientID.String(),
		"imageType": "panoramic",
		"bodyPart":  "jaw",
	}, true)
	req := httptest.NewRequest(http.MethodPost, "/api/upload/xray", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Image model.XRayImage `json:"image"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "panoramic", resp.Image.ImageType)
	require.NotNil(t, resp.Image.BodyPart)
	assert.Equal(t, "jaw", *resp.Image.BodyPart)
}

func TestUploadMissingPatientID(t *testing.T) {
	r, _ := newTestRouter(uuid.New())

	body, contentType := multipartBody(t, map[string]string{}, true)
	req := httptest.NewRequest(http.MethodPost, "/api/upload/xray", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadMissingFile(t *testing.T) {
	patientID := uuid.New()
	r, _ := newTestRouter(patientID)

	body, contentType := multipartBody(t, map[string]string{"patientId": patientID.String()}, false)
	req := httptest.NewRequest(http.MethodPost, "/api/upload/xray", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
