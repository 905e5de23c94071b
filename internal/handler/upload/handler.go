package upload

import (
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/REGENCY-14/Finalyear/internal/middleware"
	"github.com/REGENCY-14/Finalyear/internal/model"
	"github.com/REGENCY-14/Finalyear/internal/service/image"
	"github.com/REGENCY-14/Finalyear/pkg/apperror"
	"github.com/REGENCY-14/Finalyear/pkg/httputil"
)

type Handler struct {
	svc *image.Service
}

func NewHandler(svc *image.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	upload := r.Group("/upload")
	{
		upload.POST("/xray", h.Upload)
		upload.GET("/xray/patient/:patientId", h.ListByPatient)
		upload.GET("/xray/:id", h.Get)
		upload.PUT("/xray/:id", h.Update)
		upload.DELETE("/xray/:id", h.Delete)
		upload.GET("/stats/overview", h.Stats)
	}
}

type uploadForm struct {
	PatientID string  `form:"patientId" binding:"required,uuid"`
	ImageType string  `form:"imageType"`
	BodyPart  *string `form:"bodyPart"`
	Notes     *string `form:"notes"`
}

func (h *Handler) Upload(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		httputil.Fail(c, apperror.New(apperror.Unauthenticated, "authentication required"))
		return
	}

	var form uploadForm
	if err := c.ShouldBind(&form); err != nil {
		httputil.FailValidation(c, err)
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		httputil.Fail(c, apperror.Validation("image file is required", nil))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httputil.Fail(c, apperror.Wrap(apperror.InternalFailure, "open uploaded file", err))
		return
	}
	defer file.Close()

	patientID, _ := uuid.Parse(form.PatientID)

	img, err := h.svc.Upload(c.Request.Context(), identity.ID, &image.UploadInput{
		PatientID: patientID,
		ImageType: form.ImageType,
		BodyPart:  form.BodyPart,
		Notes:     form.Notes,
		Reader:    file,
		Size:      fileHeader.Size,
		MimeType:  partContentType(fileHeader),
	})
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.Created(c, gin.H{"image": img})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.Fail(c, apperror.Validation("invalid image ID", nil))
		return
	}

	img, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, gin.H{"image": img})
}

func (h *Handler) ListByPatient(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		httputil.Fail(c, apperror.Validation("invalid patient ID", nil))
		return
	}

	var params httputil.PageParams
	if err := c.ShouldBindQuery(&params); err != nil {
		httputil.FailValidation(c, err)
		return
	}
	params.Normalize()

	filters := &model.ImageFilters{
		PatientID: &patientID,
		ImageType: c.Query("imageType"),
		Limit:     params.Limit,
		Offset:    params.Offset(),
	}

	images, total, err := h.svc.List(c.Request.Context(), filters)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.Paginated(c, "images", images, httputil.NewPagination(params.Page, params.Limit, total))
}

func (h *Handler) Update(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		httputil.Fail(c, apperror.New(apperror.Unauthenticated, "authentication required"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.Fail(c, apperror.Validation("invalid image ID", nil))
		return
	}

	var req model.UpdateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.FailValidation(c, err)
		return
	}

	img, err := h.svc.Update(c.Request.Context(), identity.ID, id, &req)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, gin.H{"image": img})
}

func (h *Handler) Delete(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		httputil.Fail(c, apperror.New(apperror.Unauthenticated, "authentication required"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.Fail(c, apperror.Validation("invalid image ID", nil))
		return
	}

	if err := h.svc.Delete(c.Request.Context(), identity.ID, id); err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, gin.H{"message": "image deleted"})
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, gin.H{"stats": stats})
}

// partContentType reads the declared type of the multipart file part. Browsers
// always send one; an absent header is rejected downstream as an unsupported
// type rather than guessed at here.
func partContentType(fh *multipart.FileHeader) string {
	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		return "application/octet-stream"
	}
	return ct
}
