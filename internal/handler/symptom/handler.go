package symptom

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/REGENCY-14/Finalyear/internal/middleware"
	"github.com/REGENCY-14/Finalyear/internal/model"
	"github.com/REGENCY-14/Finalyear/internal/service/symptom"
	"github.com/REGENCY-14/Finalyear/pkg/apperror"
	"github.com/REGENCY-14/Finalyear/pkg/httputil"
)

type Handler struct {
	svc *symptom.Service
}

func NewHandler(svc *symptom.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	symptoms := r.Group("/symptoms")
	{
		symptoms.POST("", h.Record)
		symptoms.GET("", h.List)
		symptoms.GET("/stats/overview", h.Stats)
		symptoms.GET("/patient/:patientId", h.ListByPatient)
		symptoms.GET("/:id", h.Get)
		symptoms.PUT("/:id", h.Update)
		symptoms.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) Record(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		httputil.Fail(c, apperror.New(apperror.Unauthenticated, "authentication required"))
		return
	}

	var req model.CreateSymptomsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.FailValidation(c, err)
		return
	}

	symptoms, err := h.svc.Record(c.Request.Context(), identity.ID, &req)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.Created(c, gin.H{"symptoms": symptoms})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.Fail(c, apperror.Validation("invalid symptom ID", nil))
		return
	}

	sym, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, gin.H{"symptom": sym})
}

func (h *Handler) List(c *gin.Context) {
	h.list(c, nil)
}

func (h *Handler) ListByPatient(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		httputil.Fail(c, apperror.Validation("invalid patient ID", nil))
		return
	}
	h.list(c, &patientID)
}

func (h *Handler) list(c *gin.Context, patientID *uuid.UUID) {
	var params httputil.PageParams
	if err := c.ShouldBindQuery(&params); err != nil {
		httputil.FailValidation(c, err)
		return
	}
	params.Normalize()

	filters := &model.SymptomFilters{
		PatientID:  patientID,
		Severity:   model.Severity(c.Query("severity")),
		SearchTerm: params.Search,
		Limit:      params.Limit,
		Offset:     params.Offset(),
	}

	symptoms, total, err := h.svc.List(c.Request.Context(), filters)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.Paginated(c, "symptoms", symptoms, httputil.NewPagination(params.Page, params.Limit, total))
}

func (h *Handler) Update(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		httputil.Fail(c, apperror.New(apperror.Unauthenticated, "authentication required"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.Fail(c, apperror.Validation("invalid symptom ID", nil))
		return
	}

	var req model.UpdateSymptomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.FailValidation(c, err)
		return
	}

	sym, err := h.svc.Update(c.Request.Context(), identity.ID, id, &req)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, gin.H{"symptom": sym})
}

func (h *Handler) Delete(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		httputil.Fail(c, apperror.New(apperror.Unauthenticated, "authentication required"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.Fail(c, apperror.Validation("invalid symptom ID", nil))
		return
	}

	if err := h.svc.Delete(c.Request.Context(), identity.ID, id); err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, gin.H{"message": "symptom deleted"})
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, gin.H{"stats": stats})
}
