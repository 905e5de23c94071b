package patient

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/REGENCY-14/Finalyear/internal/middleware"
	"github.com/REGENCY-14/Finalyear/internal/model"
	"github.com/REGENCY-14/Finalyear/internal/service/patient"
	"github.com/REGENCY-14/Finalyear/pkg/apperror"
	"github.com/REGENCY-14/Finalyear/pkg/httputil"
)

type Handler struct {
	svc *patient.Service
}

func NewHandler(svc *patient.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts patient routes on an authenticated group. Destructive
// deletion is additionally gated to admins.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.Create)
		patients.GET("", h.List)
		patients.GET("/stats/overview", h.Stats)
		patients.GET("/:id", h.Get)
		patients.PUT("/:id", h.Update)
		patients.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.Delete)
	}
}

func (h *Handler) Create(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		httputil.Fail(c, apperror.New(apperror.Unauthenticated, "authentication required"))
		return
	}

	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.FailValidation(c, err)
		return
	}

	p, err := h.svc.Create(c.Request.Context(), identity.ID, &req)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.Created(c, gin.H{"patient": p})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.Fail(c, apperror.Validation("invalid patient ID", nil))
		return
	}

	p, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, gin.H{"patient": p})
}

func (h *Handler) List(c *gin.Context) {
	var params httputil.PageParams
	if err := c.ShouldBindQuery(&params); err != nil {
		httputil.FailValidation(c, err)
		return
	}
	params.Normalize()

	filters := &model.PatientFilters{
		SearchTerm: params.Search,
		Gender:     c.Query("gender"),
		Limit:      params.Limit,
		Offset:     params.Offset(),
	}

	patients, total, err := h.svc.List(c.Request.Context(), filters)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.Paginated(c, "patients", patients, httputil.NewPagination(params.Page, params.Limit, total))
}

func (h *Handler) Update(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		httputil.Fail(c, apperror.New(apperror.Unauthenticated, "authentication required"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.Fail(c, apperror.Validation("invalid patient ID", nil))
		return
	}

	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.FailValidation(c, err)
		return
	}

	p, err := h.svc.Update(c.Request.Context(), identity.ID, id, &req)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, gin.H{"patient": p})
}

func (h *Handler) Delete(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		httputil.Fail(c, apperror.New(apperror.Unauthenticated, "authentication required"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.Fail(c, apperror.Validation("invalid patient ID", nil))
		return
	}

	if err := h.svc.Delete(c.Request.Context(), identity.ID, id); err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, gin.H{"message": "patient deleted"})
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, gin.H{"stats": stats})
}
