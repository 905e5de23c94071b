package personnel

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/REGENCY-14/Finalyear/internal/middleware"
	"github.com/REGENCY-14/Finalyear/internal/model"
	"github.com/REGENCY-14/Finalyear/internal/service/personnel"
	"github.com/REGENCY-14/Finalyear/pkg/apperror"
	"github.com/REGENCY-14/Finalyear/pkg/httputil"
)

type Handler struct {
	svc *personnel.Service
}

func NewHandler(svc *personnel.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/personnel")
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.PUT("/:id", h.Update)
		group.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.Deactivate)
	}
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.Fail(c, apperror.Validation("invalid personnel ID", nil))
		return
	}

	person, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, gin.H{"user": person})
}

func (h *Handler) List(c *gin.Context) {
	var params httputil.PageParams
	if err := c.ShouldBindQuery(&params); err != nil {
		httputil.FailValidation(c, err)
		return
	}
	params.Normalize()

	filters := &model.PersonnelFilters{
		Role:       model.Role(c.Query("role")),
		SearchTerm: params.Search,
		Limit:      params.Limit,
		Offset:     params.Offset(),
	}

	people, total, err := h.svc.List(c.Request.Context(), filters)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.Paginated(c, "personnel", people, httputil.NewPagination(params.Page, params.Limit, total))
}

// Update lets a user edit their own record; admins may edit anyone.
func (h *Handler) Update(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		httputil.Fail(c, apperror.New(apperror.Unauthenticated, "authentication required"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.Fail(c, apperror.Validation("invalid personnel ID", nil))
		return
	}

	if id != identity.ID && identity.Role != model.RoleAdmin {
		httputil.Fail(c, apperror.New(apperror.Forbidden, "cannot modify another user's record"))
		return
	}

	var req model.UpdatePersonnelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.FailValidation(c, err)
		return
	}

	person, err := h.svc.Update(c.Request.Context(), identity.ID, id, &req)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, gin.H{"user": person})
}

func (h *Handler) Deactivate(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		httputil.Fail(c, apperror.New(apperror.Unauthenticated, "authentication required"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.Fail(c, apperror.Validation("invalid personnel ID", nil))
		return
	}

	if err := h.svc.Deactivate(c.Request.Context(), identity.ID, id); err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, gin.H{"message": "account deactivated"})
}
