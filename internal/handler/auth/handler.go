package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/REGENCY-14/Finalyear/internal/middleware"
	"github.com/REGENCY-14/Finalyear/internal/model"
	"github.com/REGENCY-14/Finalyear/internal/service/auth"
	"github.com/REGENCY-14/Finalyear/pkg/apperror"
	"github.com/REGENCY-14/Finalyear/pkg/httputil"
)

type Handler struct {
	svc  *auth.Service
	auth *middleware.AuthMiddleware
}

func NewHandler(svc *auth.Service, authMw *middleware.AuthMiddleware) *Handler {
	return &Handler{svc: svc, auth: authMw}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/auth")
	{
		group.POST("/signup", h.Signup)
		group.POST("/signin", h.Signin)
		group.POST("/forgot-password", h.ForgotPassword)
		group.POST("/reset-password", h.ResetPassword)

		authed := group.Group("", h.auth.Authenticate())
		{
			authed.GET("/profile", h.Profile)
			authed.POST("/refresh", h.Refresh)
			authed.POST("/logout", h.Logout)
		}
	}
}

func (h *Handler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.FailValidation(c, err)
		return
	}

	resp, err := h.svc.Signup(c.Request.Context(), &req)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.Created(c, resp)
}

func (h *Handler) Signin(c *gin.Context) {
	var req model.SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.FailValidation(c, err)
		return
	}

	resp, err := h.svc.Signin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, resp)
}

func (h *Handler) Profile(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		httputil.Fail(c, apperror.New(apperror.Unauthenticated, "authentication required"))
		return
	}

	user, err := h.svc.Profile(c.Request.Context(), identity.ID)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, gin.H{"user": user})
}

func (h *Handler) Refresh(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	claims, ok2 := middleware.ClaimsFrom(c)
	if !ok || !ok2 {
		httputil.Fail(c, apperror.New(apperror.Unauthenticated, "authentication required"))
		return
	}

	resp, err := h.svc.Refresh(c.Request.Context(), identity, claims)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, resp)
}

func (h *Handler) Logout(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	claims, ok2 := middleware.ClaimsFrom(c)
	if !ok || !ok2 {
		httputil.Fail(c, apperror.New(apperror.Unauthenticated, "authentication required"))
		return
	}

	if err := h.svc.Logout(c.Request.Context(), identity, claims); err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, gin.H{"message": "logged out"})
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var req model.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.FailValidation(c, err)
		return
	}

	if err := h.svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		httputil.Fail(c, err)
		return
	}

	// Deliberately identical response whether or not the account exists.
	httputil.OK(c, gin.H{"message": "if the account exists, a reset mail was sent"})
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.FailValidation(c, err)
		return
	}

	if err := h.svc.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, gin.H{"message": "password updated"})
}
