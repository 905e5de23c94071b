package httputil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/REGENCY-14/Finalyear/pkg/apperror"
)

// ErrorBody is the error response shape shared by every endpoint.
type ErrorBody struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Pagination is the envelope attached to every list response.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalCount  int  `json:"totalCount"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

// NewPagination derives the envelope from page/limit and a total row count.
func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  total,
		HasNext:     page < totalPages,
		HasPrev:     page > 1 && total > 0,
	}
}

// PageParams holds parsed list query parameters.
type PageParams struct {
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=20"`
	Search string `form:"search"`
}

// Normalize clamps page to >=1 and limit to [1,100].
func (p *PageParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
}

// Offset returns the row offset for the current page.
func (p *PageParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

func Paginated(c *gin.Context, key string, items interface{}, p Pagination) {
	c.JSON(http.StatusOK, gin.H{key: items, "pagination": p})
}

// Fail maps an error onto the shared error shape. Non-application errors are
// logged and reported as a generic internal failure.
func Fail(c *gin.Context, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		appErr = apperror.Internal(err)
	}

	if appErr.Kind == apperror.InternalFailure {
		log.Error().
			Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
	}

	c.AbortWithStatusJSON(appErr.StatusCode(), ErrorBody{
		Error:   appErr.Kind.String(),
		Message: appErr.Message,
		Details: appErr.Details,
	})
}

// FailValidation reports a binding error. Validator errors are unpacked into
// per-field messages; anything else is passed through as a single detail.
func FailValidation(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = fmt.Sprintf("failed %q validation", fe.Tag())
		}
		Fail(c, apperror.Validation("request validation failed", details))
		return
	}
	Fail(c, apperror.Validation("request validation failed", err.Error()))
}
