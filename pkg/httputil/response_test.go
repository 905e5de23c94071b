package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/REGENCY-14/Finalyear/pkg/apperror"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name  string
		page  int
		limit int
		total int
		want  Pagination
	}{
		{
			name: "middle page", page: 2, limit: 10, total: 25,
			want: Pagination{CurrentPage: 2, TotalPages: 3, TotalCount: 25, HasNext: true, HasPrev: true},
		},
		{
			name: "first page", page: 1, limit: 10, total: 25,
			want: Pagination{CurrentPage: 1, TotalPages: 3, TotalCount: 25, HasNext: true, HasPrev: false},
		},
		{
			name: "last page", page: 3, limit: 10, total: 25,
			want: Pagination{CurrentPage: 3, TotalPages: 3, TotalCount: 25, HasNext: false, HasPrev: true},
		},
		{
			name: "exact multiple", page: 2, limit: 10, total: 20,
			want: Pagination{CurrentPage: 2, TotalPages: 2, TotalCount: 20, HasNext: false, HasPrev: true},
		},
		{
			name: "empty set", page: 1, limit: 20, total: 0,
			want: Pagination{CurrentPage: 1, TotalPages: 0, TotalCount: 0, HasNext: false, HasPrev: false},
		},
		{
			name: "page past the end", page: 5, limit: 10, total: 25,
			want: Pagination{CurrentPage: 5, TotalPages: 3, TotalCount: 25, HasNext: false, HasPrev: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPagination(tt.page, tt.limit, tt.total))
		})
	}
}

func TestPageParamsNormalize(t *testing.T) {
	p := PageParams{Page: 0, Limit: 0}
	p.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.Limit)

	p = PageParams{Page: -3, Limit: 500}
	p.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 100, p.Limit)

	p = PageParams{Page: 4, Limit: 25}
	p.Normalize()
	assert.Equal(t, 4, p.Page)
	assert.Equal(t, 25, p.Limit)
}

func TestPageParamsOffset(t *testing.T) {
	p := PageParams{Page: 3, Limit: 20}
	assert.Equal(t, 40, p.Offset())

	p = PageParams{Page: 1, Limit: 20}
	assert.Equal(t, 0, p.Offset())
}

func TestFailMapsAppErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"not found", apperror.NotFoundf("patient"), http.StatusNotFound, "not_found"},
		{"conflict", apperror.Conflictf("email taken"), http.StatusConflict, "conflict"},
		{"validation", apperror.Validation("bad input", nil), http.StatusBadRequest, "validation_failed"},
		{"unauthenticated", apperror.New(apperror.Unauthenticated, "no token"), http.StatusUnauthorized, "unauthenticated"},
		{"forbidden", apperror.New(apperror.Forbidden, "wrong role"), http.StatusForbidden, "forbidden"},
		{"payload too large", apperror.New(apperror.PayloadTooLarge, "too big"), http.StatusRequestEntityTooLarge, "payload_too_large"},
		{"unsupported type", apperror.New(apperror.InvalidFileType, "bad mime"), http.StatusUnsupportedMediaType, "invalid_file_type"},
		{"plain error hidden", assert.AnError, http.StatusInternalServerError, "internal_failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			Fail(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body ErrorBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantError, body.Error)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestFailDoesNotLeakInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Fail(c, assert.AnError)

	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

func TestPaginatedEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Paginated(c, "patients", []string{"a", "b"}, NewPagination(1, 20, 2))

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "patients")
	assert.Contains(t, body, "pagination")
}
