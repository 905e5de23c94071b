package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/REGENCY-14/Finalyear/pkg/httputil"
)

// SizeLimit caps the request body. The cap is enforced both by the declared
// Content-Length and by wrapping the body reader, so chunked uploads cannot
// slip past it.
func SizeLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, httputil.ErrorBody{
				Error:   "payload_too_large",
				Message: "request body exceeds size limit",
			})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
