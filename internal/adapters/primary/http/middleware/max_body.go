package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxBody caps request bodies so oversized uploads fail while parsing.
func MaxBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
