// Package validation provides input validation middleware for the FraudLens API.
package validation

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// MaxTransactionIDLength bounds transaction ids accepted on lookup routes.
const MaxTransactionIDLength = 128

// RequestSizeMiddleware limits request body size. Oversized uploads fail at
// read time with a 413 from gin's error handling rather than buffering.
func RequestSizeMiddleware(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// SanitizeID trims and bounds a caller-supplied transaction id.
func SanitizeID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) > MaxTransactionIDLength {
		id = id[:MaxTransactionIDLength]
	}
	return strings.ReplaceAll(id, "\x00", "")
}
