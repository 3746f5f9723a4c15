package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/scholarly/backcontent/internal/interfaces/http/dto"
)

// BodyLimit caps request bodies at maxBytes. Multipart uploads get uploadBytes
// instead, so galley files are not held to the JSON limit.
func BodyLimit(maxBytes, uploadBytes int64) gin.HandlerFunc {
	if uploadBytes < maxBytes {
		uploadBytes = maxBytes
	}
	return func(c *gin.Context) {
		limit := maxBytes
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			limit = uploadBytes
		}

		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeRequestTooLarge,
					"Request body exceeds maximum allowed size", GetRequestID(c)))
			return
		}

		// chunked bodies carry no length
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
