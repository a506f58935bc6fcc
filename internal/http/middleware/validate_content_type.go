package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ValidateContentType rejects uploads that are not multipart forms.
func ValidateContentType() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.Method != http.MethodPost {
			ctx.Next()
			return
		}

		contentType := ctx.GetHeader("Content-Type")
		if !strings.HasPrefix(strings.ToLower(contentType), "multipart/form-data") {
			ctx.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
				"success": false,
				"error":   "Content-Type must be multipart/form-data",
			})
			return
		}

		ctx.Next()
	}
}
