// README: Recovery middleware; a panicking handler answers 500 instead of killing the server.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wayfarer/pkg/logger"
)

func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic in %s %s: %v", c.Request.Method, c.Request.URL.Path, r)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			}
		}()
		c.Next()
	}
}
