package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIKeyAuth requires the X-API-Key header to match key. The comparison is
// constant time.
func APIKeyAuth(key string) gin.HandlerFunc {
	expected := []byte(key)

	return func(c *gin.Context) {
		got := []byte(c.GetHeader("X-API-Key"))
		if subtle.ConstantTimeCompare(got, expected) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized",
			})
			return
		}
		c.Next()
	}
}
