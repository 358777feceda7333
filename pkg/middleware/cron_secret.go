package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const cronSecretHeader = "X-Cron-Secret"

// NewCronSecretMiddleware protects the cleanup triggers with a shared secret
// the external scheduler sends in X-Cron-Secret. An empty secret leaves them
// open
func NewCronSecretMiddleware(secret string) gin.HandlerFunc {
	if secret == "" {
		zap.L().Warn("No sweeper.trigger_secret set, cleanup endpoints are open to anyone")
		return func(c *gin.Context) { c.Next() }
	}

	want := []byte(secret)

	return func(c *gin.Context) {
		got := []byte(c.GetHeader(cronSecretHeader))
		if subtle.ConstantTimeCompare(got, want) != 1 {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Next()
	}
}
