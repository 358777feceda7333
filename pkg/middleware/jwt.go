package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// NewJWTMiddleware checks the HS256 token issued by the auth provider and
// sets userID from its subject. The token is read from the Authorization
// header first and the auth_token cookie second
func NewJWTMiddleware(secret string) gin.HandlerFunc {
	key := []byte(secret)

	return func(c *gin.Context) {
		requestID := c.GetString("requestID")

		tokenStr := bearer(c.GetHeader("Authorization"))
		if tokenStr == "" {
			var err error
			tokenStr, err = c.Cookie("auth_token")
			if err != nil || tokenStr == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":     "You must be logged in",
					"requestID": requestID,
				})
				return
			}
		}

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
		if err != nil {
			msg := "Authorization token invalid"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Authorization token expired. Please log in again"
			}

			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     msg,
				"requestID": requestID,
			})

			zap.L().Debug("Rejected token", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Authorization token invalid",
				"requestID": requestID,
			})
			return
		}

		userID, err := subject(claims)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Authorization token invalid",
				"requestID": requestID,
			})
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}

func bearer(h string) string {
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return ""
	}

	return strings.TrimSpace(token)
}

// Older tokens carry the id as user_id instead of sub
func subject(claims jwt.MapClaims) (string, error) {
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return sub, nil
	}

	if id, ok := claims["user_id"].(string); ok && id != "" {
		return id, nil
	}

	return "", errors.New("token has no subject")
}
