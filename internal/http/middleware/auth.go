package middleware

import (
	"net/http"
	"strings"

	"railway/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	operatorIDKey = "operatorID"
	userRoleKey   = "userRole"
)

// TokenParser verifies a bearer token.
type TokenParser interface {
	ParseToken(raw string) (services.Claims, error)
}

// RequireAuth rejects requests without a valid "Authorization: Bearer <token>" header and
// stores the operator id and role on the context.
func RequireAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":      "missing bearer token",
				"request_id": GetRequestID(c),
			})
			return
		}
		claims, err := tokens.ParseToken(strings.TrimSpace(raw))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":      "invalid or expired token",
				"request_id": GetRequestID(c),
			})
			return
		}
		c.Set(operatorIDKey, claims.OperatorID)
		c.Set(userRoleKey, claims.Role)
		c.Next()
	}
}

// OperatorID returns the authenticated operator, or 0.
func OperatorID(c *gin.Context) int64 {
	return c.GetInt64(operatorIDKey)
}
