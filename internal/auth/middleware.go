package auth

import (
	"net/http"
	"strings"

	"github.com/nexora-edu/learning-service/internal/authz"
	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// Middleware validates the bearer token and stores the principal in the gin
// context for handlers and the policy checker.
func Middleware(tokens *TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Not authorized, no token",
			})
			return
		}

		claims, err := tokens.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Not authorized, token failed",
			})
			return
		}

		c.Set(principalKey, authz.Principal{ID: claims.UserID, Role: claims.Role})
		c.Next()
	}
}

// PrincipalFromContext returns the authenticated caller, if any.
func PrincipalFromContext(c *gin.Context) (authz.Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return authz.Principal{}, false
	}
	p, ok := v.(authz.Principal)
	return p, ok
}
