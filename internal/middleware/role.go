package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/thesachinyyadav/socio2026v2-sub000/pkg/response"
)

// RequireRole allows only the listed roles past. Must run after JWT.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		role := c.GetString(CtxRole)
		if !allowed[role] {
			response.Forbidden(c, "insufficient role")
			c.Abort()
			return
		}
		c.Next()
	}
}
