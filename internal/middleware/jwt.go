package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/thesachinyyadav/socio2026v2-sub000/internal/auth"
	"github.com/thesachinyyadav/socio2026v2-sub000/pkg/response"
)

const (
	// CtxUserID and CtxRole are the gin context keys set after validation.
	CtxUserID = "user_id"
	CtxEmail  = "email"
	CtxRole   = "role"
)

// JWT validates the Authorization bearer token and stores identity in the
// request context.
func JWT(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			response.Unauthorized(c, "missing bearer token")
			c.Abort()
			return
		}
		claims, err := verifier.Validate(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}
		c.Set(CtxUserID, claims.UserID.String())
		c.Set(CtxEmail, claims.Email)
		c.Set(CtxRole, claims.Role)
		c.Next()
	}
}
