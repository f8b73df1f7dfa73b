package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/stem-workshop/certificates/internal/models"
	"github.com/stem-workshop/certificates/pkg/apperr"
	"github.com/stem-workshop/certificates/pkg/response"
)

// RequireRole returns a middleware that allows only the given roles. It must run after Session.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{})
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims := SessionClaims(c)
		if claims == nil {
			response.Unauthorized(c, "Not authenticated")
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, nil, apperr.Forbidden("insufficient permissions"))
			c.Abort()
			return
		}
		c.Next()
	}
}
