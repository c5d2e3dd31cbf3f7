package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/colegio-sanjuan/portal-api/internal/models"
	appErrors "github.com/colegio-sanjuan/portal-api/pkg/errors"
	"github.com/colegio-sanjuan/portal-api/pkg/response"
)

// RBAC allows the request through only when the authenticated role is in
// the allowed set. It must run after JWT.
func RBAC(allowed ...models.UserRole) gin.HandlerFunc {
	roles := make(map[models.UserRole]struct{}, len(allowed))
	for _, role := range allowed {
		roles[role] = struct{}{}
	}
	return func(c *gin.Context) {
		claims, ok := CurrentUser(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}
		if _, permitted := roles[claims.Role]; !permitted {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "role not allowed for this operation"))
			return
		}
		c.Next()
	}
}
