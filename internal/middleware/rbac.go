package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/se-evidence-api/internal/service"
	appErrors "github.com/noah-isme/se-evidence-api/pkg/errors"
	"github.com/noah-isme/se-evidence-api/pkg/response"
)

// Authorize admits the request when the authenticated actor may perform action.
// Ownership-scoped actions are checked again by the service against the resource.
func Authorize(action service.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required"))
			c.Abort()
			return
		}
		if !service.CanPerform(action, claims.Actor(), nil) {
			response.Error(c, appErrors.WithDetails(appErrors.Clone(appErrors.ErrForbidden, "insufficient role"),
				map[string]interface{}{"action": action}))
			c.Abort()
			return
		}
		c.Next()
	}
}
