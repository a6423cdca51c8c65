package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/se-evidence-api/internal/middleware"
	"github.com/noah-isme/se-evidence-api/internal/models"
	appErrors "github.com/noah-isme/se-evidence-api/pkg/errors"
	"github.com/noah-isme/se-evidence-api/pkg/response"
)

// actorFromContext returns the authenticated actor or writes 401.
func actorFromContext(c *gin.Context) (models.Actor, bool) {
	claims, ok := middleware.Claims(c)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required"))
		return models.Actor{}, false
	}
	return claims.Actor(), true
}

func bindJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
		return false
	}
	return true
}
