package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/se-evidence-api/internal/models"
	appErrors "github.com/noah-isme/se-evidence-api/pkg/errors"
	"github.com/noah-isme/se-evidence-api/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentUser"

// TokenValidator validates bearer tokens. *service.AuthService satisfies it.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*models.JWTClaims, error)
}

// JWT protects routes by requiring a valid access token.
func JWT(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required"))
			c.Abort()
			return
		}

		token, ok := bearerToken(header)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := validator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

// OptionalJWT attaches claims when present but does not block.
func OptionalJWT(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c.GetHeader("Authorization")); ok {
			if claims, err := validator.ValidateToken(c.Request.Context(), token); err == nil {
				c.Set(ContextUserKey, claims)
			}
		}
		c.Next()
	}
}

// Claims returns the authenticated claims stored by JWT, if any.
func Claims(c *gin.Context) (*models.JWTClaims, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*models.JWTClaims)
	return claims, ok && claims != nil
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
