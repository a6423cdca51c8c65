package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/se-evidence-api/internal/models"
)

// AuditWriter persists audit records.
type AuditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// Audit records an audit log after each successful request.
func Audit(repo AuditWriter, action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if repo == nil || c.Writer.Status() >= 400 {
			return
		}

		var userID *string
		if claims, ok := Claims(c); ok {
			userID = &claims.UserID
		}

		body, _ := json.Marshal(map[string]interface{}{
			"path":    c.FullPath(),
			"query":   c.Request.URL.RawQuery,
			"method":  c.Request.Method,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Milliseconds(),
		})

		_ = repo.CreateAuditLog(c.Request.Context(), &models.AuditLog{
			UserID:    userID,
			Action:    action,
			Resource:  resource,
			NewValues: body,
			IPAddress: c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
		})
	}
}
