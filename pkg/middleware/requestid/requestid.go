package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header carries the request id in both directions.
const Header = "X-Request-ID"

const (
	contextKey = "request_id"
	maxInbound = 64
)

// Middleware tags every request with an id, reusing a well-formed inbound one.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(Header)
		if !acceptable(reqID) {
			reqID = uuid.NewString()
		}

		c.Set(contextKey, reqID)
		c.Writer.Header().Set(Header, reqID)

		c.Next()
	}
}

// Value returns the request id stored on c.
func Value(c *gin.Context) string {
	return c.GetString(contextKey)
}

func acceptable(id string) bool {
	if id == "" || len(id) > maxInbound {
		return false
	}
	for _, r := range id {
		if r < '!' || r > '~' {
			return false
		}
	}
	return true
}
