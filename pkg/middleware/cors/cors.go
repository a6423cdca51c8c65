package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	allowHeaders  = "Authorization, Content-Type, X-Request-ID"
	allowMethods  = "GET, POST, PATCH, DELETE, OPTIONS"
	exposeHeaders = "Content-Disposition, X-Result-Count, X-Request-ID"
)

// New returns a CORS middleware. With no configured origins every origin is
// allowed without credentials; otherwise only listed origins are echoed back
// and may send the bearer token.
func New(allowedOrigins []string) gin.HandlerFunc {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origins[normalize(origin)] = struct{}{}
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Add("Vary", "Origin")

		origin := c.GetHeader("Origin")
		switch {
		case len(origins) == 0:
			h.Set("Access-Control-Allow-Origin", "*")
		case origin != "":
			if _, ok := origins[normalize(origin)]; ok {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
			}
		}
		h.Set("Access-Control-Expose-Headers", exposeHeaders)

		if c.Request.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Headers", allowHeaders)
			h.Set("Access-Control-Allow-Methods", allowMethods)
			h.Set("Access-Control-Max-Age", "600")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func normalize(origin string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(origin), "/"))
}
