package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey   = "response_meta"
	requestStartKey   = "response_meta_start"
	cacheHitKey       = "cache_hit"
	processingTimeKey = "processing_time_ms"
)

// WithResponseMeta enables the meta block on search responses and starts the
// processing clock reported in it.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(requestStartKey, time.Now())
		c.Set(responseMetaKey, map[string]interface{}{})
		c.Next()
	}
}

// SetCacheHit records whether the response body came from the search cache.
func SetCacheHit(c *gin.Context, hit bool) {
	meta(c)[cacheHitKey] = hit
}

// ExtractMeta returns the meta block to serialise, stamping the elapsed time
// when WithResponseMeta is installed.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	raw, ok := c.Get(responseMetaKey)
	if !ok {
		return nil
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil
	}
	if start, ok := c.Get(requestStartKey); ok {
		if t, ok := start.(time.Time); ok {
			m[processingTimeKey] = time.Since(t).Milliseconds()
		}
	}
	return m
}

func meta(c *gin.Context) map[string]interface{} {
	if raw, ok := c.Get(responseMetaKey); ok {
		if m, ok := raw.(map[string]interface{}); ok {
			return m
		}
	}
	m := make(map[string]interface{})
	c.Set(responseMetaKey, m)
	return m
}
