package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func do(allowed []string, method, origin string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(New(allowed))
	r.GET("/search/advanced/export", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(method, "/search/advanced/export", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORSOpenByDefault(t *testing.T) {
	w := do(nil, http.MethodGet, "https://any.test")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}

func TestCORSAllowList(t *testing.T) {
	allowed := []string{"https://catalog.test/"}

	w := do(allowed, http.MethodGet, "https://Catalog.test")
	assert.Equal(t, "https://Catalog.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = do(allowed, http.MethodGet, "https://evil.test")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	w := do([]string{"https://catalog.test"}, http.MethodOptions, "https://catalog.test")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}
