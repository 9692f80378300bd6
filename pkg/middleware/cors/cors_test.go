package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/attendance-dashboard/pkg/config"
)

func router(origins ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(New(config.CORSConfig{AllowedOrigins: origins}))
	r.GET("/api/me", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func do(r *gin.Engine, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/me", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAllowedOriginGetsCredentials(t *testing.T) {
	r := router("https://Shell.example.com/")

	w := do(r, http.MethodGet, "https://shell.example.com")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://shell.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-Export-Rows")

	pre := do(r, http.MethodOptions, "https://shell.example.com")
	assert.Equal(t, http.StatusNoContent, pre.Code)
	assert.Contains(t, pre.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestUnknownOriginGetsNoGrant(t *testing.T) {
	r := router("https://shell.example.com")

	w := do(r, http.MethodGet, "https://evil.example.com")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodOptions, "https://evil.example.com").Code)
}

func TestEmptyListEchoesAnyOrigin(t *testing.T) {
	w := do(router(), http.MethodGet, "http://localhost:5173")
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	plain := do(router(), http.MethodGet, "")
	assert.Empty(t, plain.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", plain.Header().Get("Vary"))
}
