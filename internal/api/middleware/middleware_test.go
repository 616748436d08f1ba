package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pitapat/pkg/constants"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		query      string
		allowQuery bool
		want       string
	}{
		{"bearer", "Bearer gho_abc", "", false, "gho_abc"},
		{"小写前缀", "bearer gho_abc", "", false, "gho_abc"},
		{"裸 token", "gho_abc", "", false, "gho_abc"},
		{"query 不允许", "", "gho_q", false, ""},
		{"query", "", "gho_q", true, "gho_q"},
		{"header 优先", "Bearer gho_h", "gho_q", true, "gho_h"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/stream?token="+tt.query, nil)
			if tt.header != "" {
				c.Request.Header.Set(constants.HeaderAuthorization, tt.header)
			}
			assert.Equal(t, tt.want, ExtractToken(c, tt.allowQuery))
		})
	}
}

func TestTokenMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/p", TokenMiddleware(false), func(c *gin.Context) {
		c.String(http.StatusOK, GetToken(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/p", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"status":401`)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set(constants.HeaderAuthorization, "Bearer gho_abc")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gho_abc", w.Body.String())
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(constants.HeaderRequestID)
	require.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(constants.HeaderRequestID, "upstream-id")
	r.ServeHTTP(w, req)
	assert.Equal(t, "upstream-id", w.Body.String())
}

func TestCORSExposesAuthorization(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://app.example.com"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), constants.HeaderAuthorization)
}

func TestIPRateLimiter(t *testing.T) {
	rl := NewIPRateLimiter(1, 2, time.Minute)
	defer rl.Stop()

	r := gin.New()
	r.POST("/hook", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/hook", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/hook", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIPRateLimiterDisabled(t *testing.T) {
	rl := NewIPRateLimiter(0, 1, time.Minute)
	defer rl.Stop()
	r := gin.New()
	r.POST("/hook", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/hook", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
