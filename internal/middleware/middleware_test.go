package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/bakery_api/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"shop.example.com", "localhost:3000"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name   string
		origin string
		want   string
	}{
		{"allowed", "https://shop.example.com", "https://shop.example.com"},
		{"default_port", "https://shop.example.com:443", "https://shop.example.com:443"},
		{"dev", "http://localhost:3000/", "http://localhost:3000"},
		{"foreign", "https://evil.example.org", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.Header.Set("Origin", tt.origin)
			w := serve(r, req)
			assert.Equal(t, tt.want, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	assert.Equal(t, http.StatusNoContent, serve(r, req).Code)
}

func TestJWTMiddleware(t *testing.T) {
	jm := utils.NewJWTManager("secret", time.Hour)
	token, err := jm.GenerateJWT(7, "owner@bakery.test")
	require.NoError(t, err)

	r := gin.New()
	r.Use(NewJWTMiddleware(jm, nil).Handle())
	r.GET("/admin", func(c *gin.Context) {
		c.String(http.StatusOK, "%d %s", GetAdminID(c), c.GetString(AdminEmailKey))
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "7 owner@bakery.test", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/admin?token="+token, nil)
	assert.Equal(t, http.StatusOK, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	other := utils.NewJWTManager("other", time.Hour)
	forged, _ := other.GenerateJWT(7, "owner@bakery.test")
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
}

func TestJWTMiddleware_ThrottlesRepeatedFailures(t *testing.T) {
	r := gin.New()
	r.Use(NewJWTMiddleware(utils.NewJWTManager("secret", time.Hour), nil).Handle())
	r.GET("/admin", func(c *gin.Context) { c.Status(http.StatusOK) })

	var last int
	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer junk")
		last = serve(r, req).Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestIdentityMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/me", RequireUser(), func(c *gin.Context) { c.String(http.StatusOK, GetUserID(c)) })
	r.GET("/checkout", OptionalUser(), func(c *gin.Context) {
		if UserIDPtr(c) == nil {
			c.String(http.StatusOK, "guest")
			return
		}
		c.String(http.StatusOK, *UserIDPtr(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(UserIDHeader, " uid-1 ")
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "uid-1", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/checkout", nil)
	assert.Equal(t, "guest", serve(r, req).Body.String())
}

func TestInvalidAuthRateLimiter_WindowResets(t *testing.T) {
	now := time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)
	rl := &InvalidAuthRateLimiter{attempts: map[string]*attemptInfo{}, limit: 5, window: time.Minute, now: func() time.Time { return now }}

	for i := 0; i < 5; i++ {
		assert.True(t, rl.Allow("1.2.3.4"))
	}
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"))

	now = now.Add(2 * time.Minute)
	assert.True(t, rl.Allow("1.2.3.4"))
}

func TestIPRateLimiter(t *testing.T) {
	rl := NewIPRateLimiter(1, 2)
	r := gin.New()
	r.POST("/orders", rl.Handle(), func(c *gin.Context) { c.Status(http.StatusCreated) })

	codes := make([]int, 3)
	for i := range codes {
		codes[i] = serve(r, httptest.NewRequest(http.MethodPost, "/orders", nil)).Code
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)
}

func TestLoggingMiddleware_SetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(LoggingMiddleware(), MetricsMiddleware())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Len(t, w.Body.String(), 8)
	assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-Id"))
}
