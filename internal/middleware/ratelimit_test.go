package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func limitedRouter(rl *RateLimiter) *gin.Engine {
	router := gin.New()
	router.Use(rl.Middleware())
	router.POST("/api/ai/suggestions", func(c *gin.Context) {
		c.JSON(200, gin.H{"success": true})
	})
	return router
}

func hit(router *gin.Engine, ip string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/ai/suggestions", nil)
	req.RemoteAddr = ip + ":12345"
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimit_AllowsNormalRequests(t *testing.T) {
	rl := NewRateLimiter(10, 10)
	defer rl.Stop()

	assert.Equal(t, http.StatusOK, hit(limitedRouter(rl), "192.168.1.1").Code)
}

func TestRateLimit_BlocksExcessiveRequests(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	defer rl.Stop()
	router := limitedRouter(rl)

	var last *httptest.ResponseRecorder
	for i := 0; i < 5; i++ {
		last = hit(router, "10.0.0.1")
	}

	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.False(t, gjson.Get(last.Body.String(), "success").Bool())
	assert.Equal(t, "RateLimited", gjson.Get(last.Body.String(), "error").String())
	assert.Equal(t, "1", last.Header().Get("Retry-After"))
}

func TestRateLimit_IndependentPerIP(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	defer rl.Stop()
	router := limitedRouter(rl)

	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.2").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(router, "10.0.0.1").Code)
}

func TestRateLimit_EvictsIdle(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	defer rl.Stop()

	rl.getLimiter("10.0.0.9")
	rl.evict(time.Hour)
	assert.Len(t, rl.limiters, 1)

	rl.limiters["10.0.0.9"].lastSeen = time.Now().Add(-2 * time.Hour)
	rl.evict(time.Hour)
	assert.Empty(t, rl.limiters)
}
