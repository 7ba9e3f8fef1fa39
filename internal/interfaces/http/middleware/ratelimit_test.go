package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newLimitedRouter(limiter *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimit(limiter))
	router.POST("/score", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"overall_score": 8.0})
	})
	return router
}

func scoreFrom(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/score", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiterAllow(t *testing.T) {
	t.Run("fills the window then blocks", func(t *testing.T) {
		limiter := NewRateLimiter(3, time.Minute)

		for i := 0; i < 3; i++ {
			assert.True(t, limiter.Allow("client"), "request %d should be allowed", i+1)
		}
		assert.False(t, limiter.Allow("client"))
	})

	t.Run("keys are independent", func(t *testing.T) {
		limiter := NewRateLimiter(2, time.Minute)

		assert.True(t, limiter.Allow("a"))
		assert.True(t, limiter.Allow("a"))
		assert.False(t, limiter.Allow("a"))

		assert.True(t, limiter.Allow("b"))
		assert.True(t, limiter.Allow("b"))
	})

	t.Run("window elapse resets the count", func(t *testing.T) {
		limiter := NewRateLimiter(2, 50*time.Millisecond)

		assert.True(t, limiter.Allow("client"))
		assert.True(t, limiter.Allow("client"))
		assert.False(t, limiter.Allow("client"))

		time.Sleep(60 * time.Millisecond)

		assert.True(t, limiter.Allow("client"))
	})

	t.Run("concurrent callers never exceed the limit", func(t *testing.T) {
		limiter := NewRateLimiter(100, time.Minute)

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			allowed int
		)
		for i := 0; i < 150; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if limiter.Allow("shared") {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 100, allowed)
	})
}

func TestRateLimiterRemaining(t *testing.T) {
	limiter := NewRateLimiter(5, time.Minute)

	assert.Equal(t, 5, limiter.Remaining("fresh"))

	limiter.Allow("fresh")
	limiter.Allow("fresh")
	assert.Equal(t, 3, limiter.Remaining("fresh"))
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("passes requests within the limit and sets quota headers", func(t *testing.T) {
		router := newLimitedRouter(NewRateLimiter(3, time.Minute))

		w := scoreFrom(router, "10.0.0.1:1234")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("rejects with 429 once exhausted", func(t *testing.T) {
		router := newLimitedRouter(NewRateLimiter(2, time.Minute))

		for i := 0; i < 2; i++ {
			assert.Equal(t, http.StatusOK, scoreFrom(router, "10.0.0.1:1234").Code)
		}

		w := scoreFrom(router, "10.0.0.1:1234")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
	})

	t.Run("limits by client IP", func(t *testing.T) {
		router := newLimitedRouter(NewRateLimiter(1, time.Minute))

		assert.Equal(t, http.StatusOK, scoreFrom(router, "10.0.0.1:1234").Code)
		assert.Equal(t, http.StatusTooManyRequests, scoreFrom(router, "10.0.0.1:1234").Code)

		// a different caller still gets through
		assert.Equal(t, http.StatusOK, scoreFrom(router, "10.0.0.2:1234").Code)
	})
}

func TestRateLimitByKey(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := NewRateLimiter(1, time.Minute)
	router := gin.New()
	router.Use(RateLimitByKey(limiter, func(c *gin.Context) string {
		return c.GetHeader("X-API-Key")
	}))
	router.GET("/analyses", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	get := func(apiKey string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/analyses", nil)
		req.Header.Set("X-API-Key", apiKey)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, get("key-1").Code)
	assert.Equal(t, http.StatusTooManyRequests, get("key-1").Code)
	assert.Equal(t, http.StatusOK, get("key-2").Code)
}
