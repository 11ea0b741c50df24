package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimiter(rate.Limit(1), 2))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	assert.Equal(t, http.StatusOK, get(router, "/ping").Code)
	assert.Equal(t, http.StatusOK, get(router, "/ping").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(router, "/ping").Code)
}

func TestResponseCache(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := cache.New(time.Minute, time.Minute)

	hits := 0
	router := gin.New()
	router.Use(ResponseCache(store, time.Minute))
	router.GET("/data", func(c *gin.Context) {
		hits++
		c.JSON(http.StatusOK, gin.H{"hits": hits})
	})
	router.POST("/data", func(c *gin.Context) {
		hits++
		c.Status(http.StatusCreated)
	})
	router.GET("/missing", func(c *gin.Context) {
		hits++
		c.Status(http.StatusNotFound)
	})

	first := get(router, "/data")
	require.Equal(t, http.StatusOK, first.Code)
	second := get(router, "/data")
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, hits)

	// Writes are never cached.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/data", nil))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/data", nil))
	assert.Equal(t, 3, hits)

	// Error responses are never cached.
	get(router, "/missing")
	get(router, "/missing")
	assert.Equal(t, 5, hits)

	// Bust makes the next read go through again.
	Bust(store)
	third := get(router, "/data")
	require.Equal(t, http.StatusOK, third.Code)
	assert.NotEqual(t, first.Body.String(), third.Body.String())
}
