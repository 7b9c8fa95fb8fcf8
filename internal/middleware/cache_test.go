package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

// cacheRouter mirrors the app layout: a cached public catalog and a
// protected group that busts the cache.
func cacheRouter(rdb *redis.Client) *gin.Engine {
	hits := 0
	r := gin.New()

	public := r.Group("")
	public.Use(ResponseCache(rdb, time.Minute))
	public.GET("/services", func(c *gin.Context) {
		hits++
		c.JSON(http.StatusOK, gin.H{"hits": hits})
	})

	protected := r.Group("")
	protected.Use(CacheBust(rdb))
	protected.POST("/reviews", func(c *gin.Context) { c.Status(http.StatusCreated) })
	protected.POST("/broken", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	protected.GET("/messages", func(c *gin.Context) {
		MarkCacheDirty(c)
		c.Status(http.StatusOK)
	})
	protected.GET("/balance", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func serve(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestResponseCache_HitAndBust(t *testing.T) {
	rdb := newTestRedis(t)
	r := cacheRouter(rdb)

	w := serve(r, http.MethodGet, "/services")
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"hits":1}`, w.Body.String())

	w = serve(r, http.MethodGet, "/services")
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"hits":1}`, w.Body.String())

	tests := []struct {
		name      string
		method    string
		path      string
		wantFresh bool
	}{
		{"plain read keeps cache", http.MethodGet, "/balance", false},
		{"failed write keeps cache", http.MethodPost, "/broken", false},
		{"write flushes", http.MethodPost, "/reviews", true},
		{"read that marks messages flushes", http.MethodGet, "/messages", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// prime
			serve(r, http.MethodGet, "/services")

			serve(r, tt.method, tt.path)

			w := serve(r, http.MethodGet, "/services")
			if tt.wantFresh {
				assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
			} else {
				assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
			}
		})
	}
}

func TestRateLimit_BlocksAfterCapacity(t *testing.T) {
	rdb := newTestRedis(t)
	r := gin.New()
	r.Use(RateLimit(rdb, RateLimitConfig{Capacity: 2, RefillInterval: time.Hour}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	require.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/").Code)
	require.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/").Code)

	w := serve(r, http.MethodGet, "/")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}
