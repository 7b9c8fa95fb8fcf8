package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"reservehub/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	cachePrefix   = "cache"
	cacheDirtyKey = "cache_dirty"
)

// MarkCacheDirty makes CacheBust flush after a read that changed state, such
// as listing messages marks them read.
func MarkCacheDirty(c *gin.Context) {
	c.Set(cacheDirtyKey, true)
}

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// captureWriter keeps a copy of the body while forwarding it to the client.
type captureWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// cacheKey covers route, query and caller so per-user fields never leak.
func cacheKey(c *gin.Context) string {
	tail := fmt.Sprintf("%s|%s|user:%d", c.Request.URL.Path, c.Request.URL.RawQuery, c.GetInt64("user_id"))
	sum := sha1.Sum([]byte(tail))
	return fmt.Sprintf("%s:%x", cachePrefix, sum[:])
}

// ResponseCache serves successful GET responses from Redis for ttl.
func ResponseCache(rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	if rdb == nil || ttl <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := cacheKey(c)

		if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
			var cached cachedResponse
			if json.Unmarshal(bs, &cached) == nil {
				c.Header("X-Cache", "HIT")
				c.Data(cached.Status, cached.ContentType, cached.Body)
				c.Abort()
				return
			}
		}

		cw := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = cw
		c.Header("X-Cache", "MISS")
		c.Next()

		if cw.Status() != http.StatusOK {
			return
		}
		payload, err := json.Marshal(cachedResponse{
			Status:      cw.Status(),
			ContentType: cw.Header().Get("Content-Type"),
			Body:        cw.buf.Bytes(),
		})
		if err != nil {
			return
		}
		if err := rdb.Set(context.WithoutCancel(ctx), key, payload, ttl).Err(); err != nil {
			logger.WarnContext(ctx, "response cache write failed", "error", err)
		}
	}
}

// CacheBust drops every cached response after a successful write request or
// a read marked with MarkCacheDirty.
func CacheBust(rdb *redis.Client) gin.HandlerFunc {
	if rdb == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		if c.Request.Method == http.MethodGet && !c.GetBool(cacheDirtyKey) {
			return
		}
		ctx := context.WithoutCancel(c.Request.Context())
		iter := rdb.Scan(ctx, 0, cachePrefix+":*", 100).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			logger.WarnContext(ctx, "cache scan failed", "error", err)
			return
		}
		if len(keys) > 0 {
			_ = rdb.Del(ctx, keys...).Err()
		}
	}
}
