package config

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

func loadRedisConfig() (RedisConfig, error) {
	cfg := RedisConfig{
		Addr:     strings.TrimSpace(getEnv("REDIS_ADDR", "")),
		Password: getEnv("REDIS_PASSWORD", ""),
	}
	host := strings.TrimSpace(getEnv("REDIS_HOST", ""))
	port := strings.TrimSpace(getEnv("REDIS_PORT", ""))
	if host != "" && port != "" {
		cfg.Addr = host + ":" + port
	}

	var err error
	if cfg.DB, err = parseIntEnv("REDIS_DB", "0"); err != nil {
		return cfg, err
	}
	if cfg.CacheTTL, err = parseDurationEnv("CACHE_TTL", defaultCacheTTL); err != nil {
		return cfg, err
	}
	if cfg.RateCapacity, err = parseIntEnv("RATE_LIMIT_CAPACITY", defaultRateCapacity); err != nil {
		return cfg, err
	}
	if cfg.RateRefillEach, err = parseDurationEnv("RATE_LIMIT_REFILL_INTERVAL", defaultRateRefill); err != nil {
		return cfg, err
	}

	// Both features need a server; without REDIS_ADDR they stay off.
	cfg.CacheEnabled = cfg.Addr != "" && parseBoolEnv("CACHE_ENABLED", "true")
	cfg.RateEnabled = cfg.Addr != "" && parseBoolEnv("RATE_LIMIT_ENABLED", "true")
	return cfg, nil
}

// NewRedisClient returns nil when Redis is not configured or does not answer a
// ping; callers then run without caching and rate limiting.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis: ping %s failed, cache and rate limit disabled: %v", cfg.Addr, err)
		_ = client.Close()
		return nil
	}
	return client
}
