package middlewares

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"taskmanager/pkg"
	"taskmanager/pkg/config"
	"taskmanager/pkg/telemetry"
)

type RateLimitEntry struct {
	Count     int
	ResetTime time.Time
}

// RateLimiter does fixed-window counting per (path, caller) on top of
// go-cache. Authenticated routes key by user id, public ones by client IP.
type RateLimiter struct {
	cache    *cache.Cache
	config   map[string]config.RateLimitConfig
	fallback config.RateLimitConfig
	logger   *zap.Logger
	metrics  *telemetry.AppMetrics
	mutex    sync.Mutex
}

func NewRateLimiter(logger *zap.Logger, metrics *telemetry.AppMetrics, configs map[string]config.RateLimitConfig) *RateLimiter {
	c := cache.New(5*time.Minute, 10*time.Minute)

	return &RateLimiter{
		cache:    c,
		config:   configs,
		fallback: config.RateLimitConfig{Requests: 60, Window: time.Minute},
		logger:   logger,
		metrics:  metrics,
	}
}

func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		cfg, exists := rl.config[path]
		if !exists {
			cfg = rl.fallback
		}

		key, keyType := rl.callerKey(c, path)

		allowed, remaining, resetTime := rl.checkRateLimit(key, cfg)

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			if rl.metrics != nil {
				rl.metrics.RecordRateLimitHit(c.Request.Context(), path, keyType)
			}

			rl.logger.Warn("Rate limit exceeded",
				zap.String("key", key),
				zap.String("path", path),
				zap.Int("limit", cfg.Requests),
				zap.Duration("window", cfg.Window))

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"message":     fmt.Sprintf("Too many requests. Limit: %d per %v", cfg.Requests, cfg.Window),
				"retry_after": int(time.Until(resetTime).Seconds()),
			})
			c.Abort()
			return
		}

		if rl.metrics != nil {
			rl.metrics.RecordRateLimitAllowed(c.Request.Context(), path, keyType)
		}

		c.Next()
	}
}

func (rl *RateLimiter) checkRateLimit(key string, cfg config.RateLimitConfig) (bool, int, time.Time) {
	now := time.Now()

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	if entry, found := rl.cache.Get(key); found {
		rateLimitEntry := entry.(RateLimitEntry)

		if now.After(rateLimitEntry.ResetTime) {
			resetTime := now.Add(cfg.Window)
			rl.cache.Set(key, RateLimitEntry{Count: 1, ResetTime: resetTime}, cfg.Window)
			return true, cfg.Requests - 1, resetTime
		}

		if rateLimitEntry.Count >= cfg.Requests {
			return false, 0, rateLimitEntry.ResetTime
		}

		rateLimitEntry.Count++
		rl.cache.Set(key, rateLimitEntry, cache.DefaultExpiration)

		return true, cfg.Requests - rateLimitEntry.Count, rateLimitEntry.ResetTime
	}

	resetTime := now.Add(cfg.Window)
	rl.cache.Set(key, RateLimitEntry{Count: 1, ResetTime: resetTime}, cfg.Window)

	return true, cfg.Requests - 1, resetTime
}

func (rl *RateLimiter) callerKey(c *gin.Context, path string) (string, string) {
	if userID, exists := c.Get("x-user-id"); exists {
		return fmt.Sprintf("rate_limit:%s:user_%v", path, userID), "user"
	}

	return fmt.Sprintf("rate_limit:%s:ip_%s", path, pkg.GetClientIP(c)), "ip"
}

func (rl *RateLimiter) Stats() map[string]interface{} {
	return map[string]interface{}{
		"active_entries": rl.cache.ItemCount(),
		"configs":        len(rl.config),
	}
}
