// Package middleware provides HTTP middleware for the EduSeek Echo server.
// ratelimit.go implements a fixed-window request counter kept in memory.
// The window is keyed by the authenticated user when available, otherwise
// by client IP. A single-process map is valid for single-instance
// deployments; horizontal scaling needs the counters in a shared store.
package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// KeyFunc extracts the rate-limit key for a request. Returning "" falls
// back to the client IP.
type KeyFunc func(c echo.Context) string

// rateLimitEntry tracks request counts for one key within a window.
type rateLimitEntry struct {
	count       int
	windowStart time.Time
}

// RateLimit returns middleware that limits requests per key to maxRequests
// within the given window. Rejections get a structured 429 envelope.
// keyFn may be nil, in which case the client IP is the key.
func RateLimit(maxRequests int, window time.Duration, keyFn KeyFunc) echo.MiddlewareFunc {
	var mu sync.Mutex
	entries := make(map[string]*rateLimitEntry)

	// Background cleanup of expired entries every minute.
	go func() {
		for {
			time.Sleep(time.Minute)
			mu.Lock()
			now := time.Now()
			for key, entry := range entries {
				if now.Sub(entry.windowStart) > window*2 {
					delete(entries, key)
				}
			}
			mu.Unlock()
		}
	}()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := ""
			if keyFn != nil {
				key = keyFn(c)
			}
			if key == "" {
				key = c.RealIP()
			}
			now := time.Now()

			mu.Lock()
			entry, exists := entries[key]
			if !exists || now.Sub(entry.windowStart) > window {
				entry = &rateLimitEntry{windowStart: now}
				entries[key] = entry
			}
			entry.count++
			count := entry.count
			mu.Unlock()

			remaining := maxRequests - count
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(maxRequests))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(remaining, 0)))

			if remaining < 0 {
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				return JSONError(c, http.StatusTooManyRequests,
					"Rate limit exceeded. Please try again later.")
			}

			return next(c)
		}
	}
}
