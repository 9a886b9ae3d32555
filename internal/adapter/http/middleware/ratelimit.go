package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/bnema/scribe/internal/adapter/http/ratelimit"
	"github.com/bnema/scribe/internal/infrastructure/logger"
)

// RateLimit rejects clients that exceed limiter with 429 and a
// Retry-After hint.
func RateLimit(limiter *ratelimit.ClientLimiter, behindProxy bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := ratelimit.ClientIP(r, behindProxy)
		allowed, wait := limiter.Allow(clientID)
		if !allowed {
			logger.Warn.Printf("rate limited %s on %s", logger.SanitizeForLog(clientID), logger.SanitizeForLog(r.URL.Path))
			w.Header().Set("Retry-After", retryAfter(wait))
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// retryAfter rounds d up to whole seconds, never below one.
func retryAfter(d time.Duration) string {
	return strconv.Itoa(int(math.Max(1, math.Ceil(d.Seconds()))))
}
