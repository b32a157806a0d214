package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Limiter counts requests per user in the current window.
type Limiter interface {
	IncrementUserRateLimit(ctx context.Context, userID int64) (int64, error)
}

// RateLimit rejects an authenticated user's requests above perMinute. A
// failing limiter lets the request through.
func RateLimit(limiter Limiter, perMinute int, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFrom(r.Context())
			if user == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			count, err := limiter.IncrementUserRateLimit(ctx, user.ID)
			if err != nil {
				logger.Error("failed to check rate limit",
					zap.Int64("user_id", user.ID),
					zap.Error(err),
				)
				next.ServeHTTP(w, r)
				return
			}

			remaining := int64(perMinute) - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(perMinute))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(perMinute) {
				logger.Warn("rate limit exceeded",
					zap.Int64("user_id", user.ID),
					zap.Int64("count", count),
				)

				w.Header().Set("Retry-After", strconv.Itoa(60))
				fail(w, http.StatusTooManyRequests, fmt.Sprintf(
					"Too many requests. At most %d requests per minute.", perMinute,
				))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
