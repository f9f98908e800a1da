package middleware

import (
	"net/http"

	"triptrek-backend/pkg/auth"
	"triptrek-backend/pkg/errors"
)

// RateLimit rejects requests from clients that exhausted their token bucket
func RateLimit(limiter auth.RateLimiter, errHandler *errors.ErrorHandler) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), clientIP(r))
			if err == nil && !allowed {
				errHandler.Handle(w, r, errors.ErrRateLimitExceeded)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
