package router

import (
	"net/http"

	"github.com/mwhitworth/ratemill/internal/domain"
)

// SetupHeaderAuthMiddleware returns middleware that takes the rater identity
// from the X-User-ID header without verification. Only suitable behind a
// trusted proxy or for local development.
func SetupHeaderAuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID := r.Header.Get("X-User-ID"); userID != "" {
				r = r.WithContext(domain.ContextWithUserID(r.Context(), userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}
