package middleware

import (
	"net/http"

	"github.com/cloo-solutions/roadmapbot/internal/api"
)

// DefaultMaxBody covers a question plus a large knowledge document.
const DefaultMaxBody = 2 << 20

// MaxBodyBytes limits request body size.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit <= 0 || r.Body == nil {
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength > limit {
				api.ErrorWithDetails(w, http.StatusRequestEntityTooLarge, "request body too large", map[string]int64{"limit": limit})
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
