package middleware

import (
	"context"
	"net/http"
	"time"
)

// Deadline cancels the request context after d. Unlike chi's Timeout it
// writes nothing; handlers report context.DeadlineExceeded themselves.
func Deadline(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
