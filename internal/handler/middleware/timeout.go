package middleware

import (
	"context"
	"net/http"
	"time"
)

// timeoutBody mirrors the API error envelope so clients can parse a timeout
// like any other failure response.
const timeoutBody = `{"success":false,"error":{"code":"REQUEST_TIMEOUT","message":"request processing exceeded the configured deadline"}}`

// Timeout bounds request handling: the request context is cancelled at the
// deadline and a late handler response is replaced by the timeout envelope.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		handler := http.TimeoutHandler(next, timeout, timeoutBody)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			handler.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
