package middleware

import "net/http"

// Inflight caps the number of simultaneous blocking generation requests, so a
// burst of long-lived polling loops cannot exhaust outbound connections. This
// is deployment-level resource policy; limit <= 0 disables the cap.
func Inflight(limit int) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	slots := make(chan struct{}, limit)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case slots <- struct{}{}:
				defer func() { <-slots }()
				next.ServeHTTP(w, r)
			default:
				w.WriteHeader(http.StatusTooManyRequests)
			}
		})
	}
}
