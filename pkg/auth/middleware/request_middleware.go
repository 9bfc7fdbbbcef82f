package middleware

import (
	"net/http"

	"area-access-service/pkg/id"
)

// RequestID tags every request with a ref for log correlation. An incoming
// X-Request-ID from the gateway is kept, otherwise a fresh one is minted.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get("X-Request-ID")
		if rid == "" {
			rid = id.GenerateRef("req")
		}
		w.Header().Set("X-Request-ID", rid)
		next.ServeHTTP(w, r)
	})
}
