package middleware

import "net/http"

// MaxRequestSize caps request bodies; oversized booking payloads fail at
// decode time with http.MaxBytesError instead of exhausting memory.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
