// internal/middleware/security.go
//
// Security-header middleware for a form-ingestion API.
//
//   • X-Content-Type-Options   –  MIME-sniffing defence
//   • X-Frame-Options          –  responses are never framed
//   • Referrer-Policy          –  no referrer leaves the service
//   • Cache-Control            –  responses are never cached by proxies
//
// Headers are set *before* next.ServeHTTP; once a handler writes the status
// line, later header mutations are ignored.  Handlers may still override.

package middleware

import "net/http"

// Security sets security headers for every response.
func Security(next http.Handler) http.Handler {
	const (
		nosn  = "nosniff"
		xfo   = "DENY"
		refer = "no-referrer"
		cache = "no-store"
	)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", nosn)
		h.Set("X-Frame-Options", xfo)
		h.Set("Referrer-Policy", refer)
		h.Set("Cache-Control", cache)

		next.ServeHTTP(w, r)
	})
}
