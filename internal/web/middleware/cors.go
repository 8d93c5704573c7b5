package middleware

import (
	"net/http"
	"os"
	"strings"
)

// originSet holds the origins cleared for cross-origin requests.
type originSet map[string]struct{}

// allowedOrigins builds the origin whitelist from the WEB_ALLOWED_ORIGINS
// environment variable (comma separated). Localhost origins never need to be
// listed; allows treats them as permitted so local frontends work without
// configuration.
func allowedOrigins() originSet {
	set := make(originSet)
	if env := os.Getenv("WEB_ALLOWED_ORIGINS"); env != "" {
		for o := range strings.SplitSeq(env, ",") {
			if o = strings.TrimSpace(o); o != "" {
				set[o] = struct{}{}
			}
		}
	}
	return set
}

func (s originSet) allows(origin string) bool {
	if origin == "" {
		return false
	}
	if isLocalhost(origin) {
		return true
	}
	_, ok := s[origin]
	return ok
}

// isLocalhost reports whether the origin points at localhost on any port.
func isLocalhost(origin string) bool {
	rest, ok := strings.CutPrefix(origin, "http://")
	if !ok {
		rest, ok = strings.CutPrefix(origin, "https://")
	}
	if !ok {
		return false
	}
	return rest == "localhost" || strings.HasPrefix(rest, "localhost:")
}

// CORS handles cross-origin headers for the JSON API. The whitelist comes
// from WEB_ALLOWED_ORIGINS; the API only serves GET and POST, so the
// preflight surface stays small.
func CORS() func(http.Handler) http.Handler {
	allowed := allowedOrigins()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := r.Header.Get("Origin"); allowed.allows(origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeaders sets response headers for an API that never serves HTML.
func SecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			next.ServeHTTP(w, r)
		})
	}
}
