package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// wsPath is the WebSocket feed route; it is the one place a query-string key
// is accepted, since browser WebSocket clients cannot set request headers.
const wsPath = "/ws"

// healthPath stays open even when a key is configured, so liveness probes
// need no credentials.
const healthPath = "/api/health"

// Auth returns middleware guarding the scan API with a static key. Clients
// present it as "Authorization: Bearer <key>", an X-API-Key header, or an
// api_key query parameter on the WebSocket route. An empty key disables the
// check entirely.
func Auth(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			if r.Method == http.MethodGet && r.URL.Path == healthPath {
				next.ServeHTTP(w, r)
				return
			}

			key := presentedKey(r)
			if key == "" {
				writeUnauthorized(w, "missing API key")
				return
			}

			// Constant-time comparison to prevent timing attacks.
			if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
				writeUnauthorized(w, "invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// presentedKey pulls the key the client sent, headers first. The query
// parameter is only honored on the WebSocket route.
func presentedKey(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if key := r.Header.Get("X-API-Key"); key != "" {
		return strings.TrimSpace(key)
	}
	if r.URL.Path == wsPath {
		return strings.TrimSpace(r.URL.Query().Get("api_key"))
	}
	return ""
}

// writeUnauthorized sends a 401 response with a JSON error body.
func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
