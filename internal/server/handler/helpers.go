package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/JWBcode/lst-arb/internal/domain"
)

// ScanSource provides the latest scan and session counters to the read API.
// It is backed either by the in-process scanner or, in a dashboard-only
// process, by the Redis snapshot cache.
type ScanSource interface {
	// LatestScan returns the most recent completed scan. It returns
	// domain.ErrNotFound when no scan has completed yet.
	LatestScan(ctx context.Context) (domain.ScanResult, error)
	// Session returns the running session counters.
	Session(ctx context.Context) (domain.SessionSnapshot, error)
}

// Triggerer requests an immediate scan pass.
type Triggerer interface {
	TriggerScan()
}

// writeJSON marshals v as JSON and writes it to the response with the given
// HTTP status code. If marshaling fails, it falls back to a plain-text 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a JSON-formatted error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parseLimit extracts a positive "limit" query parameter, returning def when
// absent or invalid and capping at max.
func parseLimit(r *http.Request, def, max int) int {
	limit := def
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > max {
		limit = max
	}
	return limit
}

// pathParam extracts a named path parameter from the request using Go 1.22+
// built-in routing (http.Request.PathValue).
func pathParam(r *http.Request, name string) string {
	return r.PathValue(name)
}
