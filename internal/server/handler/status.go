package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/JWBcode/lst-arb/internal/domain"
)

// StatusHandler serves the backend status and session counters for the
// dashboard.
type StatusHandler struct {
	mode   string
	source ScanSource
	logger *slog.Logger
}

// NewStatusHandler creates a StatusHandler for the given run mode.
func NewStatusHandler(mode string, source ScanSource, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{mode: mode, source: source, logger: logger}
}

// GetStatus responds with the run mode, session counters, and the sequence
// and timing of the latest scan.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"mode": h.mode,
	}

	if snap, err := h.source.Session(r.Context()); err == nil {
		resp["session"] = snap
	} else if !errors.Is(err, domain.ErrNotFound) {
		h.logger.ErrorContext(r.Context(), "status: session read failed", slog.String("error", err.Error()))
	}

	scan, err := h.source.LatestScan(r.Context())
	switch {
	case err == nil:
		resp["last_scan"] = map[string]any{
			"sequence":       scan.Sequence,
			"completed_at":   scan.CompletedAt,
			"tokens_scanned": scan.TokensScanned,
			"viable_tokens":  scan.ViableTokens,
			"opportunities":  len(scan.Opportunities),
		}
	case errors.Is(err, domain.ErrNotFound):
		resp["last_scan"] = nil
	default:
		writeError(w, http.StatusInternalServerError, "scan state unavailable")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
