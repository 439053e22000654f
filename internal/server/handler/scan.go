package handler

import (
	"log/slog"
	"net/http"
)

// ScanHandler exposes manual scan control.
type ScanHandler struct {
	trigger Triggerer
	logger  *slog.Logger
}

// NewScanHandler creates a ScanHandler. trigger may be nil when no scanner
// runs in this process (dashboard-only mode).
func NewScanHandler(trigger Triggerer, logger *slog.Logger) *ScanHandler {
	return &ScanHandler{trigger: trigger, logger: logger}
}

// TriggerScan requests an immediate scan pass. The request returns as soon as
// the trigger is queued; results arrive through the usual read endpoints and
// the WebSocket feed.
// POST /api/scan/trigger
func (h *ScanHandler) TriggerScan(w http.ResponseWriter, r *http.Request) {
	if h.trigger == nil {
		writeError(w, http.StatusConflict, "no scanner running in this process")
		return
	}
	h.trigger.TriggerScan()
	h.logger.InfoContext(r.Context(), "scan trigger accepted", slog.String("remote_addr", r.RemoteAddr))
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "scan triggered"})
}
