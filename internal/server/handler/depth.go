package handler

import (
	"errors"
	"net/http"

	"github.com/JWBcode/lst-arb/internal/domain"
)

// DepthHandler serves the per-token liquidity depth maps from the latest
// scan.
type DepthHandler struct {
	source ScanSource
}

// NewDepthHandler creates a DepthHandler.
func NewDepthHandler(source ScanSource) *DepthHandler {
	return &DepthHandler{source: source}
}

// ListDepths responds with the depth map for every scanned token.
// GET /api/depth
func (h *DepthHandler) ListDepths(w http.ResponseWriter, r *http.Request) {
	scan, err := h.source.LatestScan(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusOK, map[string]any{
				"sequence": nil,
				"depths":   map[string]domain.LiquidityDepth{},
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "scan state unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sequence":     scan.Sequence,
		"completed_at": scan.CompletedAt,
		"depths":       scan.Depths,
	})
}

// GetDepth responds with a single token's depth map.
// GET /api/depth/{token}
func (h *DepthHandler) GetDepth(w http.ResponseWriter, r *http.Request) {
	symbol := pathParam(r, "token")

	scan, err := h.source.LatestScan(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no scan completed yet")
			return
		}
		writeError(w, http.StatusInternalServerError, "scan state unavailable")
		return
	}

	depth, ok := scan.Depths[symbol]
	if !ok {
		writeError(w, http.StatusNotFound, "token not scanned: "+symbol)
		return
	}
	writeJSON(w, http.StatusOK, depth)
}
