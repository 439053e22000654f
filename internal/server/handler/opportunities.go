package handler

import (
	"errors"
	"net/http"

	"github.com/JWBcode/lst-arb/internal/domain"
)

// OpportunitiesHandler serves the ranked opportunity list from the latest
// scan.
type OpportunitiesHandler struct {
	source ScanSource
}

// NewOpportunitiesHandler creates an OpportunitiesHandler.
func NewOpportunitiesHandler(source ScanSource) *OpportunitiesHandler {
	return &OpportunitiesHandler{source: source}
}

// ListOpportunities responds with the opportunities of the most recent scan,
// already ranked by net profit. "?profitable=true" filters to positive-net
// routes; "?limit=N" caps the list.
// GET /api/opportunities
func (h *OpportunitiesHandler) ListOpportunities(w http.ResponseWriter, r *http.Request) {
	scan, err := h.source.LatestScan(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusOK, map[string]any{
				"sequence":      nil,
				"opportunities": []domain.Opportunity{},
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "scan state unavailable")
		return
	}

	opps := scan.Opportunities
	if r.URL.Query().Get("profitable") == "true" {
		filtered := make([]domain.Opportunity, 0, len(opps))
		for _, o := range opps {
			if o.Profitable() {
				filtered = append(filtered, o)
			}
		}
		opps = filtered
	}

	limit := parseLimit(r, 50, 500)
	if len(opps) > limit {
		opps = opps[:limit]
	}
	if opps == nil {
		opps = []domain.Opportunity{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sequence":      scan.Sequence,
		"completed_at":  scan.CompletedAt,
		"opportunities": opps,
	})
}
