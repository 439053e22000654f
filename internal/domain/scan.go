package domain

import "time"

// ScanResult is the full output of one orchestrator pass: the per-token depth
// mapping plus the ranked opportunity list. It is owned by the orchestrator
// for the duration of the pass and replaced wholesale on the next one;
// consumers (console printer, dashboard handlers) read it as plain data.
type ScanResult struct {
	Sequence      int64                     `json:"sequence"`
	StartedAt     time.Time                 `json:"started_at"`
	CompletedAt   time.Time                 `json:"completed_at"`
	Depths        map[string]LiquidityDepth `json:"depths"`
	Opportunities []Opportunity             `json:"opportunities"`
	TokensScanned int                       `json:"tokens_scanned"`
	ViableTokens  int                       `json:"viable_tokens"`
}
