package domain

// DepthPoint is one rung of a token's depth map: the cross-venue spread
// observed at a given trade size, or a gap where at least one side could not
// be quoted.
type DepthPoint struct {
	SpreadBps float64 `json:"spread_bps"`
	Available bool    `json:"available"`
}

// LiquidityDepth characterizes how a token's spread behaves as trade size
// grows. Sizes holds the probed ladder in ascending order (the viability
// probe size folded in); Points has an entry for every rung, available or
// not. BestSpreadBps is the maximum spread among available rungs and
// MaxProfitableSize the largest size whose spread is strictly positive
// (zero when none is).
type LiquidityDepth struct {
	Token             string                 `json:"token"`
	Viable            bool                   `json:"viable"`
	InitialSpreadBps  float64                `json:"initial_spread_bps"`
	Sizes             []float64              `json:"sizes"`
	Points            map[float64]DepthPoint `json:"points"`
	BestSpreadBps     float64                `json:"best_spread_bps"`
	MaxProfitableSize float64                `json:"max_profitable_size"`
}
