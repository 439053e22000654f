package domain

import "context"

// PriceSource is a single liquidity venue able to answer "how much ETH per
// token when trading size ETH-equivalent in this direction". Implementations
// wrap HTTP aggregator APIs, direct on-chain calls, or a simulated market.
//
// Reads must be idempotent and honour ctx deadlines. Expected, frequent
// outcomes are reported as sentinel errors rather than faults:
// ErrNoLiquidity when no route can fill the request (including timeouts and
// malformed upstream responses) and ErrRateLimited when the upstream throttled
// the call. ErrInvalidSize signals a contract violation by the caller and is
// never swallowed.
type PriceSource interface {
	// Name identifies the venue ("Curve", "0x", ...) used in quotes and logs.
	Name() string
	Quote(ctx context.Context, token Token, size float64, direction Direction) (Quote, error)
}
