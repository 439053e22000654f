package simulated

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/JWBcode/lst-arb/internal/domain"
)

// Market is a synthetic venue for running the scanner without network access.
// Prices are derived from a per-token reference mid with a fixed venue bias,
// bounded random jitter, and size-proportional slippage that always works
// against the trader. Two markets with different biases reliably produce
// crossable spreads, which is the point: exercising the waterfall end to end.
type Market struct {
	name      string
	mids      map[string]float64
	biasBps   float64
	jitterBps float64
	slipBps   float64 // extra bps of impact per ETH of trade size

	mu  sync.Mutex
	rng *rand.Rand
}

var _ domain.PriceSource = (*Market)(nil)

// NewMarket creates a simulated venue. mids maps token symbol to the
// reference mid price in ETH per token. rng is owned by the market afterwards
// and is typically seeded from config so runs are reproducible.
func NewMarket(name string, mids map[string]float64, biasBps, jitterBps, slipBps float64, rng *rand.Rand) *Market {
	return &Market{
		name:      name,
		mids:      mids,
		biasBps:   biasBps,
		jitterBps: jitterBps,
		slipBps:   slipBps,
		rng:       rng,
	}
}

// Name identifies the venue in quotes and logs.
func (m *Market) Name() string { return m.name }

// Quote prices the trade off the reference mid. Tokens this venue does not
// list degrade to no liquidity so a partial simulation still scans cleanly.
func (m *Market) Quote(_ context.Context, token domain.Token, size float64, direction domain.Direction) (domain.Quote, error) {
	if size <= 0 {
		return domain.Quote{}, fmt.Errorf("simulated %s: size %v: %w", m.name, size, domain.ErrInvalidSize)
	}
	mid, ok := m.mids[token.Symbol]
	if !ok {
		return domain.Quote{}, fmt.Errorf("simulated %s: %s not listed: %w", m.name, token.Symbol, domain.ErrNoLiquidity)
	}

	m.mu.Lock()
	jitter := (m.rng.Float64()*2 - 1) * m.jitterBps
	m.mu.Unlock()

	impact := m.slipBps * size
	var offsetBps float64
	switch direction {
	case domain.DirectionBuy:
		offsetBps = m.biasBps + jitter + impact
	case domain.DirectionSell:
		offsetBps = m.biasBps + jitter - impact
	default:
		return domain.Quote{}, fmt.Errorf("simulated %s: direction %q: %w", m.name, direction, domain.ErrInvalidSize)
	}

	return domain.Quote{
		Venue:     m.name,
		Token:     token.Symbol,
		Direction: direction,
		Size:      size,
		Price:     mid * (1 + offsetBps/10000),
		Source:    "simulated",
	}, nil
}
