package scanner

import (
	"context"
	"errors"
	"log/slog"

	"github.com/JWBcode/lst-arb/internal/domain"
)

// SizeQuotes holds every venue quote gathered for one trade size, split by
// direction. A venue that failed to answer simply does not appear.
type SizeQuotes struct {
	Size  float64
	Buys  []domain.Quote
	Sells []domain.Quote
}

// Complete reports whether at least one venue answered on each side, i.e. a
// spread can be computed for this size.
func (sq SizeQuotes) Complete() bool {
	return len(sq.Buys) > 0 && len(sq.Sells) > 0
}

// BestPair returns the cheapest buy quote and the richest sell quote across
// venues. ok is false when either side is empty.
func (sq SizeQuotes) BestPair() (buy, sell domain.Quote, ok bool) {
	if !sq.Complete() {
		return domain.Quote{}, domain.Quote{}, false
	}
	buy = sq.Buys[0]
	for _, q := range sq.Buys[1:] {
		if q.Price < buy.Price {
			buy = q
		}
	}
	sell = sq.Sells[0]
	for _, q := range sq.Sells[1:] {
		if q.Price > sell.Price {
			sell = q
		}
	}
	return buy, sell, true
}

// Gate performs the cheap viability probe that decides whether a token is
// worth a full depth mapping. One small probe trade per venue per direction;
// the token passes when the best cross-venue spread is no worse than the skip
// threshold. The threshold is deliberately negative: a token only slightly
// under water at probe size may still be profitable at another size.
type Gate struct {
	sources          []domain.PriceSource
	probeSize        float64
	skipThresholdBps float64
	logger           *slog.Logger
}

// ProbeResult carries the gate's verdict plus the probe quotes, so the depth
// mapper can fold the probe size into its ladder without re-querying venues.
type ProbeResult struct {
	Viable    bool
	SpreadBps float64
	Quotes    SizeQuotes
}

// NewGate creates a viability gate over the given venues.
func NewGate(sources []domain.PriceSource, probeSize, skipThresholdBps float64, logger *slog.Logger) *Gate {
	return &Gate{
		sources:          sources,
		probeSize:        probeSize,
		skipThresholdBps: skipThresholdBps,
		logger:           logger.With(slog.String("component", "gate")),
	}
}

// Probe quotes the probe size on every venue and reports whether the token
// clears the skip threshold. Venue outages shrink the quote set; a token with
// no usable pair at all is simply not viable, never an error. Only context
// cancellation and caller bugs (invalid size, unknown token) propagate.
func (g *Gate) Probe(ctx context.Context, token domain.Token) (ProbeResult, error) {
	quotes, err := collectQuotes(ctx, g.sources, token, g.probeSize, g.logger)
	if err != nil {
		return ProbeResult{}, err
	}

	res := ProbeResult{SpreadBps: InvalidSpreadBps, Quotes: quotes}
	buy, sell, ok := quotes.BestPair()
	if !ok {
		g.logger.DebugContext(ctx, "probe has no usable quote pair",
			slog.String("token", token.Symbol),
		)
		return res, nil
	}

	res.SpreadBps = SpreadBps(buy.Price, sell.Price)
	res.Viable = res.SpreadBps >= g.skipThresholdBps

	g.logger.DebugContext(ctx, "viability probe",
		slog.String("token", token.Symbol),
		slog.Float64("spread_bps", res.SpreadBps),
		slog.Bool("viable", res.Viable),
	)
	return res, nil
}

// collectQuotes asks every source for a buy and a sell quote at size.
// ErrNoLiquidity and ErrRateLimited mark the venue absent for this size;
// anything else aborts the collection.
func collectQuotes(ctx context.Context, sources []domain.PriceSource, token domain.Token, size float64, logger *slog.Logger) (SizeQuotes, error) {
	sq := SizeQuotes{Size: size}
	for _, src := range sources {
		for _, dir := range []domain.Direction{domain.DirectionBuy, domain.DirectionSell} {
			q, err := src.Quote(ctx, token, size, dir)
			if err != nil {
				if errors.Is(err, domain.ErrNoLiquidity) || errors.Is(err, domain.ErrRateLimited) {
					logger.DebugContext(ctx, "venue absent for size",
						slog.String("venue", src.Name()),
						slog.String("token", token.Symbol),
						slog.Float64("size", size),
						slog.String("direction", string(dir)),
						slog.String("reason", err.Error()),
					)
					continue
				}
				return SizeQuotes{}, err
			}
			if !q.Valid() {
				logger.WarnContext(ctx, "venue returned invalid quote",
					slog.String("venue", src.Name()),
					slog.String("token", token.Symbol),
					slog.Float64("price", q.Price),
				)
				continue
			}
			switch dir {
			case domain.DirectionBuy:
				sq.Buys = append(sq.Buys, q)
			case domain.DirectionSell:
				sq.Sells = append(sq.Sells, q)
			}
		}
	}
	return sq, nil
}
