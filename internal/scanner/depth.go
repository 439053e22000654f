package scanner

import (
	"context"
	"log/slog"
	"sort"

	"github.com/JWBcode/lst-arb/internal/domain"
)

// Mapper walks the size ladder for a token that passed the viability gate and
// records the best cross-venue spread at each rung. The probe size is folded
// into the ladder so its quotes are reused rather than fetched twice. Rungs
// where no venue pair answered are recorded as absent; gaps are expected and
// never abort the sweep.
type Mapper struct {
	sources []domain.PriceSource
	ladder  []float64
	logger  *slog.Logger
}

// NewMapper creates a depth mapper over the given venues and size ladder.
func NewMapper(sources []domain.PriceSource, ladder []float64, logger *slog.Logger) *Mapper {
	return &Mapper{
		sources: sources,
		ladder:  ladder,
		logger:  logger.With(slog.String("component", "depth_mapper")),
	}
}

// Map builds the liquidity depth profile for one token. probe must come from
// a passing gate check; its quotes serve the probe-size rung. The returned
// SizeQuotes slice (ascending by size) carries the raw venue quotes per rung
// for the opportunity finder.
func (m *Mapper) Map(ctx context.Context, token domain.Token, probe ProbeResult) (domain.LiquidityDepth, []SizeQuotes, error) {
	sizes := foldSizes(m.ladder, probe.Quotes.Size)

	depth := domain.LiquidityDepth{
		Token:            token.Symbol,
		Viable:           true,
		InitialSpreadBps: probe.SpreadBps,
		Sizes:            sizes,
		Points:           make(map[float64]domain.DepthPoint, len(sizes)),
		BestSpreadBps:    InvalidSpreadBps,
	}

	quotesBySize := make([]SizeQuotes, 0, len(sizes))
	for _, size := range sizes {
		var sq SizeQuotes
		if size == probe.Quotes.Size {
			sq = probe.Quotes
		} else {
			var err error
			sq, err = collectQuotes(ctx, m.sources, token, size, m.logger)
			if err != nil {
				return domain.LiquidityDepth{}, nil, err
			}
		}
		quotesBySize = append(quotesBySize, sq)

		buy, sell, ok := sq.BestPair()
		if !ok {
			depth.Points[size] = domain.DepthPoint{Available: false}
			continue
		}
		spread := SpreadBps(buy.Price, sell.Price)
		depth.Points[size] = domain.DepthPoint{SpreadBps: spread, Available: true}

		if spread > depth.BestSpreadBps {
			depth.BestSpreadBps = spread
		}
		// Ascending sweep, so the last positive rung wins.
		if spread > 0 {
			depth.MaxProfitableSize = size
		}
	}

	m.logger.DebugContext(ctx, "depth mapped",
		slog.String("token", token.Symbol),
		slog.Int("sizes", len(sizes)),
		slog.Float64("best_spread_bps", depth.BestSpreadBps),
		slog.Float64("max_profitable_size", depth.MaxProfitableSize),
	)
	return depth, quotesBySize, nil
}

// foldSizes merges the probe size into the ladder, deduplicates, and sorts
// ascending so the profitable-size sweep is well defined.
func foldSizes(ladder []float64, probeSize float64) []float64 {
	seen := make(map[float64]bool, len(ladder)+1)
	out := make([]float64, 0, len(ladder)+1)
	for _, s := range ladder {
		if s > 0 && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	if probeSize > 0 && !seen[probeSize] {
		out = append(out, probeSize)
	}
	sort.Float64s(out)
	return out
}
