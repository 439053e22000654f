package scanner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/JWBcode/lst-arb/internal/domain"
)

// Config holds the scan economics and cadence.
type Config struct {
	MinSpreadBps     float64
	SkipThresholdBps float64
	ProbeSize        float64
	SizeLadder       []float64
	FlatCost         float64
	FlashLoanFeeRate float64
	InterCallDelay   time.Duration
	InterScanDelay   time.Duration
	TopK             int
}

// Sink receives scan lifecycle events. Implementations must not block the
// scan loop for long; slow deliveries belong behind their own goroutines.
type Sink interface {
	ScanCompleted(ctx context.Context, result domain.ScanResult)
	ScanFailed(ctx context.Context, err error)
}

// Scanner runs the full waterfall for the configured token list: viability
// probe, depth mapping for survivors, opportunity enumeration, and ranking.
// Tokens are scanned one at a time so venue pacing stays meaningful.
type Scanner struct {
	cfg    Config
	tokens []domain.Token
	gate   *Gate
	mapper *Mapper
	finder *Finder
	stats  *domain.SessionStats
	sinks  []Sink
	logger *slog.Logger

	triggerCh chan struct{}

	mu     sync.RWMutex
	latest *domain.ScanResult
	seq    int64
}

// New builds a Scanner over the given venues. Every venue is wrapped in a
// pacing layer enforcing InterCallDelay between calls, with a single retry on
// throttling.
func New(cfg Config, tokens []domain.Token, sources []domain.PriceSource, stats *domain.SessionStats, logger *slog.Logger, sinks ...Sink) *Scanner {
	paced := make([]domain.PriceSource, 0, len(sources))
	for _, src := range sources {
		paced = append(paced, newPacedSource(src, cfg.InterCallDelay, logger))
	}
	return &Scanner{
		cfg:    cfg,
		tokens: tokens,
		gate:   NewGate(paced, cfg.ProbeSize, cfg.SkipThresholdBps, logger),
		mapper: NewMapper(paced, cfg.SizeLadder, logger),
		finder: NewFinder(FinderConfig{
			MinSpreadBps:     cfg.MinSpreadBps,
			FlatCost:         cfg.FlatCost,
			FlashLoanFeeRate: cfg.FlashLoanFeeRate,
		}, logger),
		stats:     stats,
		sinks:     sinks,
		logger:    logger.With(slog.String("component", "scanner")),
		triggerCh: make(chan struct{}, 1),
	}
}

// ScanOnce runs a single full pass over the token list. Venue outages degrade
// to absent depth points or skipped tokens; only context cancellation or a
// caller bug aborts the pass. A pass where every venue is down still returns
// an empty, well formed result.
func (s *Scanner) ScanOnce(ctx context.Context) (domain.ScanResult, error) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	result := domain.ScanResult{
		Sequence:  seq,
		StartedAt: time.Now().UTC(),
		Depths:    make(map[string]domain.LiquidityDepth, len(s.tokens)),
	}

	s.logger.InfoContext(ctx, "scan started",
		slog.Int64("sequence", seq),
		slog.Int("tokens", len(s.tokens)),
	)

	var allOpps []domain.Opportunity
	for _, token := range s.tokens {
		if err := ctx.Err(); err != nil {
			return domain.ScanResult{}, err
		}

		probe, err := s.gate.Probe(ctx, token)
		if err != nil {
			return domain.ScanResult{}, err
		}
		result.TokensScanned++

		if !probe.Viable {
			result.Depths[token.Symbol] = domain.LiquidityDepth{
				Token:            token.Symbol,
				Viable:           false,
				InitialSpreadBps: probe.SpreadBps,
				BestSpreadBps:    InvalidSpreadBps,
			}
			s.logger.InfoContext(ctx, "token skipped at gate",
				slog.String("token", token.Symbol),
				slog.Float64("probe_spread_bps", probe.SpreadBps),
			)
			continue
		}
		result.ViableTokens++

		depth, quotes, err := s.mapper.Map(ctx, token, probe)
		if err != nil {
			return domain.ScanResult{}, err
		}
		result.Depths[token.Symbol] = depth

		allOpps = append(allOpps, s.finder.Find(token.Symbol, quotes)...)
	}

	Rank(allOpps)
	if s.cfg.TopK > 0 && len(allOpps) > s.cfg.TopK {
		allOpps = allOpps[:s.cfg.TopK]
	}
	// Session counters track only what is surfaced: the top-K list.
	for _, o := range allOpps {
		s.stats.RecordOpportunity(o.NetProfit)
	}
	result.Opportunities = allOpps
	result.CompletedAt = time.Now().UTC()

	s.stats.RecordScan()
	s.mu.Lock()
	s.latest = &result
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "scan completed",
		slog.Int64("sequence", seq),
		slog.Int("viable_tokens", result.ViableTokens),
		slog.Int("opportunities", len(result.Opportunities)),
		slog.Duration("elapsed", result.CompletedAt.Sub(result.StartedAt)),
	)

	for _, sink := range s.sinks {
		sink.ScanCompleted(ctx, result)
	}
	return result, nil
}

// Run scans immediately, then repeats on the configured interval until ctx is
// cancelled. Trigger requests jump the queue without resetting the interval.
func (s *Scanner) Run(ctx context.Context) error {
	if _, err := s.ScanOnce(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.reportFailure(ctx, err)
	}

	ticker := time.NewTicker(s.cfg.InterScanDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scan loop stopped")
			return ctx.Err()
		case <-ticker.C:
		case <-s.triggerCh:
			s.logger.InfoContext(ctx, "scan triggered on demand")
		}

		if _, err := s.ScanOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.reportFailure(ctx, err)
		}
	}
}

// Trigger requests an immediate scan. It never blocks; a trigger while one is
// already pending is a no-op.
func (s *Scanner) Trigger() {
	select {
	case s.triggerCh <- struct{}{}:
	default:
	}
}

// Latest returns the most recent completed scan, if any.
func (s *Scanner) Latest() (domain.ScanResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return domain.ScanResult{}, false
	}
	return *s.latest, true
}

// Stats returns a snapshot of the session counters.
func (s *Scanner) Stats() domain.SessionSnapshot {
	return s.stats.Snapshot()
}

func (s *Scanner) reportFailure(ctx context.Context, err error) {
	s.logger.ErrorContext(ctx, "scan failed", slog.String("error", err.Error()))
	for _, sink := range s.sinks {
		sink.ScanFailed(ctx, err)
	}
}
