package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/JWBcode/lst-arb/internal/domain"
	"github.com/JWBcode/lst-arb/internal/scanner"
	"github.com/JWBcode/lst-arb/internal/server/handler"
	"github.com/JWBcode/lst-arb/internal/server/ws"
)

// publishSink forwards scan results to the signal bus so the WebSocket hub
// can fan them out to dashboard clients. Publish failures are logged and
// dropped; the bus is a best-effort side channel, never part of the scan.
type publishSink struct {
	bus    domain.SignalBus
	logger *slog.Logger
}

func newPublishSink(bus domain.SignalBus, logger *slog.Logger) *publishSink {
	return &publishSink{
		bus:    bus,
		logger: logger.With(slog.String("component", "publish_sink")),
	}
}

func (p *publishSink) ScanCompleted(ctx context.Context, result domain.ScanResult) {
	p.publish(ctx, ws.ChannelScan, "scan", result)
	for _, o := range result.Opportunities {
		if o.Profitable() {
			p.publish(ctx, ws.ChannelOpportunity, "opportunity", o)
		}
	}
}

func (p *publishSink) ScanFailed(context.Context, error) {}

func (p *publishSink) publish(ctx context.Context, channel, kind string, payload any) {
	data, err := json.Marshal(map[string]any{
		"type":    kind,
		"payload": payload,
	})
	if err != nil {
		return
	}
	if err := p.bus.Publish(ctx, channel, data); err != nil {
		p.logger.WarnContext(ctx, "publish failed",
			slog.String("channel", channel),
			slog.String("error", err.Error()),
		)
	}
}

// snapshotSink writes each completed scan and the session counters to the
// shared snapshot cache so a dashboard-only process can serve them.
type snapshotSink struct {
	cache  domain.SnapshotCache
	stats  *domain.SessionStats
	logger *slog.Logger
}

func newSnapshotSink(cache domain.SnapshotCache, stats *domain.SessionStats, logger *slog.Logger) *snapshotSink {
	return &snapshotSink{
		cache:  cache,
		stats:  stats,
		logger: logger.With(slog.String("component", "snapshot_sink")),
	}
}

func (s *snapshotSink) ScanCompleted(ctx context.Context, result domain.ScanResult) {
	if err := s.cache.SetScan(ctx, result); err != nil {
		s.logger.WarnContext(ctx, "store scan failed", slog.String("error", err.Error()))
	}
	if err := s.cache.SetSession(ctx, s.stats.Snapshot()); err != nil {
		s.logger.WarnContext(ctx, "store session failed", slog.String("error", err.Error()))
	}
}

func (s *snapshotSink) ScanFailed(context.Context, error) {}

// scannerSource serves API reads directly from the in-process scanner.
type scannerSource struct {
	sc *scanner.Scanner
}

func (s *scannerSource) LatestScan(context.Context) (domain.ScanResult, error) {
	result, ok := s.sc.Latest()
	if !ok {
		return domain.ScanResult{}, domain.ErrNotFound
	}
	return result, nil
}

func (s *scannerSource) Session(context.Context) (domain.SessionSnapshot, error) {
	return s.sc.Stats(), nil
}

// cacheSource serves API reads from the shared snapshot cache, for processes
// that do not run a scanner of their own.
type cacheSource struct {
	cache domain.SnapshotCache
}

func (c *cacheSource) LatestScan(ctx context.Context) (domain.ScanResult, error) {
	return c.cache.GetScan(ctx)
}

func (c *cacheSource) Session(ctx context.Context) (domain.SessionSnapshot, error) {
	snap, err := c.cache.GetSession(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.SessionSnapshot{}, nil
	}
	return snap, err
}

// scanTrigger adapts the scanner's non-blocking trigger to the API handler.
type scanTrigger struct {
	sc *scanner.Scanner
}

func (t *scanTrigger) TriggerScan() { t.sc.Trigger() }

// Compile-time interface checks.
var (
	_ scanner.Sink       = (*publishSink)(nil)
	_ scanner.Sink       = (*snapshotSink)(nil)
	_ handler.ScanSource = (*scannerSource)(nil)
	_ handler.ScanSource = (*cacheSource)(nil)
	_ handler.Triggerer  = (*scanTrigger)(nil)
)
