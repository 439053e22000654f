package scanner

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/JWBcode/lst-arb/internal/domain"
)

// pacedSource enforces a minimum gap between calls to one venue and retries a
// throttled call exactly once after waiting out the gap. A second throttle in
// a row is passed through, which the collectors upstream treat as the venue
// being absent for that size.
type pacedSource struct {
	inner  domain.PriceSource
	minGap time.Duration
	logger *slog.Logger

	mu       sync.Mutex
	lastCall time.Time
}

var _ domain.PriceSource = (*pacedSource)(nil)

func newPacedSource(inner domain.PriceSource, minGap time.Duration, logger *slog.Logger) *pacedSource {
	return &pacedSource{
		inner:  inner,
		minGap: minGap,
		logger: logger.With(slog.String("component", "pacer"), slog.String("venue", inner.Name())),
	}
}

func (p *pacedSource) Name() string { return p.inner.Name() }

func (p *pacedSource) Quote(ctx context.Context, token domain.Token, size float64, direction domain.Direction) (domain.Quote, error) {
	if err := p.wait(ctx); err != nil {
		return domain.Quote{}, err
	}
	q, err := p.inner.Quote(ctx, token, size, direction)
	if !errors.Is(err, domain.ErrRateLimited) {
		return q, err
	}

	p.logger.WarnContext(ctx, "venue throttled, retrying once",
		slog.String("token", token.Symbol),
		slog.Float64("size", size),
	)
	if err := p.wait(ctx); err != nil {
		return domain.Quote{}, err
	}
	return p.inner.Quote(ctx, token, size, direction)
}

// wait blocks until minGap has elapsed since the previous call to this venue,
// honouring ctx cancellation. It claims the next slot before sleeping so
// concurrent callers queue up rather than stampede.
func (p *pacedSource) wait(ctx context.Context) error {
	p.mu.Lock()
	now := time.Now()
	next := p.lastCall.Add(p.minGap)
	if next.Before(now) {
		next = now
	}
	p.lastCall = next
	p.mu.Unlock()

	delay := time.Until(next)
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
