package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JWBcode/lst-arb/internal/console"
	"github.com/JWBcode/lst-arb/internal/notify"
	"github.com/JWBcode/lst-arb/internal/scanner"
	"github.com/JWBcode/lst-arb/internal/server"
	"github.com/JWBcode/lst-arb/internal/server/handler"
	"github.com/JWBcode/lst-arb/internal/server/ws"
)

// MonitorMode runs the scanner with console output and notifications. No
// HTTP server is started; results are still written to Redis when enabled so
// a separate server-mode process can pick them up.
func (a *App) MonitorMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting monitor mode")

	printer := console.NewPrinter(os.Stdout, deps.Stats, true)
	printer.Banner(a.cfg.Mode,
		a.cfg.Scanner.MinSpreadBps,
		a.cfg.Scanner.FlatCost,
		a.cfg.Scanner.FlashLoanFeeRate,
		a.cfg.Scanner.SizeLadder,
	)

	sc := a.buildScanner(deps, printer)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sc.Run(ctx)
	})

	err := g.Wait()
	printer.Summary()
	if err != nil && err != context.Canceled {
		return fmt.Errorf("monitor mode: %w", err)
	}
	return nil
}

// ServerMode runs the dashboard API without a scanner, serving the latest
// scan written to the shared snapshot cache by a monitor or full process.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	if deps.Snapshots == nil {
		return fmt.Errorf("server mode: redis snapshot cache required")
	}

	g, ctx := errgroup.WithContext(ctx)
	a.startHTTPServer(ctx, g, deps, &cacheSource{cache: deps.Snapshots}, nil)

	if err := g.Wait(); err != nil && err != context.Canceled {
		return fmt.Errorf("server mode: %w", err)
	}
	return nil
}

// FullMode runs everything: the scanner with console output, notifications,
// Redis publishing, and the dashboard API served from the live scanner.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	printer := console.NewPrinter(os.Stdout, deps.Stats, true)
	printer.Banner(a.cfg.Mode,
		a.cfg.Scanner.MinSpreadBps,
		a.cfg.Scanner.FlatCost,
		a.cfg.Scanner.FlashLoanFeeRate,
		a.cfg.Scanner.SizeLadder,
	)

	sc := a.buildScanner(deps, printer)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sc.Run(ctx)
	})

	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps, &scannerSource{sc: sc}, &scanTrigger{sc: sc})
	}

	err := g.Wait()
	printer.Summary()
	if err != nil && err != context.Canceled {
		return fmt.Errorf("full mode: %w", err)
	}
	return nil
}

// buildScanner assembles the scanner with every sink the configuration calls
// for: console output, alerting, and Redis publishing when available.
func (a *App) buildScanner(deps *Dependencies, printer *console.Printer) *scanner.Scanner {
	sinks := []scanner.Sink{printer}

	if deps.Notifier != nil {
		sinks = append(sinks, notify.NewScanAlerter(deps.Notifier, a.cfg.Notify.MinNetProfit, a.logger))
	}
	if deps.Bus != nil {
		sinks = append(sinks, newPublishSink(deps.Bus, a.logger))
	}
	if deps.Snapshots != nil {
		sinks = append(sinks, newSnapshotSink(deps.Snapshots, deps.Stats, a.logger))
	}

	return scanner.New(scanner.Config{
		MinSpreadBps:     a.cfg.Scanner.MinSpreadBps,
		SkipThresholdBps: a.cfg.Scanner.SkipThresholdBps,
		ProbeSize:        a.cfg.Scanner.ProbeSize,
		SizeLadder:       a.cfg.Scanner.SizeLadder,
		FlatCost:         a.cfg.Scanner.FlatCost,
		FlashLoanFeeRate: a.cfg.Scanner.FlashLoanFeeRate,
		InterCallDelay:   a.cfg.Scanner.InterCallDelay.Duration,
		InterScanDelay:   a.cfg.Scanner.InterScanDelay.Duration,
		TopK:             a.cfg.Scanner.TopK,
	}, a.cfg.DomainTokens(), deps.Sources, deps.Stats, a.logger, sinks...)
}

// startHTTPServer adds the HTTP server and, when Redis is wired, the
// WebSocket hub to the given errgroup. trigger may be nil, in which case
// POST /api/scan/trigger reports that no scanner is running.
func (a *App) startHTTPServer(
	ctx context.Context,
	g *errgroup.Group,
	deps *Dependencies,
	source handler.ScanSource,
	trigger handler.Triggerer,
) {
	var hub *ws.Hub
	if deps.Bus != nil {
		hub = ws.NewHub(deps.Bus, a.logger, ws.Config{
			Mode:      a.cfg.Mode,
			StartedAt: time.Now().UTC(),
		})
		g.Go(func() error {
			return hub.Run(ctx)
		})
	}

	network := handler.NewNetworkHandler(a.cfg.PriceSource, venueNames(deps.Sources), a.cfg.DomainTokens())
	if deps.Chain != nil {
		network = network.WithChainProber(deps.Chain)
	}

	handlers := server.Handlers{
		Health:        handler.NewHealthHandler(a.logger),
		Status:        handler.NewStatusHandler(a.cfg.Mode, source, a.logger),
		Opportunities: handler.NewOpportunitiesHandler(source),
		Depth:         handler.NewDepthHandler(source),
		Network:       network,
		Scan:          handler.NewScanHandler(trigger, a.logger),
	}

	srv := server.NewServer(server.Config{
		Port:            a.cfg.Server.Port,
		CORSOrigins:     a.cfg.Server.CORSOrigins,
		APIKey:          a.cfg.Server.APIKey,
		RateLimit:       a.cfg.Server.RateLimit,
		RateLimitWindow: a.cfg.Server.RateLimitWindow.Duration,
	}, handlers, hub, deps.RateLimiter, a.logger)

	g.Go(func() error {
		return srv.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}
