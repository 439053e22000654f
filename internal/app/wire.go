package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/JWBcode/lst-arb/internal/cache/redis"
	"github.com/JWBcode/lst-arb/internal/config"
	"github.com/JWBcode/lst-arb/internal/domain"
	"github.com/JWBcode/lst-arb/internal/notify"
	"github.com/JWBcode/lst-arb/internal/venue/curve"
	"github.com/JWBcode/lst-arb/internal/venue/simulated"
	"github.com/JWBcode/lst-arb/internal/venue/zeroex"
)

// Dependencies bundles everything the application modes need to operate. It
// is constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	// Venues, in scan order.
	Sources []domain.PriceSource

	// Chain is the shared Ethereum client in live mode; nil otherwise.
	Chain *ethclient.Client

	// Redis-backed infrastructure; all nil when Redis is disabled.
	Snapshots   domain.SnapshotCache
	RateLimiter domain.RateLimiter
	Bus         domain.SignalBus

	// Session counters shared between the scanner and the API.
	Stats *domain.SessionStats

	Notifier *notify.Notifier
}

// needsVenues returns true for modes that run a scanner and therefore need
// price sources. Server mode only reads cached snapshots.
func needsVenues(mode string) bool {
	switch mode {
	case "monitor", "full":
		return true
	default:
		return false
	}
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		Stats: domain.NewSessionStats(),
	}

	// --- Redis ---
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.Snapshots = redis.NewSnapshotCache(redisClient)
		deps.RateLimiter = redis.NewRateLimiter(redisClient)
		deps.Bus = redis.NewSignalBus(redisClient)
	}

	// --- Venues ---
	if needsVenues(strings.ToLower(cfg.Mode)) {
		sources, chain, venueClosers, err := buildSources(cfg)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: venues: %w", err)
		}
		closers = append(closers, venueClosers...)
		deps.Sources = sources
		deps.Chain = chain
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}

// buildSources constructs the venue set for the configured price source. In
// live mode it also returns the shared Ethereum client for the health probe.
func buildSources(cfg *config.Config) ([]domain.PriceSource, *ethclient.Client, []func(), error) {
	switch strings.ToLower(cfg.PriceSource) {
	case "live":
		ec, err := ethclient.Dial(cfg.RPC.URL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("dial rpc: %w", err)
		}
		sources := []domain.PriceSource{
			curve.NewClient(ec),
			zeroex.NewClient(cfg.ZeroEx.BaseURL, cfg.ZeroEx.APIKey),
		}
		return sources, ec, []func(){ec.Close}, nil

	case "simulated":
		mids := make(map[string]float64, len(cfg.Tokens))
		for _, t := range cfg.Tokens {
			mids[t.Symbol] = cfg.Simulation.ReferenceMid
		}
		sim := cfg.Simulation
		// Independent generators per venue so one venue's draw count does not
		// shift another's sequence.
		sources := []domain.PriceSource{
			simulated.NewMarket("Curve", mids, 0, 0, sim.SlippageBpsPerEth,
				rand.New(rand.NewSource(sim.Seed))),
			simulated.NewMarket("Uniswap", mids, sim.UniswapBiasBps, sim.UniswapJitterBps, sim.SlippageBpsPerEth,
				rand.New(rand.NewSource(sim.Seed+1))),
			simulated.NewMarket("Balancer", mids, sim.BalancerBiasBps, sim.BalancerJitterBps, sim.SlippageBpsPerEth,
				rand.New(rand.NewSource(sim.Seed+2))),
		}
		return sources, nil, nil, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown price source %q", cfg.PriceSource)
	}
}

// venueNames returns the display names of the wired venues for the API.
func venueNames(sources []domain.PriceSource) []string {
	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, s.Name())
	}
	return names
}
