// Package config defines the top-level configuration for the arbitrage
// scanner and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/JWBcode/lst-arb/internal/domain"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by LSTARB_* environment variables.
type Config struct {
	Scanner    ScannerConfig    `toml:"scanner"`
	Tokens     []TokenConfig    `toml:"tokens"`
	RPC        RPCConfig        `toml:"rpc"`
	ZeroEx     ZeroExConfig     `toml:"zeroex"`
	Simulation SimulationConfig `toml:"simulation"`
	Redis      RedisConfig      `toml:"redis"`
	Server     ServerConfig     `toml:"server"`
	Notify     NotifyConfig     `toml:"notify"`

	// Mode selects which subsystems run: "monitor" (scanner + console),
	// "server" (dashboard API over cached scans), or "full" (both).
	Mode string `toml:"mode"`
	// PriceSource selects the venue set: "live" (Curve + 0x) or "simulated".
	PriceSource string `toml:"price_source"`
	LogLevel    string `toml:"log_level"`
	LogFile     string `toml:"log_file"` // empty means stderr only
}

// ScannerConfig holds the scan economics and cadence.
type ScannerConfig struct {
	MinSpreadBps     float64   `toml:"min_spread_bps"`
	SkipThresholdBps float64   `toml:"skip_threshold_bps"`
	ProbeSize        float64   `toml:"probe_size"`
	SizeLadder       []float64 `toml:"size_ladder"`
	FlatCost         float64   `toml:"flat_cost"`
	FlashLoanFeeRate float64   `toml:"flash_loan_fee_rate"`
	InterCallDelay   duration  `toml:"inter_call_delay"`
	InterScanDelay   duration  `toml:"inter_scan_delay"`
	TopK             int       `toml:"top_k"`
}

// TokenConfig describes one scanned token.
type TokenConfig struct {
	Symbol    string `toml:"symbol"`
	Address   string `toml:"address"`
	CurvePool string `toml:"curve_pool"` // empty when the token has no ETH StableSwap pool
}

// RPCConfig holds Ethereum node parameters.
type RPCConfig struct {
	URL string `toml:"url"`
}

// ZeroExConfig holds 0x aggregator API parameters.
type ZeroExConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

// SimulationConfig parameterises the synthetic venues used when
// price_source = "simulated". Biases are in bps relative to the reference
// mid; slippage is extra bps per ETH of trade size.
type SimulationConfig struct {
	Seed              int64   `toml:"seed"`
	UniswapBiasBps    float64 `toml:"uniswap_bias_bps"`
	UniswapJitterBps  float64 `toml:"uniswap_jitter_bps"`
	BalancerBiasBps   float64 `toml:"balancer_bias_bps"`
	BalancerJitterBps float64 `toml:"balancer_jitter_bps"`
	SlippageBpsPerEth float64 `toml:"slippage_bps_per_eth"`
	ReferenceMid      float64 `toml:"reference_mid"`
}

// RedisConfig holds Redis connection parameters. Redis is optional: without
// it the process runs standalone (no shared snapshot, no WebSocket feed).
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled         bool     `toml:"enabled"`
	Port            int      `toml:"port"`
	CORSOrigins     []string `toml:"cors_origins"`
	APIKey          string   `toml:"api_key"`
	RateLimit       int      `toml:"rate_limit"`
	RateLimitWindow duration `toml:"rate_limit_window"`
}

// NotifyConfig holds notification channel credentials and filters.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
	MinNetProfit      float64  `toml:"min_net_profit"` // ETH; routes below this are not alerted
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5s", "200ms").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5s" or "200ms".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// DomainTokens converts the configured token list into domain values.
func (c *Config) DomainTokens() []domain.Token {
	out := make([]domain.Token, 0, len(c.Tokens))
	for _, t := range c.Tokens {
		out = append(out, domain.Token{
			Symbol:    t.Symbol,
			Address:   t.Address,
			CurvePool: t.CurvePool,
		})
	}
	return out
}

// Defaults returns a Config populated with reasonable default values. These
// match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Scanner: ScannerConfig{
			MinSpreadBps:     10,
			SkipThresholdBps: -50,
			ProbeSize:        5,
			SizeLadder:       []float64{1, 5, 10, 25},
			FlatCost:         0.003,
			FlashLoanFeeRate: 0, // Balancer flash loans are free
			InterCallDelay:   duration{200 * time.Millisecond},
			InterScanDelay:   duration{5 * time.Second},
			TopK:             5,
		},
		Tokens: []TokenConfig{
			{
				Symbol:    "stETH",
				Address:   "0xae7ab96520DE3A18E5e111B5EaAb095312D7fE84",
				CurvePool: "0xDC24316b9AE028F1497c275EB9192a3Ea0f67022",
			},
			{Symbol: "rETH", Address: "0xae78736Cd615f374D3085123A210448E74Fc6393"},
			{Symbol: "cbETH", Address: "0xBe9895146f7AF43049ca1c1AE358B0541Ea49704"},
			{Symbol: "wstETH", Address: "0x7f39C581F595B53c5cb19bD0b3f8dA6c935E2Ca0"},
			{Symbol: "weETH", Address: "0xCd5fE23C85820F7B72D0926FC9b05b43E359b7ee"},
			{Symbol: "ezETH", Address: "0xbf5495Efe5DB9ce00f80364C8B423567e58d2110"},
		},
		RPC: RPCConfig{
			URL: "https://eth-mainnet.g.alchemy.com/v2/demo",
		},
		ZeroEx: ZeroExConfig{
			BaseURL: "https://api.0x.org",
		},
		Simulation: SimulationConfig{
			Seed:              1,
			UniswapBiasBps:    0,
			UniswapJitterBps:  30,
			BalancerBiasBps:   0,
			BalancerJitterBps: 20,
			SlippageBpsPerEth: 0.2,
			ReferenceMid:      0.998,
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		Server: ServerConfig{
			Enabled:         true,
			Port:            8000,
			CORSOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimit:       0, // disabled
			RateLimitWindow: duration{time.Second},
		},
		Notify: NotifyConfig{
			Events:       []string{"opportunity_found", "scan_error"},
			MinNetProfit: 0,
		},
		Mode:        "monitor",
		PriceSource: "simulated",
		LogLevel:    "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"monitor": true,
	"server":  true,
	"full":    true,
}

// validPriceSources enumerates the accepted values for Config.PriceSource.
var validPriceSources = map[string]bool{
	"live":      true,
	"simulated": true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: monitor, server, full)", c.Mode))
	}
	if !validPriceSources[strings.ToLower(c.PriceSource)] {
		errs = append(errs, fmt.Sprintf("unknown price_source %q (valid: live, simulated)", c.PriceSource))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Scanner
	if c.Scanner.ProbeSize <= 0 {
		errs = append(errs, "scanner: probe_size must be > 0")
	}
	if c.Scanner.SkipThresholdBps > 0 {
		errs = append(errs, "scanner: skip_threshold_bps must be <= 0")
	}
	if len(c.Scanner.SizeLadder) == 0 {
		errs = append(errs, "scanner: size_ladder must not be empty")
	}
	for i, s := range c.Scanner.SizeLadder {
		if s <= 0 {
			errs = append(errs, fmt.Sprintf("scanner: size_ladder entries must be > 0, got %v", s))
			break
		}
		if i > 0 && s <= c.Scanner.SizeLadder[i-1] {
			errs = append(errs, "scanner: size_ladder must be strictly ascending")
			break
		}
	}
	if c.Scanner.FlatCost < 0 {
		errs = append(errs, "scanner: flat_cost must be >= 0")
	}
	if c.Scanner.FlashLoanFeeRate < 0 || c.Scanner.FlashLoanFeeRate >= 1 {
		errs = append(errs, "scanner: flash_loan_fee_rate must be in [0, 1)")
	}
	if c.Scanner.InterCallDelay.Duration < 0 {
		errs = append(errs, "scanner: inter_call_delay must be >= 0")
	}
	if c.Scanner.InterScanDelay.Duration <= 0 {
		errs = append(errs, "scanner: inter_scan_delay must be > 0")
	}
	if c.Scanner.TopK < 1 {
		errs = append(errs, "scanner: top_k must be >= 1")
	}

	// Tokens
	if len(c.Tokens) == 0 {
		errs = append(errs, "tokens: at least one token must be configured")
	}
	seen := make(map[string]bool, len(c.Tokens))
	for i, t := range c.Tokens {
		if t.Symbol == "" {
			errs = append(errs, fmt.Sprintf("tokens[%d]: symbol must not be empty", i))
			continue
		}
		if seen[t.Symbol] {
			errs = append(errs, fmt.Sprintf("tokens: duplicate symbol %q", t.Symbol))
		}
		seen[t.Symbol] = true
		if t.Address == "" {
			errs = append(errs, fmt.Sprintf("tokens[%d] (%s): address must not be empty", i, t.Symbol))
		}
	}

	// Live venues need their endpoints.
	if strings.ToLower(c.PriceSource) == "live" {
		if c.RPC.URL == "" {
			errs = append(errs, "rpc: url is required when price_source is live")
		}
		if c.ZeroEx.BaseURL == "" {
			errs = append(errs, "zeroex: base_url is required when price_source is live")
		}
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when enabled")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if c.Server.RateLimit > 0 && c.Server.RateLimitWindow.Duration <= 0 {
			errs = append(errs, "server: rate_limit_window must be > 0 when rate_limit is set")
		}
	}

	// Server mode reads scans from the Redis snapshot; without Redis there is
	// nothing to serve.
	if strings.ToLower(c.Mode) == "server" && !c.Redis.Enabled {
		errs = append(errs, "mode server requires redis to be enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
