package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Scanner.MinSpreadBps != 10 {
		t.Errorf("MinSpreadBps = %v, want 10", cfg.Scanner.MinSpreadBps)
	}
	if cfg.Scanner.SkipThresholdBps != -50 {
		t.Errorf("SkipThresholdBps = %v, want -50", cfg.Scanner.SkipThresholdBps)
	}
	if len(cfg.Tokens) != 6 {
		t.Errorf("got %d default tokens, want 6", len(cfg.Tokens))
	}
	if cfg.Tokens[0].Symbol != "stETH" || cfg.Tokens[0].CurvePool == "" {
		t.Errorf("stETH default misconfigured: %+v", cfg.Tokens[0])
	}
}

func TestLoadFromFile(t *testing.T) {
	content := `
mode = "full"
price_source = "live"

[scanner]
min_spread_bps = 25.0
size_ladder = [2.0, 4.0]
inter_scan_delay = "30s"

[rpc]
url = "https://example.com/rpc"

[[tokens]]
symbol = "stETH"
address = "0xae7ab96520DE3A18E5e111B5EaAb095312D7fE84"
curve_pool = "0xDC24316b9AE028F1497c275EB9192a3Ea0f67022"
`
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Mode != "full" {
		t.Errorf("Mode = %q", cfg.Mode)
	}
	if cfg.Scanner.MinSpreadBps != 25 {
		t.Errorf("MinSpreadBps = %v", cfg.Scanner.MinSpreadBps)
	}
	if len(cfg.Scanner.SizeLadder) != 2 || cfg.Scanner.SizeLadder[0] != 2 {
		t.Errorf("SizeLadder = %v", cfg.Scanner.SizeLadder)
	}
	if cfg.Scanner.InterScanDelay.Duration != 30*time.Second {
		t.Errorf("InterScanDelay = %v", cfg.Scanner.InterScanDelay.Duration)
	}
	// Values not in the file keep their defaults.
	if cfg.Scanner.FlatCost != 0.003 {
		t.Errorf("FlatCost = %v, want default 0.003", cfg.Scanner.FlatCost)
	}
	// A [[tokens]] block replaces the default list entirely.
	if len(cfg.Tokens) != 1 || cfg.Tokens[0].Symbol != "stETH" {
		t.Errorf("Tokens = %+v", cfg.Tokens)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config should validate: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LSTARB_MODE", "server")
	t.Setenv("LSTARB_MIN_SPREAD_BPS", "42.5")
	t.Setenv("LSTARB_REDIS_ENABLED", "true")
	t.Setenv("LSTARB_INTER_SCAN_DELAY", "1m")
	t.Setenv("LSTARB_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Mode != "server" {
		t.Errorf("Mode = %q", cfg.Mode)
	}
	if cfg.Scanner.MinSpreadBps != 42.5 {
		t.Errorf("MinSpreadBps = %v", cfg.Scanner.MinSpreadBps)
	}
	if !cfg.Redis.Enabled {
		t.Error("Redis.Enabled should be true")
	}
	if cfg.Scanner.InterScanDelay.Duration != time.Minute {
		t.Errorf("InterScanDelay = %v", cfg.Scanner.InterScanDelay.Duration)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
}

func TestEnvOverrideIgnoresMalformedValues(t *testing.T) {
	t.Setenv("LSTARB_TOP_K", "not-a-number")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scanner.TopK != Defaults().Scanner.TopK {
		t.Errorf("TopK = %d, want default", cfg.Scanner.TopK)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad mode", func(c *Config) { c.Mode = "turbo" }, "unknown mode"},
		{"bad price source", func(c *Config) { c.PriceSource = "oracle" }, "unknown price_source"},
		{"zero probe", func(c *Config) { c.Scanner.ProbeSize = 0 }, "probe_size"},
		{"empty ladder", func(c *Config) { c.Scanner.SizeLadder = nil }, "size_ladder"},
		{"negative ladder rung", func(c *Config) { c.Scanner.SizeLadder = []float64{1, -5} }, "size_ladder"},
		{"unsorted ladder", func(c *Config) { c.Scanner.SizeLadder = []float64{10, 5} }, "ascending"},
		{"positive skip threshold", func(c *Config) { c.Scanner.SkipThresholdBps = 20 }, "skip_threshold_bps"},
		{"flash fee at 1", func(c *Config) { c.Scanner.FlashLoanFeeRate = 1 }, "flash_loan_fee_rate"},
		{"no tokens", func(c *Config) { c.Tokens = nil }, "at least one token"},
		{"duplicate token", func(c *Config) {
			c.Tokens = append(c.Tokens, c.Tokens[0])
		}, "duplicate symbol"},
		{"token missing address", func(c *Config) { c.Tokens[0].Address = "" }, "address"},
		{"live without rpc", func(c *Config) {
			c.PriceSource = "live"
			c.RPC.URL = ""
		}, "rpc: url is required"},
		{"bad port", func(c *Config) { c.Server.Port = 99999 }, "port"},
		{"server mode without redis", func(c *Config) {
			c.Mode = "server"
			c.Redis.Enabled = false
		}, "requires redis"},
		{"negative top_k", func(c *Config) { c.Scanner.TopK = 0 }, "top_k"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestValidateCollectsMultipleErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "bogus"
	cfg.Scanner.ProbeSize = -1
	cfg.Tokens = nil

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"unknown mode", "probe_size", "at least one token"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q: %v", want, err)
		}
	}
}

func TestDomainTokens(t *testing.T) {
	cfg := Defaults()
	toks := cfg.DomainTokens()
	if len(toks) != len(cfg.Tokens) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(cfg.Tokens))
	}
	if toks[0].Symbol != "stETH" || toks[0].CurvePool == "" {
		t.Errorf("token[0] = %+v", toks[0])
	}
	if toks[1].CurvePool != "" {
		t.Errorf("rETH should have no curve pool: %+v", toks[1])
	}
}

func TestDurationRoundTrip(t *testing.T) {
	var d duration
	if err := d.UnmarshalText([]byte("150ms")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if d.Duration != 150*time.Millisecond {
		t.Errorf("Duration = %v", d.Duration)
	}
	out, err := d.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	if string(out) != "150ms" {
		t.Errorf("MarshalText = %q", out)
	}
}

func TestDurationRejectsGarbage(t *testing.T) {
	var d duration
	if err := d.UnmarshalText([]byte("soon")); err == nil {
		t.Error("expected parse error")
	}
}
