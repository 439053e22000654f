package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads configuration from a TOML file and applies environment variable
// overrides. The file path may be empty, in which case only defaults and
// environment variables are used. Validation is left to the caller.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	// Load .env if present; ignore the error since the file is optional.
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return cfg, nil
}

// applyEnvOverrides overrides config fields from LSTARB_* environment
// variables. Only scalar fields are overridable; tokens come from the file.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Mode, "LSTARB_MODE")
	setStr(&cfg.PriceSource, "LSTARB_PRICE_SOURCE")
	setStr(&cfg.LogLevel, "LSTARB_LOG_LEVEL")
	setStr(&cfg.LogFile, "LSTARB_LOG_FILE")

	setFloat64(&cfg.Scanner.MinSpreadBps, "LSTARB_MIN_SPREAD_BPS")
	setFloat64(&cfg.Scanner.SkipThresholdBps, "LSTARB_SKIP_THRESHOLD_BPS")
	setFloat64(&cfg.Scanner.ProbeSize, "LSTARB_PROBE_SIZE")
	setFloat64(&cfg.Scanner.FlatCost, "LSTARB_FLAT_COST")
	setFloat64(&cfg.Scanner.FlashLoanFeeRate, "LSTARB_FLASH_LOAN_FEE_RATE")
	setDuration(&cfg.Scanner.InterCallDelay, "LSTARB_INTER_CALL_DELAY")
	setDuration(&cfg.Scanner.InterScanDelay, "LSTARB_INTER_SCAN_DELAY")
	setInt(&cfg.Scanner.TopK, "LSTARB_TOP_K")

	setStr(&cfg.RPC.URL, "LSTARB_RPC_URL")

	setStr(&cfg.ZeroEx.BaseURL, "LSTARB_ZEROEX_BASE_URL")
	setStr(&cfg.ZeroEx.APIKey, "LSTARB_ZEROEX_API_KEY")

	setInt64(&cfg.Simulation.Seed, "LSTARB_SIM_SEED")

	setBool(&cfg.Redis.Enabled, "LSTARB_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "LSTARB_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "LSTARB_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "LSTARB_REDIS_DB")
	setBool(&cfg.Redis.TLSEnabled, "LSTARB_REDIS_TLS")

	setBool(&cfg.Server.Enabled, "LSTARB_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "LSTARB_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "LSTARB_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "LSTARB_API_KEY")
	setInt(&cfg.Server.RateLimit, "LSTARB_RATE_LIMIT")
	setDuration(&cfg.Server.RateLimitWindow, "LSTARB_RATE_LIMIT_WINDOW")

	setStr(&cfg.Notify.TelegramToken, "LSTARB_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "LSTARB_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "LSTARB_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "LSTARB_NOTIFY_EVENTS")
	setFloat64(&cfg.Notify.MinNetProfit, "LSTARB_NOTIFY_MIN_NET_PROFIT")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			*dst = out
		}
	}
}
