package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration loaded from an optional YAML
// file and environment variables. Environment variables win.
type Config struct {
	WealthfolioURL     string        `yaml:"wealthfolio_url"`
	WealthfolioAPIKey  string        `yaml:"wealthfolio_api_key"`
	WealthfolioTimeout time.Duration `yaml:"wealthfolio_timeout"`
	AssetFilters       []string      `yaml:"asset_filters"`
	HoldingsFallback   string        `yaml:"holdings_fallback"`
	DegradeOnError     bool          `yaml:"degrade_on_error"`
	HistoryDays        int           `yaml:"history_days"`
	ProbeInterval      time.Duration `yaml:"probe_interval"`
	HTTPPort           string        `yaml:"http_port"`
	LogLevel           string        `yaml:"log_level"`
	LogFormat          string        `yaml:"log_format"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		WealthfolioURL:     "https://wealthfolio.labruntipi.io/api/v1",
		WealthfolioTimeout: 30 * time.Second,
		AssetFilters:       []string{"stocks", "crypto"},
		HoldingsFallback:   "disabled",
		DegradeOnError:     true,
		HistoryDays:        30,
		ProbeInterval:      5 * time.Minute,
		HTTPPort:           "8080",
		LogLevel:           "info",
		LogFormat:          "text",
	}
}

// Load reads configuration with sensible defaults. When FOLIO_CONFIG names a
// YAML file its values replace the defaults before environment variables
// are applied.
func Load() Config {
	cfg := Defaults()
	if path := os.Getenv("FOLIO_CONFIG"); path != "" {
		cfg = loadFile(path, cfg)
	}

	return Config{
		WealthfolioURL:     envOrDefault("WEALTHFOLIO_URL", cfg.WealthfolioURL),
		WealthfolioAPIKey:  envOrDefaultWarn("WEALTHFOLIO_API_KEY", cfg.WealthfolioAPIKey),
		WealthfolioTimeout: envOrDefaultDuration("WEALTHFOLIO_TIMEOUT", cfg.WealthfolioTimeout),
		AssetFilters:       envOrDefaultList("ASSET_FILTERS", cfg.AssetFilters),
		HoldingsFallback:   envOrDefault("HOLDINGS_FALLBACK", cfg.HoldingsFallback),
		DegradeOnError:     envOrDefaultBool("DEGRADE_ON_ERROR", cfg.DegradeOnError),
		HistoryDays:        envOrDefaultInt("HISTORY_DAYS", cfg.HistoryDays),
		ProbeInterval:      envOrDefaultDuration("PROBE_INTERVAL", cfg.ProbeInterval),
		HTTPPort:           envOrDefault("HTTP_PORT", cfg.HTTPPort),
		LogLevel:           envOrDefault("LOG_LEVEL", cfg.LogLevel),
		LogFormat:          envOrDefault("LOG_FORMAT", cfg.LogFormat),
	}
}

func loadFile(path string, base Config) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("cannot read config file, ignoring it", "path", path, "error", err)
		return base
	}
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		slog.Warn("invalid config file, ignoring it", "path", path, "error", err)
		return base
	}
	return cfg
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultWarn(key, defaultVal string) string {
	v := envOrDefault(key, defaultVal)
	if v == "" {
		slog.Warn("env var not set", "key", key)
	}
	return v
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			slog.Warn("invalid boolean env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return b
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}

func envOrDefaultList(key string, defaultVal []string) []string {
	if v := os.Getenv(key); v != "" {
		items := lo.Map(strings.Split(v, ","), func(s string, _ int) string { return strings.TrimSpace(s) })
		return lo.Compact(items)
	}
	return defaultVal
}
