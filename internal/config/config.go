package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

const defaultUpstreamURL = "https://api.tickerscope.dev"

type Config struct {
	Environment string
	LogLevel    slog.Level

	HTTPBind string
	HTTPPort int

	UpstreamURL    string
	UpstreamAPIKey string

	RequestTimeoutSecs int
	SessionIdleSecs    int
}

// Load reads configuration from the environment. The upstream API key has no
// default; a missing or empty key is a hard error so the process can refuse
// to start rather than fail on the first tool call.
func Load() (*Config, error) {
	cfg := &Config{
		Environment:    strings.ToLower(strings.TrimSpace(os.Getenv("ENV"))),
		UpstreamURL:    strings.TrimRight(strings.TrimSpace(os.Getenv("MARKET_API_URL")), "/"),
		UpstreamAPIKey: strings.TrimSpace(os.Getenv("MARKET_API_KEY")),
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Environment != "development" && cfg.Environment != "production" {
		return nil, fmt.Errorf("unsupported ENV: %q", cfg.Environment)
	}

	if cfg.UpstreamURL == "" {
		cfg.UpstreamURL = defaultUpstreamURL
	}
	if cfg.UpstreamAPIKey == "" {
		return nil, fmt.Errorf("MARKET_API_KEY is required")
	}

	level, err := parseLogLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	cfg.HTTPBind = strings.TrimSpace(os.Getenv("MCP_HTTP_BIND"))
	if cfg.HTTPBind == "" {
		cfg.HTTPBind = "127.0.0.1"
	}

	cfg.HTTPPort = 8090
	if v := strings.TrimSpace(os.Getenv("MCP_HTTP_PORT")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 65535 {
			return nil, fmt.Errorf("invalid MCP_HTTP_PORT: %q", v)
		}
		cfg.HTTPPort = n
	}

	cfg.RequestTimeoutSecs = 30
	if v := strings.TrimSpace(os.Getenv("MCP_REQUEST_TIMEOUT_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RequestTimeoutSecs = n
		}
	}

	cfg.SessionIdleSecs = 1800
	if v := strings.TrimSpace(os.Getenv("MCP_SESSION_IDLE_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SessionIdleSecs = n
		}
	}

	return cfg, nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unsupported LOG_LEVEL: %q", raw)
	}
}
