package config

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultListenAddr      = ":8080"
	defaultDBPath          = ":memory:"
	defaultProcessDuration = 10 * time.Second
	defaultTickInterval    = 100 * time.Millisecond
	defaultInitialUnits    = 1

	envListenAddr      = "ORDERBOT_LISTEN_ADDR"
	envDBPath          = "ORDERBOT_DB_PATH"
	envLogLevel        = "ORDERBOT_LOG_LEVEL"
	envProcessDuration = "ORDERBOT_PROCESS_DURATION"
	envTickInterval    = "ORDERBOT_TICK_INTERVAL"
	envInitialUnits    = "ORDERBOT_INITIAL_UNITS"
	envTraceFile       = "ORDERBOT_TRACE_FILE"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	ListenAddr      string
	DBPath          string
	LogLevel        slog.Level
	ProcessDuration time.Duration
	TickInterval    time.Duration
	InitialUnits    int
	// TraceFile receives stdout-exporter spans. Empty disables tracing.
	TraceFile string
}

// Load reads configuration from environment variables with sensible defaults.
// Values that fail to parse keep their default.
func Load() Config {
	cfg := Config{
		ListenAddr:      defaultListenAddr,
		DBPath:          defaultDBPath,
		LogLevel:        slog.LevelInfo,
		ProcessDuration: defaultProcessDuration,
		TickInterval:    defaultTickInterval,
		InitialUnits:    defaultInitialUnits,
	}

	if v := os.Getenv(envListenAddr); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv(envDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = parseLogLevel(v)
	}
	if v := os.Getenv(envProcessDuration); v != "" {
		cfg.ProcessDuration = parsePositiveDuration(v, defaultProcessDuration)
	}
	if v := os.Getenv(envTickInterval); v != "" {
		cfg.TickInterval = parsePositiveDuration(v, defaultTickInterval)
	}
	if v := os.Getenv(envInitialUnits); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.InitialUnits = n
		}
	}
	cfg.TraceFile = os.Getenv(envTraceFile)

	return cfg
}

func parsePositiveDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a structured JSON logger writing to w at the configured level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
