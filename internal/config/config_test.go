package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		envListenAddr, envDBPath, envLogLevel,
		envProcessDuration, envTickInterval, envInitialUnits, envTraceFile,
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.ListenAddr != defaultListenAddr {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, defaultListenAddr)
	}
	if cfg.DBPath != defaultDBPath {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, defaultDBPath)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want %v", cfg.LogLevel, slog.LevelInfo)
	}
	if cfg.ProcessDuration != 10*time.Second {
		t.Errorf("ProcessDuration = %v, want 10s", cfg.ProcessDuration)
	}
	if cfg.TickInterval != 100*time.Millisecond {
		t.Errorf("TickInterval = %v, want 100ms", cfg.TickInterval)
	}
	if cfg.InitialUnits != 1 {
		t.Errorf("InitialUnits = %d, want 1", cfg.InitialUnits)
	}
	if cfg.TraceFile != "" {
		t.Errorf("TraceFile = %q, want empty", cfg.TraceFile)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(envListenAddr, ":9090")
	t.Setenv(envDBPath, "/tmp/test.db")
	t.Setenv(envLogLevel, "debug")
	t.Setenv(envProcessDuration, "2s")
	t.Setenv(envTickInterval, "50ms")
	t.Setenv(envInitialUnits, "3")
	t.Setenv(envTraceFile, "/tmp/traces.json")

	cfg := Load()

	if cfg.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, ":9090")
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "/tmp/test.db")
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want %v", cfg.LogLevel, slog.LevelDebug)
	}
	if cfg.ProcessDuration != 2*time.Second {
		t.Errorf("ProcessDuration = %v, want 2s", cfg.ProcessDuration)
	}
	if cfg.TickInterval != 50*time.Millisecond {
		t.Errorf("TickInterval = %v, want 50ms", cfg.TickInterval)
	}
	if cfg.InitialUnits != 3 {
		t.Errorf("InitialUnits = %d, want 3", cfg.InitialUnits)
	}
	if cfg.TraceFile != "/tmp/traces.json" {
		t.Errorf("TraceFile = %q, want %q", cfg.TraceFile, "/tmp/traces.json")
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv(envProcessDuration, "soon")
	t.Setenv(envTickInterval, "-5ms")
	t.Setenv(envInitialUnits, "-2")

	cfg := Load()

	if cfg.ProcessDuration != defaultProcessDuration {
		t.Errorf("ProcessDuration = %v, want default", cfg.ProcessDuration)
	}
	if cfg.TickInterval != defaultTickInterval {
		t.Errorf("TickInterval = %v, want default", cfg.TickInterval)
	}
	if cfg.InitialUnits != defaultInitialUnits {
		t.Errorf("InitialUnits = %d, want default", cfg.InitialUnits)
	}
}

func TestLoadZeroInitialUnits(t *testing.T) {
	clearEnv(t)
	t.Setenv(envInitialUnits, "0")

	if got := Load().InitialUnits; got != 0 {
		t.Errorf("InitialUnits = %d, want 0", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		got := parseLogLevel(tt.input)
		if got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewLoggerOutputsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)
	if logger == nil {
		t.Fatal("NewLogger returned nil")
	}

	logger.Info("test message", "key", "value")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("logger output is not valid JSON: %v\noutput: %s", err, buf.String())
	}

	for _, key := range []string{"time", "level", "msg"} {
		if _, ok := entry[key]; !ok {
			t.Errorf("JSON output missing expected key %q", key)
		}
	}
	if entry["msg"] != "test message" {
		t.Errorf("msg = %v, want %q", entry["msg"], "test message")
	}
	if entry["key"] != "value" {
		t.Errorf("key = %v, want %q", entry["key"], "value")
	}
}
