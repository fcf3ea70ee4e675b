package logging

import (
	"log/slog"
	"testing"

	"github.com/nerrad567/gray-logic-bravia/internal/infrastructure/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNew_DoesNotPanic(t *testing.T) {
	cfg := config.LoggingConfig{Level: "debug", Format: "text", Output: "stderr"}
	logger := New(cfg, "test")
	if logger == nil {
		t.Fatal("New() returned nil")
	}
	logger.Debug("smoke test", "key", "value")
}

func TestWith_ReturnsNewLogger(t *testing.T) {
	logger := Default()
	child := logger.With("component", "test")
	if child == logger {
		t.Error("With() should return a new logger instance")
	}
	child.Info("child logger works")
}
