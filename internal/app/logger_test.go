package app

import (
	"log/slog"
	"testing"

	"github.com/carelog/carelog-backend/internal/config"
)

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "text"} {
		cfg := config.LogConfig{Level: "info", Format: format}
		logger := NewLogger(cfg)
		if logger == nil {
			t.Fatalf("format %q: logger should not be nil", format)
		}
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tc := range cases {
		if got := parseLevel(tc.in); got != tc.want {
			t.Errorf("parseLevel(%q): got %v, want %v", tc.in, got, tc.want)
		}
	}
}
