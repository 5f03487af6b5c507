package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zap.DebugLevel},
		{"WARN", zap.WarnLevel},
		{"warning", zap.WarnLevel},
		{" error ", zap.ErrorLevel},
		{"", zap.InfoLevel},
		{"verbose", zap.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		logger, err := NewLogger(format, "debug")
		if err != nil {
			t.Fatalf("NewLogger(%q): %v", format, err)
		}
		if !logger.Core().Enabled(zap.DebugLevel) {
			t.Errorf("%s logger should enable debug", format)
		}
	}
}
