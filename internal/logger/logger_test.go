package logger

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"ERROR", zerolog.ErrorLevel},
		{"garbage", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestInitWithFile(t *testing.T) {
	path := t.TempDir() + "/sutra.log"
	if err := Init(Config{Level: "info", File: path}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
}

func TestInitWithBadFilePath(t *testing.T) {
	if err := Init(Config{Level: "info", File: "/nonexistent-dir/sutra.log"}); err == nil {
		t.Error("Init() with unwritable path should fail")
	}
}
