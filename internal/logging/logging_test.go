package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"Warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetupFiltersBelowLevel(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	Setup("WARN", "text", &buf)
	slog.Info("hidden")
	slog.Warn("shown", "series", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message logged at WARN level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "series=3") {
		t.Errorf("warn message missing: %q", out)
	}
}

func TestSetupJSONFormat(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	Setup("INFO", "json", &buf)
	slog.Info("fold done", "fold", 2)

	out := buf.String()
	if !strings.Contains(out, `"msg":"fold done"`) || !strings.Contains(out, `"fold":2`) {
		t.Errorf("json output = %q", out)
	}
}
