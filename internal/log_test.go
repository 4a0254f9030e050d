package internal

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func capture(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(prev)
	fn()
	return buf.String()
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"ERROR":   LogLevelError,
		"warn":    LogLevelWarn,
		"Warning": LogLevelWarn,
		"debug":   LogLevelDebug,
		"TRACE":   LogLevelTrace,
		"":        LogLevelInfo,
		"bogus":   LogLevelInfo,
	}
	for input, want := range cases {
		if got := ParseLogLevel(input); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestLoggerFiltersBelowLevel(t *testing.T) {
	logger := NewLogger(LogLevelWarn)
	out := capture(t, func() {
		logger.Warn("slow chunk")
		logger.Info("routine detail")
	})
	if !strings.Contains(out, "[WARN] slow chunk") {
		t.Errorf("warn line missing from output: %q", out)
	}
	if strings.Contains(out, "routine detail") {
		t.Errorf("info line should be filtered at warn level: %q", out)
	}
}

func TestComponentPrefixesEveryLine(t *testing.T) {
	logger := NewLogger(LogLevelInfo).Component("Batcher")
	out := capture(t, func() {
		logger.Info("chunk %d committed", 3)
	})
	if !strings.Contains(out, "[INFO] [Batcher] chunk 3 committed") {
		t.Errorf("component prefix missing: %q", out)
	}
}
