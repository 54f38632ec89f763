package debuglog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LevelOff, "OFF"},
		{LogLevel(42), "UNKNOWN"},
	}

	for _, test := range tests {
		if got := test.level.String(); got != test.expected {
			t.Errorf("LogLevel.String() = %q, want %q", got, test.expected)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"DEBUG", LevelDebug},
		{"debug", LevelDebug},
		{" info ", LevelInfo},
		{"warn", LevelWarn},
		{"WARNING", LevelWarn},
		{"error", LevelError},
		{"off", LevelOff},
		{"INVALID", LevelInfo},
		{"", LevelInfo},
	}

	for _, test := range tests {
		if got := ParseLogLevel(test.input); got != test.expected {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", test.input, got, test.expected)
		}
	}
}

func TestSetupWritesFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "newsdash.log")

	if err := Setup(LevelInfo, logPath); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	t.Cleanup(func() { _ = Close() })

	if GetLevel() != LevelInfo {
		t.Errorf("GetLevel() = %v, want %v", GetLevel(), LevelInfo)
	}

	Debugf("debug message")
	Infof("info message")
	Errorf("error %d", 7)

	if err := Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	out := string(content)

	if strings.Contains(out, "debug message") {
		t.Error("debug line should be filtered at INFO level")
	}
	if !strings.Contains(out, "[INFO] info message") {
		t.Errorf("missing info line in %q", out)
	}
	if !strings.Contains(out, "[ERROR] error 7") {
		t.Errorf("missing error line in %q", out)
	}
	if !strings.HasPrefix(out, "newsdash ") {
		t.Errorf("log lines should carry the newsdash prefix, got %q", out)
	}
}

func TestSetupOffSkipsFilesystem(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "never", "newsdash.log")

	if err := Setup(LevelOff, logPath); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	Errorf("dropped")

	if _, err := os.Stat(filepath.Dir(logPath)); !os.IsNotExist(err) {
		t.Errorf("LevelOff should not create %s", filepath.Dir(logPath))
	}
	if GetLevel() != LevelOff {
		t.Errorf("GetLevel() = %v, want OFF", GetLevel())
	}
}

func TestSetupRequiresPath(t *testing.T) {
	if err := Setup(LevelDebug, ""); err == nil {
		t.Error("Setup with empty path should fail")
	}
}

func TestWithFieldsSortedKeys(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, LevelDebug)
	t.Cleanup(func() { _ = Close() })

	WithFields(map[string]any{"region": "daily", "date": "2024-05-01"}).Warnf("render failed")

	out := buf.String()
	if !strings.Contains(out, "[WARN] render failed [date=2024-05-01 region=daily]") {
		t.Errorf("unexpected field formatting: %q", out)
	}
}

func TestUnsetLoggerIsNoop(t *testing.T) {
	_ = Close()
	Infof("nobody listens")
	WithFields(map[string]any{"k": 1}).Errorf("still nobody")
}
