// Package debuglog is a small leveled logger that writes to a file. It is
// off by default because the dashboard owns the terminal.
package debuglog

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelOff // Disables all logging
)

var levelNames = map[LogLevel]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelOff:   "OFF",
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseLogLevel maps a config string to a level. Unknown values mean INFO.
func ParseLogLevel(s string) LogLevel {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "WARNING" {
		return LevelWarn
	}
	for level, name := range levelNames {
		if name == s {
			return level
		}
	}
	return LevelInfo
}

// Logger writes leveled lines to an io.Writer.
type Logger struct {
	mu     sync.Mutex
	level  LogLevel
	out    *log.Logger
	closer io.Closer
}

// New returns a logger writing to w at the given level.
func New(w io.Writer, level LogLevel) *Logger {
	return &Logger{level: level, out: log.New(w, "newsdash ", log.LstdFlags|log.Lmicroseconds)}
}

func (l *Logger) enabled(level LogLevel) bool {
	return l.out != nil && level >= l.level && l.level != LevelOff
}

func (l *Logger) logf(level LogLevel, suffix, format string, args ...any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enabled(level) {
		return
	}
	l.out.Printf("[%s] %s%s", level, fmt.Sprintf(format, args...), suffix)
}

// Close releases the underlying file, if the logger owns one.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	l.out = nil
	return err
}

var (
	stdMu sync.RWMutex
	std   *Logger
)

func current() *Logger {
	stdMu.RLock()
	defer stdMu.RUnlock()
	return std
}

// Setup points the package logger at path (created with its parent
// directory). LevelOff disables logging without touching the filesystem.
func Setup(level LogLevel, path string) error {
	if err := Close(); err != nil {
		return err
	}
	if level == LevelOff {
		return nil
	}
	if path == "" {
		return fmt.Errorf("log path is required for level %s", level)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	l := New(f, level)
	l.closer = f

	stdMu.Lock()
	std = l
	stdMu.Unlock()
	return nil
}

// SetOutput installs a logger for w. Tests use it to capture output.
func SetOutput(w io.Writer, level LogLevel) {
	stdMu.Lock()
	std = New(w, level)
	stdMu.Unlock()
}

// Close closes the log file if open
func Close() error {
	stdMu.Lock()
	l := std
	std = nil
	stdMu.Unlock()
	if l == nil {
		return nil
	}
	return l.Close()
}

// GetLevel returns the current logging level
func GetLevel() LogLevel {
	if l := current(); l != nil {
		return l.level
	}
	return LevelOff
}

func Debugf(format string, args ...any) { current().logf(LevelDebug, "", format, args...) }
func Infof(format string, args ...any)  { current().logf(LevelInfo, "", format, args...) }
func Warnf(format string, args ...any)  { current().logf(LevelWarn, "", format, args...) }
func Errorf(format string, args ...any) { current().logf(LevelError, "", format, args...) }

// FieldLogger appends key=value pairs to every line.
type FieldLogger struct {
	fields map[string]any
}

// WithFields returns a new logger with the specified fields
func WithFields(fields map[string]any) *FieldLogger {
	return &FieldLogger{fields: fields}
}

// formatFields renders fields in key order so lines are stable.
func (fl *FieldLogger) formatFields() string {
	if len(fl.fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fl.fields))
	for k := range fl.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fl.fields[k]))
	}
	return " [" + strings.Join(parts, " ") + "]"
}

func (fl *FieldLogger) Debugf(format string, args ...any) {
	current().logf(LevelDebug, fl.formatFields(), format, args...)
}

func (fl *FieldLogger) Infof(format string, args ...any) {
	current().logf(LevelInfo, fl.formatFields(), format, args...)
}

func (fl *FieldLogger) Warnf(format string, args ...any) {
	current().logf(LevelWarn, fl.formatFields(), format, args...)
}

func (fl *FieldLogger) Errorf(format string, args ...any) {
	current().logf(LevelError, fl.formatFields(), format, args...)
}
