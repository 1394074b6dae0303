// Package logger provides the logging interface used across beamtop.
//
// The dashboard owns the terminal while it runs, so nothing may print to
// stdout or stderr during that time. Log output goes through the standard
// library logger, which the CLI points at a file (or io.Discard) before the
// terminal session starts.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// DebugEnv enables debug output when set to any non-empty value.
const DebugEnv = "BEAMTOP_DEBUG"

// Logger defines the interface for logging operations.
// All methods accept a format string and arguments, similar to fmt.Printf.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// envLogger writes through the std logger. Debug messages are only
// written when BEAMTOP_DEBUG is set.
type envLogger struct {
	prefix string
}

// NewEnvLogger creates a logger that respects the BEAMTOP_DEBUG environment variable.
// The prefix is prepended to all log messages (e.g., "[poller]" or "[monitor]").
func NewEnvLogger(prefix string) Logger {
	return &envLogger{prefix: prefix}
}

func (l *envLogger) Debug(format string, args ...interface{}) {
	if DebugEnabled() {
		log.Printf(l.prefix+" DEBUG: "+format, args...)
	}
}

func (l *envLogger) Info(format string, args ...interface{}) {
	log.Printf(l.prefix+" "+format, args...)
}

func (l *envLogger) Warn(format string, args ...interface{}) {
	log.Printf(l.prefix+" WARN: "+format, args...)
}

func (l *envLogger) Error(format string, args ...interface{}) {
	log.Printf(l.prefix+" ERROR: "+format, args...)
}

// DebugEnabled reports whether BEAMTOP_DEBUG is set.
func DebugEnabled() bool {
	return os.Getenv(DebugEnv) != ""
}

// noopLogger discards everything.
type noopLogger struct{}

// Noop returns a logger that discards all messages.
func Noop() Logger {
	return &noopLogger{}
}

func (l *noopLogger) Debug(format string, args ...interface{}) {}
func (l *noopLogger) Info(format string, args ...interface{})  {}
func (l *noopLogger) Warn(format string, args ...interface{})  {}
func (l *noopLogger) Error(format string, args ...interface{}) {}

// LogMessage represents a captured log message.
type LogMessage struct {
	Level   string
	Message string
}

// BufferLogger captures log messages for test assertions.
// Safe for use from the poller goroutine and the controller at once.
type BufferLogger struct {
	mu       sync.Mutex
	Messages []LogMessage
}

// NewBufferLogger creates a logger that captures messages for inspection.
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{
		Messages: make([]LogMessage, 0),
	}
}

func (l *BufferLogger) record(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = append(l.Messages, LogMessage{Level: level, Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Debug(format string, args ...interface{}) {
	l.record("debug", format, args...)
}

func (l *BufferLogger) Info(format string, args ...interface{}) {
	l.record("info", format, args...)
}

func (l *BufferLogger) Warn(format string, args ...interface{}) {
	l.record("warn", format, args...)
}

func (l *BufferLogger) Error(format string, args ...interface{}) {
	l.record("error", format, args...)
}

// HasLevel returns true if any message was logged at the given level.
func (l *BufferLogger) HasLevel(level string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.Messages {
		if m.Level == level {
			return true
		}
	}
	return false
}

// Count returns how many messages were logged at the given level.
func (l *BufferLogger) Count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, m := range l.Messages {
		if m.Level == level {
			n++
		}
	}
	return n
}

// Clear removes all captured messages.
func (l *BufferLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = l.Messages[:0]
}

// RedirectToFile points the std logger at path, creating parent
// directories as needed. An empty path discards all output.
// The returned closer restores stderr output and closes the file.
func RedirectToFile(path string) (io.Closer, error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return restoreCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	return restoreCloser{file: f}, nil
}

type restoreCloser struct {
	file *os.File
}

func (c restoreCloser) Close() error {
	log.SetOutput(os.Stderr)
	if c.file == nil {
		return nil
	}
	return c.file.Close()
}

// defaultLogger is the package-level default logger.
var defaultLogger = NewEnvLogger("[beamtop]")

// Default returns the default logger for the package.
func Default() Logger {
	return defaultLogger
}
