// Package loggy wraps log/slog with a process-wide logger and source attribution
package loggy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

var (
	globalLogger *Logger
	globalMu     sync.RWMutex
)

// Config configures the logger
type Config struct {
	Level      slog.Level
	Format     string    // "json" or "text"
	Output     string    // "stdout", "stderr", or a file path
	Writer     io.Writer // Takes precedence over Output when set
	AddSource  bool      // Include source code position in logs
	TimeFormat string    // Time format for logs (empty uses RFC3339)
}

// Logger wraps slog.Logger with additional context
type Logger struct {
	slogger   *slog.Logger
	addSource bool
}

// New builds a logger from cfg without touching the global logger
func New(cfg Config) (*Logger, error) {
	output, err := openOutput(cfg)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.TimeFormat != "" {
		opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					return slog.String(a.Key, t.Format(cfg.TimeFormat))
				}
			}
			return a
		}
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	return &Logger{slogger: slog.New(handler), addSource: cfg.AddSource}, nil
}

func openOutput(cfg Config) (io.Writer, error) {
	if cfg.Writer != nil {
		return cfg.Writer, nil
	}

	switch cfg.Output {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Output), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}

// Init initializes the global logger. On failure the global logger becomes a noop logger.
func Init(cfg Config) error {
	l, err := New(cfg)
	if err != nil {
		NewNoopLogger()
		return err
	}
	SetGlobalLogger(l)
	return nil
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// SetGlobalLogger sets the global logger instance
func SetGlobalLogger(logger *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = logger
}

// NewNoopLogger creates and sets a logger that discards all output, useful for testing
func NewNoopLogger() *Logger {
	noop := &Logger{
		slogger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError})),
	}
	SetGlobalLogger(noop)
	return noop
}

// getCaller returns the source file and line number of the caller
func getCaller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown:0"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

// Debug logs at debug level
func Debug(msg string, args ...any) { GetGlobalLogger().log(slog.LevelDebug, 3, msg, args...) }

// Info logs at info level
func Info(msg string, args ...any) { GetGlobalLogger().log(slog.LevelInfo, 3, msg, args...) }

// Warn logs at warn level
func Warn(msg string, args ...any) { GetGlobalLogger().log(slog.LevelWarn, 3, msg, args...) }

// Error logs at error level
func Error(msg string, args ...any) { GetGlobalLogger().log(slog.LevelError, 3, msg, args...) }

func (l *Logger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, 3, msg, args...) }

func (l *Logger) Info(msg string, args ...any) { l.log(slog.LevelInfo, 3, msg, args...) }

func (l *Logger) Warn(msg string, args ...any) { l.log(slog.LevelWarn, 3, msg, args...) }

func (l *Logger) Error(msg string, args ...any) { l.log(slog.LevelError, 3, msg, args...) }

// Enabled reports whether records at level would be emitted
func (l *Logger) Enabled(level slog.Level) bool {
	if l == nil || l.slogger == nil {
		return false
	}
	return l.slogger.Enabled(context.Background(), level)
}

func (l *Logger) log(level slog.Level, skip int, msg string, args ...any) {
	if l == nil || l.slogger == nil {
		return
	}

	ctx := context.Background()
	if !l.slogger.Enabled(ctx, level) {
		return
	}

	r := slog.NewRecord(time.Now(), level, msg, 0)
	if l.addSource {
		r.AddAttrs(slog.String("source", getCaller(skip)))
	}
	r.Add(args...)
	_ = l.slogger.Handler().Handle(ctx, r)
}

// With returns a new Logger with the given attributes
func (l *Logger) With(args ...any) *Logger {
	if l == nil || l.slogger == nil {
		return l
	}
	return &Logger{slogger: l.slogger.With(args...), addSource: l.addSource}
}
