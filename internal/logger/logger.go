package logger

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
	defaultLogger *slog.Logger
	logLevel      *slog.LevelVar
	initOnce      sync.Once
)

// Init configures the process-wide logger. Only the first call has effect.
func Init(cfg Config, output io.Writer) {
	initOnce.Do(func() {
		if output == nil {
			output = io.Discard
		}
		cfg.process()
		logLevel = new(slog.LevelVar)
		logLevel.Set(cfg.level)

		opts := slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.SourceKey {
					if source, ok := a.Value.Any().(*slog.Source); ok && source != nil {
						source.File = filepath.Base(source.File)
					}
				}
				if a.Key == slog.TimeKey {
					a.Value = slog.StringValue(a.Value.Time().Format(time.TimeOnly))
				}
				return a
			},
		}
		defaultLogger = slog.New(newFilteringHandler(slog.NewTextHandler(output, &opts), &cfg))
		defaultLogger.Info("Logger initialized", slog.String("level", cfg.level.String()))
	})
}

// OpenOutput opens the writer named by cfg.LogFilePath. Empty or "-" is
// stderr; the returned closer is a no-op in that case.
func OpenOutput(cfg Config) (io.Writer, func() error, error) {
	if cfg.LogFilePath == "" || cfg.LogFilePath == "-" {
		return os.Stderr, func() error { return nil }, nil
	}
	f, err := os.OpenFile(cfg.LogFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file '%s': %w", cfg.LogFilePath, err)
	}
	return f, f.Close, nil
}

// ensureInitialized installs a discarding logger when Init was never called.
func ensureInitialized() {
	initOnce.Do(func() {
		logLevel = new(slog.LevelVar)
		logLevel.Set(slog.LevelInfo)
		defaultLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: logLevel}))
	})
}

// logAtLevel builds a record with the caller of the exported wrapper as source.
func logAtLevel(level slog.Level, tag string, format string, args ...any) {
	ensureInitialized()
	if !defaultLogger.Enabled(context.Background(), level) {
		return
	}
	var pcs [1]uintptr
	// Skip runtime.Callers, logAtLevel and the exported wrapper.
	runtime.Callers(3, pcs[:])

	r := slog.NewRecord(time.Now(), level, fmt.Sprintf(format, args...), pcs[0])
	if tag != "" {
		r.AddAttrs(slog.String(tagKey, tag))
	}
	_ = defaultLogger.Handler().Handle(context.Background(), r)
}

// Debugf logs a debug message using Printf-style formatting.
func Debugf(format string, args ...any) { logAtLevel(slog.LevelDebug, "", format, args...) }

// Infof logs an info message.
func Infof(format string, args ...any) { logAtLevel(slog.LevelInfo, "", format, args...) }

// Warnf logs a warning.
func Warnf(format string, args ...any) { logAtLevel(slog.LevelWarn, "", format, args...) }

// Errorf logs an error.
func Errorf(format string, args ...any) { logAtLevel(slog.LevelError, "", format, args...) }

// DebugTagf logs a debug message carrying a filterable tag.
func DebugTagf(tag, format string, args ...any) { logAtLevel(slog.LevelDebug, tag, format, args...) }

// InfoTagf logs an info message carrying a tag.
func InfoTagf(tag, format string, args ...any) { logAtLevel(slog.LevelInfo, tag, format, args...) }

// WarnTagf logs a warning carrying a tag.
func WarnTagf(tag, format string, args ...any) { logAtLevel(slog.LevelWarn, tag, format, args...) }

// SetLevel changes the minimum level at runtime.
func SetLevel(level slog.Level) {
	ensureInitialized()
	logLevel.Set(level)
}

// Get returns the underlying slog logger, for packages that log with
// key/value attributes (the HTTP server).
func Get() *slog.Logger {
	ensureInitialized()
	return defaultLogger
}
