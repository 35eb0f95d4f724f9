// Package logger wires the bridge's structured logging: console output plus
// a daily-rolled, count-bounded file sink, addressed through package-level
// functions so every package can log without threading a *Logger through
// call signatures.
package logger

import (
	"fmt"
	"strings"
	"sync"

	"github.com/willibrandon/mtlog"
	"github.com/willibrandon/mtlog/core"
	"github.com/willibrandon/mtlog/sinks"
)

// Config is the logging block of the loaded LSPServerConfig.
type Config struct {
	LogPath     string
	LogLevel    string
	MaxLogFiles int
}

var (
	mu       sync.Mutex
	active   core.Logger
	fileSink *sinks.RollingFileSink
)

// Init builds the process-wide logger from cfg: console output always on,
// plus a rolling file sink when LogPath is set. Safe to call more than once
// (a restart replaces the previous logger after closing its file sink).
func Init(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	if fileSink != nil {
		fileSink.Close()
		fileSink = nil
	}

	opts := []mtlog.Option{mtlog.WithConsole(), levelOption(cfg.LogLevel)}

	if cfg.LogPath != "" {
		retain := cfg.MaxLogFiles
		if retain <= 0 {
			retain = 10
		}
		sink, err := sinks.NewRollingFileSink(sinks.RollingFileOptions{
			FilePath:        cfg.LogPath,
			RollingInterval: sinks.RollingIntervalDaily,
			RetainFileCount: retain,
		})
		if err != nil {
			return fmt.Errorf("open log file %q: %w", cfg.LogPath, err)
		}
		fileSink = sink
		opts = append(opts, mtlog.WithSink(sink))
	}

	active = mtlog.New(opts...)
	return nil
}

func levelOption(level string) mtlog.Option {
	switch strings.ToLower(level) {
	case "debug", "verbose", "trace":
		return mtlog.Debug()
	case "warn", "warning":
		return mtlog.Warning()
	case "error":
		return mtlog.Error()
	default:
		return mtlog.Information()
	}
}

// Close releases the file sink, if one is open.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if fileSink == nil {
		return nil
	}
	err := fileSink.Close()
	fileSink = nil
	return err
}

func current() core.Logger {
	mu.Lock()
	l := active
	mu.Unlock()
	if l == nil {
		// No Init call yet (e.g. in a test): fall back to console-only at
		// Information level so log calls never panic on a nil logger.
		l = mtlog.New(mtlog.WithConsole(), mtlog.Information())
	}
	return l
}

// Debug logs a message-template event at Debug level.
func Debug(template string, args ...any) { current().Debug(template, args...) }

// Info logs a message-template event at Information level.
func Info(template string, args ...any) { current().Information(template, args...) }

// Warn logs a message-template event at Warning level.
func Warn(template string, args ...any) { current().Warning(template, args...) }

// Error logs a message-template event at Error level.
func Error(template string, args ...any) { current().Error(template, args...) }
