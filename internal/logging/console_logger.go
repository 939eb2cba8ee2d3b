package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"

	"github.com/artugro/load-flow/pkg/loadflow"
)

// ConsoleLogger writes leveled log lines through slog with a tint handler.
// Safe for concurrent use by multiple goroutines.
type ConsoleLogger struct {
	logger *slog.Logger
}

// Options configures a ConsoleLogger.
type Options struct {
	// Verbose enables Verbose() output (slog debug level).
	Verbose bool

	// NoColor disables ANSI colors. Colors are also disabled when the
	// writer is not a terminal.
	NoColor bool

	// NoTime omits the timestamp. Used by tests for stable output.
	NoTime bool
}

// NewConsoleLogger creates a ConsoleLogger writing to stderr.
// If verbose is true, Verbose() calls will produce output.
func NewConsoleLogger(verbose bool) *ConsoleLogger {
	return New(os.Stderr, Options{Verbose: verbose})
}

// New creates a ConsoleLogger writing to w.
func New(w io.Writer, opts Options) *ConsoleLogger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}

	handler := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    opts.NoColor || !isTerminal(w),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if opts.NoTime && a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			if s, ok := a.Value.Any().(string); ok && s == "" {
				return slog.Attr{}
			}
			return a
		},
	})
	return &ConsoleLogger{logger: slog.New(handler)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// With returns a logger that appends the given key/value attributes to
// every line, e.g. With("run_id", id).
func (l *ConsoleLogger) With(args ...any) loadflow.Logger {
	return &ConsoleLogger{logger: l.logger.With(args...)}
}

// Verbose logs detailed diagnostic information if verbose mode is enabled.
func (l *ConsoleLogger) Verbose(format string, args ...interface{}) {
	l.log(slog.LevelDebug, format, args)
}

// Info logs informational messages about normal operations.
func (l *ConsoleLogger) Info(format string, args ...interface{}) {
	l.log(slog.LevelInfo, format, args)
}

// Error logs error messages.
func (l *ConsoleLogger) Error(format string, args ...interface{}) {
	l.log(slog.LevelError, format, args)
}

func (l *ConsoleLogger) log(level slog.Level, format string, args []interface{}) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level) {
		return
	}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	l.logger.Log(ctx, level, msg)
}
