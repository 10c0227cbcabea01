package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"navindex/internal/domain"
)

// Logger wraps slog.Logger with navigation-specific helpers.
type Logger struct {
	*slog.Logger
}

// New creates a Logger with the given handler.
// If handler is nil, uses a text handler to stderr at info level.
func New(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that writes human-readable text to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewJSONLogger creates a Logger that writes JSON to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

// FromConfig builds a logger from a level name and a format ("text" or "json").
func FromConfig(level, format string) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(format) {
	case "", "text":
		return NewTextLogger(lvl), nil
	case "json":
		return NewJSONLogger(lvl), nil
	default:
		return nil, fmt.Errorf("unknown log format: %q", format)
	}
}

// ParseLevel parses debug, info, warn or error.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %q", s)
	}
}

// WithTree tags the logger with the tree a component serves.
func (l *Logger) WithTree(kind domain.ItemKind, trashed bool) *Logger {
	return &Logger{
		Logger: l.Logger.With("kind", kind.String(), "trashed", trashed),
	}
}

// LogRebuild logs the outcome of a tree rebuild.
func (l *Logger) LogRebuild(ctx context.Context, stats *domain.RebuildStats, err error) {
	if err != nil {
		l.ErrorContext(ctx, "rebuild failed",
			"error", err,
		)
		return
	}
	if stats.Orphans > 0 || stats.Skipped > 0 {
		l.WarnContext(ctx, "rebuild completed with repaired records",
			"nodes", stats.Nodes,
			"roots", stats.Roots,
			"orphans", stats.Orphans,
			"skipped", stats.Skipped,
			"duration", stats.Duration,
		)
		return
	}
	l.InfoContext(ctx, "rebuild completed",
		"nodes", stats.Nodes,
		"roots", stats.Roots,
		"duration", stats.Duration,
	)
}

// LogBootstrap logs the startup rebuild of every tree.
func (l *Logger) LogBootstrap(ctx context.Context, trees int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "navigation bootstrap failed",
			"trees", trees,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "navigation bootstrap completed",
		"trees", trees,
		"duration", duration,
	)
}

// LogRejected logs a structural mutation the tree refused.
func (l *Logger) LogRejected(ctx context.Context, op string, key uuid.UUID) {
	l.DebugContext(ctx, "mutation rejected",
		"op", op,
		"key", key.String(),
	)
}
