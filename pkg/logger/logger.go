// Package logger provides the structured logging API used throughout
// callwire: level/format configuration and a context-aware API that
// auto-injects call-frame identifiers (trace id, span id, service,
// caller name) into every line.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Config holds logger configuration.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // text, json
	Output string // stdout, stderr, or file path
}

var (
	mu       sync.RWMutex
	output   io.Writer = os.Stdout
	format             = "text"
	levelVar           = new(slog.LevelVar)
	slogger  *slog.Logger
)

func init() {
	rebuild()
}

func parseLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// rebuild reconstructs the package logger from the current output/format,
// with the live levelVar wired in so SetLevel takes effect without a
// handler rebuild.
func rebuild() {
	mu.Lock()
	defer mu.Unlock()

	opts := &slog.HandlerOptions{Level: levelVar}
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(output, opts)
	} else {
		h = slog.NewTextHandler(output, opts)
	}
	slogger = slog.New(h)
}

// Init configures the package logger. Output may be "stdout", "stderr",
// or a file path. Level and Format are left unchanged when empty.
func Init(cfg Config) error {
	if cfg.Output != "" {
		w, err := openOutput(cfg.Output)
		if err != nil {
			return err
		}
		mu.Lock()
		output = w
		mu.Unlock()
	}
	if cfg.Format != "" {
		f := strings.ToLower(cfg.Format)
		if f == "text" || f == "json" {
			mu.Lock()
			format = f
			mu.Unlock()
		}
	}
	rebuild()

	if cfg.Level != "" {
		SetLevel(cfg.Level)
	}
	return nil
}

func openOutput(target string) (io.Writer, error) {
	switch strings.ToLower(target) {
	case "stdout", "":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file %q: %w", target, err)
		}
		return f, nil
	}
}

// SetLevel sets the minimum log level ("debug", "info", "warn", "error").
func SetLevel(level string) {
	levelVar.Set(parseLevel(level))
}

func getLogger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return slogger
}

// Debug logs at debug level with structured fields.
func Debug(msg string, args ...any) { getLogger().Debug(msg, args...) }

// Info logs at info level with structured fields.
func Info(msg string, args ...any) { getLogger().Info(msg, args...) }

// Warn logs at warn level with structured fields.
func Warn(msg string, args ...any) { getLogger().Warn(msg, args...) }

// Error logs at error level with structured fields.
func Error(msg string, args ...any) { getLogger().Error(msg, args...) }

// DebugCtx logs at debug level, auto-injecting trace_id/span_id/service/
// caller_name/routing_delegate from ctx.
func DebugCtx(ctx context.Context, msg string, args ...any) {
	getLogger().Debug(msg, appendContextFields(ctx, args)...)
}

// InfoCtx logs at info level with context.
func InfoCtx(ctx context.Context, msg string, args ...any) {
	getLogger().Info(msg, appendContextFields(ctx, args)...)
}

// WarnCtx logs at warn level with context.
func WarnCtx(ctx context.Context, msg string, args ...any) {
	getLogger().Warn(msg, appendContextFields(ctx, args)...)
}

// ErrorCtx logs at error level with context.
func ErrorCtx(ctx context.Context, msg string, args ...any) {
	getLogger().Error(msg, appendContextFields(ctx, args)...)
}

func appendContextFields(ctx context.Context, args []any) []any {
	lc := FromContext(ctx)
	if lc == nil {
		return args
	}

	ctxArgs := make([]any, 0, 10+len(args))
	if lc.TraceID != 0 {
		ctxArgs = append(ctxArgs, KeyTraceID, lc.TraceID)
	}
	if lc.SpanID != 0 {
		ctxArgs = append(ctxArgs, KeySpanID, lc.SpanID)
	}
	if lc.Service != "" {
		ctxArgs = append(ctxArgs, KeyService, lc.Service)
	}
	if lc.CallerName != "" {
		ctxArgs = append(ctxArgs, KeyCallerName, lc.CallerName)
	}
	if lc.RoutingDelegate != "" {
		ctxArgs = append(ctxArgs, KeyRoutingDelegate, lc.RoutingDelegate)
	}

	return append(ctxArgs, args...)
}

// With returns a new slog.Logger with additional attributes.
func With(args ...any) *slog.Logger { return getLogger().With(args...) }
