// Package logger provides support for initializing the log system.
package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"
)

// Logger represents a logger for logging information.
type Logger struct {
	handler   slog.Handler
	traceIDFn TraceIDFn
}

// New constructs a new log for application use.
func New(w io.Writer, minLevel Level, serviceName string, traceIDFn TraceIDFn) *Logger {
	return newLogger(w, minLevel, serviceName, traceIDFn, Events{})
}

// NewWithEvents constructs a new log for application use with events.
func NewWithEvents(w io.Writer, minLevel Level, serviceName string, traceIDFn TraceIDFn, events Events) *Logger {
	return newLogger(w, minLevel, serviceName, traceIDFn, events)
}

// NewWithMetadata constructs a new log for application use with a set of
// metadata attributes attached to every record.
func NewWithMetadata(w io.Writer, minLevel Level, serviceName string, traceIDFn TraceIDFn, events Events, metadata map[string]string) *Logger {
	lg := newLogger(w, minLevel, serviceName, traceIDFn, events)
	if len(metadata) == 0 {
		return lg
	}

	attrs := make([]slog.Attr, 0, len(metadata))
	for k, v := range metadata {
		attrs = append(attrs, slog.String(k, v))
	}
	lg.handler = lg.handler.WithAttrs(attrs)

	return lg
}

// NewWithHandler returns a new log for application use with the specified
// slog handler.
func NewWithHandler(h slog.Handler) *Logger {
	return &Logger{handler: h}
}

// NewStdLogger returns a standard library Logger that wraps the slog Logger.
func NewStdLogger(logger *Logger, level Level) *log.Logger {
	return slog.NewLogLogger(logger.handler, slog.Level(level))
}

// Noop returns a logger that discards everything. Intended for tests.
func Noop() *Logger {
	return &Logger{handler: slog.NewJSONHandler(io.Discard, nil)}
}

// With returns a derived logger with the given attributes attached to every
// record it produces.
func (lg *Logger) With(args ...any) *Logger {
	return &Logger{
		handler:   slog.New(lg.handler).With(args...).Handler(),
		traceIDFn: lg.traceIDFn,
	}
}

// Debug logs at LevelDebug with the given context.
func (lg *Logger) Debug(ctx context.Context, msg string, args ...any) {
	lg.write(ctx, LevelDebug, 3, msg, args...)
}

// Debugc logs the information at the specified call stack position.
func (lg *Logger) Debugc(ctx context.Context, caller int, msg string, args ...any) {
	lg.write(ctx, LevelDebug, caller, msg, args...)
}

// Info logs at LevelInfo with the given context.
func (lg *Logger) Info(ctx context.Context, msg string, args ...any) {
	lg.write(ctx, LevelInfo, 3, msg, args...)
}

// Infoc logs the information at the specified call stack position.
func (lg *Logger) Infoc(ctx context.Context, caller int, msg string, args ...any) {
	lg.write(ctx, LevelInfo, caller, msg, args...)
}

// Warn logs at LevelWarn with the given context.
func (lg *Logger) Warn(ctx context.Context, msg string, args ...any) {
	lg.write(ctx, LevelWarn, 3, msg, args...)
}

// Warnc logs the information at the specified call stack position.
func (lg *Logger) Warnc(ctx context.Context, caller int, msg string, args ...any) {
	lg.write(ctx, LevelWarn, caller, msg, args...)
}

// Error logs at LevelError with the given context.
func (lg *Logger) Error(ctx context.Context, msg string, args ...any) {
	lg.write(ctx, LevelError, 3, msg, args...)
}

// Errorc logs the information at the specified call stack position.
func (lg *Logger) Errorc(ctx context.Context, caller int, msg string, args ...any) {
	lg.write(ctx, LevelError, caller, msg, args...)
}

func (lg *Logger) write(ctx context.Context, level Level, caller int, msg string, args ...any) {
	slogLevel := slog.Level(level)

	if !lg.handler.Enabled(ctx, slogLevel) {
		return
	}

	var pcs [1]uintptr
	runtime.Callers(caller, pcs[:])

	r := slog.NewRecord(time.Now(), slogLevel, msg, pcs[0])

	if lg.traceIDFn != nil {
		args = append(args, "trace_id", lg.traceIDFn(ctx))
	}
	r.Add(args...)

	_ = lg.handler.Handle(ctx, r)
}

func newLogger(w io.Writer, minLevel Level, serviceName string, traceIDFn TraceIDFn, events Events) *Logger {
	// Convert the file name to just name.ext when this key/value will be logged.
	f := func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.SourceKey {
			if source, ok := a.Value.Any().(*slog.Source); ok {
				v := fmt.Sprintf("%s:%d", filepath.Base(source.File), source.Line)
				return slog.Attr{Key: "file", Value: slog.StringValue(v)}
			}
		}
		return a
	}

	handler := slog.Handler(slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource:   true,
		Level:       slog.Level(minLevel),
		ReplaceAttr: f,
	}))

	// If events are configured, wrap the handler so they fire before the
	// record is written.
	if events.Debug != nil || events.Info != nil || events.Warn != nil || events.Error != nil {
		handler = newLogHandler(handler, events)
	}

	attrs := []slog.Attr{
		{Key: "service", Value: slog.StringValue(serviceName)},
	}
	handler = handler.WithAttrs(attrs)

	return &Logger{handler: handler, traceIDFn: traceIDFn}
}
