// Package telemetry implements the structured logging facade and periodic
// heartbeat capture (spec.md §4.5 "Heartbeat (optional telemetry)"). Logger
// is grounded on the teacher's internal/logio.Logger wrap/unwrap shape,
// generalized from a bespoke buffered printf sink to a zap-backed one since
// spec.md's ambient stack calls for structured (leveled, field-carrying)
// logging rather than line-oriented text.
package telemetry

import (
	"io"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a *zap.Logger behind the same Wrap/Unwrap seam the teacher's
// logio.Logger exposes, so the CLI can redirect output through a pipe (e.g.
// a file tee) for the duration of a single run and restore it afterward.
type Logger struct {
	mu       sync.Mutex
	zl       *zap.Logger
	sink     zapcore.WriteSyncer
	fallback zapcore.WriteSyncer
	exitCode int
}

// New constructs a Logger writing JSON-encoded records to w at level
// (one of "debug", "info", "warn", "error", or "none" to discard every
// record; unrecognized values, "test" among them, fall back to "info").
func New(w io.Writer, level string) *Logger {
	sink := zapcore.AddSync(w)
	lg := &Logger{sink: sink}
	lg.rebuild(parseLevel(level))
	return lg
}

func parseLevel(level string) zapcore.Level {
	if level == "none" {
		return zapcore.FatalLevel + 1
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func (l *Logger) rebuild(lvl zapcore.Level) {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), l.sink, lvl)
	l.zl = zap.New(core)
}

// Wrap routes subsequent log output through pipe, remembering the prior
// sink so Unwrap can restore it (teacher's Logger.Wrap/Unwrap pattern).
func (l *Logger) Wrap(pipe func(zapcore.WriteSyncer) zapcore.WriteSyncer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fallback == nil {
		l.fallback = l.sink
	}
	l.sink = pipe(l.sink)
	l.rebuild(l.zl.Level())
}

// Unwrap restores the sink Wrap replaced, a no-op if nothing is wrapped.
func (l *Logger) Unwrap() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fallback == nil {
		return
	}
	l.sink = l.fallback
	l.fallback = nil
	l.rebuild(l.zl.Level())
}

// Infof logs at info level.
func (l *Logger) Infof(mess string, args ...interface{}) { l.leveled("info", mess, args...) }

// Debugf logs at debug level.
func (l *Logger) Debugf(mess string, args ...interface{}) { l.leveled("debug", mess, args...) }

// Warnf logs at warn level.
func (l *Logger) Warnf(mess string, args ...interface{}) { l.leveled("warn", mess, args...) }

// Errorf logs at error level and marks ExitCode non-zero, mirroring the
// teacher's Errorf/ExitCode contract.
func (l *Logger) Errorf(mess string, args ...interface{}) {
	l.mu.Lock()
	l.exitCode = 1
	l.mu.Unlock()
	l.leveled("error", mess, args...)
}

// ErrorIf logs err through Errorf if non-nil.
func (l *Logger) ErrorIf(err error) {
	if err != nil {
		l.Errorf("%v", err)
	}
}

func (l *Logger) leveled(level, mess string, args ...interface{}) {
	sugar := l.zl.Sugar()
	switch level {
	case "debug":
		sugar.Debugf(mess, args...)
	case "warn":
		sugar.Warnf(mess, args...)
	case "error":
		sugar.Errorf(mess, args...)
	default:
		sugar.Infof(mess, args...)
	}
}

// Leveledf returns a printf-style function logging at level, the shape
// internal/vm.WithLogf wants (teacher's Logger.Leveledf).
func (l *Logger) Leveledf(level string) func(mess string, args ...interface{}) {
	return func(mess string, args ...interface{}) { l.leveled(level, mess, args...) }
}

// ExitCode reports whether any Errorf call has occurred, for the CLI's
// "exit non-zero if any error was logged" convention.
func (l *Logger) ExitCode() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.exitCode
}

// Sync flushes the underlying zap core.
func (l *Logger) Sync() error { return l.zl.Sync() }
