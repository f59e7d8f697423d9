package log

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
)

// Logger wraps a slog.Logger with the module-tagged, level-filtered call
// shape used throughout this codebase: every call site identifies the
// component logging (a struct with a String method, or any value) rather
// than relying on package-qualified logger variables.
type Logger struct {
	level atomic.Int32
	sl    *slog.Logger
}

var defaultLogger = newLogger()

func newLogger() *Logger {
	l := &Logger{sl: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.Level(LevelTrace)}))}
	l.level.Store(int32(LevelInfo))
	return l
}

// Default returns the process-wide Logger used by the package-level
// Trace/Debug/Info/Warn/Error/Fatal functions.
func Default() *Logger { return defaultLogger }

// SetLevel changes the minimum level the default Logger emits.
func SetLevel(level Level) { defaultLogger.level.Store(int32(level)) }

// Level returns the Logger's current minimum emitted level.
func (l *Logger) Level() Level { return Level(l.level.Load()) }

func moduleName(module any) string {
	if s, ok := module.(fmt.Stringer); ok {
		return s.String()
	}
	if module == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T", module)
}

func (l *Logger) log(level Level, module any, msg string, kv ...any) {
	if level < l.Level() {
		return
	}
	args := make([]any, 0, len(kv)+2)
	args = append(args, "module", moduleName(module))
	args = append(args, kv...)
	l.sl.Log(context.Background(), slog.Level(level), msg, args...)
}

func (l *Logger) Trace(module any, msg string, kv ...any) { l.log(LevelTrace, module, msg, kv...) }
func (l *Logger) Debug(module any, msg string, kv ...any) { l.log(LevelDebug, module, msg, kv...) }
func (l *Logger) Info(module any, msg string, kv ...any)  { l.log(LevelInfo, module, msg, kv...) }
func (l *Logger) Warn(module any, msg string, kv ...any)  { l.log(LevelWarn, module, msg, kv...) }
func (l *Logger) Error(module any, msg string, kv ...any) { l.log(LevelError, module, msg, kv...) }

// Fatal logs at LevelFatal and terminates the process.
func (l *Logger) Fatal(module any, msg string, kv ...any) {
	l.log(LevelFatal, module, msg, kv...)
	os.Exit(1)
}

func Trace(module any, msg string, kv ...any) { defaultLogger.Trace(module, msg, kv...) }
func Debug(module any, msg string, kv ...any) { defaultLogger.Debug(module, msg, kv...) }
func Info(module any, msg string, kv ...any)  { defaultLogger.Info(module, msg, kv...) }
func Warn(module any, msg string, kv ...any)  { defaultLogger.Warn(module, msg, kv...) }
func Error(module any, msg string, kv ...any) { defaultLogger.Error(module, msg, kv...) }
func Fatal(module any, msg string, kv ...any) { defaultLogger.Fatal(module, msg, kv...) }
