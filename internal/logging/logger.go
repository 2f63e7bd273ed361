// Package logging adapts zap to the runtime.Logger interface used across the module.
package logging

import (
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a runtime.Logger backed by zap.
type Logger struct {
	z      *zap.Logger
	fields map[string]interface{}
}

var _ runtime.Logger = (*Logger)(nil)

// Wrap adapts an existing zap logger.
func Wrap(z *zap.Logger) *Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &Logger{z: z, fields: map[string]interface{}{}}
}

// NewFile returns a JSON logger appending to path at the given level
// ("debug", "info", "warn", "error"). An empty path discards all output.
func NewFile(path, level string) (*Logger, error) {
	if path == "" {
		return Wrap(zap.NewNop()), nil
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	z, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return Wrap(z), nil
}

func (l *Logger) Debug(format string, v ...interface{}) {
	l.z.Debug(fmt.Sprintf(format, v...))
}

func (l *Logger) Info(format string, v ...interface{}) {
	l.z.Info(fmt.Sprintf(format, v...))
}

func (l *Logger) Warn(format string, v ...interface{}) {
	l.z.Warn(fmt.Sprintf(format, v...))
}

func (l *Logger) Error(format string, v ...interface{}) {
	l.z.Error(fmt.Sprintf(format, v...))
}

func (l *Logger) WithField(key string, v interface{}) runtime.Logger {
	return l.WithFields(map[string]interface{}{key: v})
}

func (l *Logger) WithFields(fields map[string]interface{}) runtime.Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	zfields := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		merged[k] = v
		if err, ok := v.(error); ok {
			zfields = append(zfields, zap.NamedError(k, err))
			continue
		}
		zfields = append(zfields, zap.Any(k, v))
	}
	return &Logger{z: l.z.With(zfields...), fields: merged}
}

func (l *Logger) Fields() map[string]interface{} {
	return l.fields
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.z.Sync()
}
