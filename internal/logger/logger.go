// Package logger builds the process-wide zap logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON logger writing one object per line to w. Timestamps are rendered
// in loc. An unknown level falls back to info.
func New(w io.Writer, level string, loc *time.Location) *zap.Logger {
	if loc == nil {
		loc = time.UTC
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "ts"
	encoderConfig.MessageKey = "msg"
	encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	encoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.In(loc).Format(time.RFC3339Nano))
	}
	encoderConfig.EncodeDuration = zapcore.MillisDurationEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(w),
		ParseLevel(level),
	)
	return zap.New(core)
}

// NewStdout is New writing to stdout with the caller annotated.
func NewStdout(level string, loc *time.Location) *zap.Logger {
	return New(os.Stdout, level, loc).WithOptions(zap.AddCaller())
}

// ParseLevel maps a level name onto a zap level.
func ParseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return zapcore.InfoLevel
	}
	return l
}
