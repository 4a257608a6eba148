package logger

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey string

const requestIDKey ctxKey = "requestID"

var sugar = zap.NewNop().Sugar()

// Run builds the package-level logger with the given level (`debug`, `info`,
// `warn`, `error`). Unknown levels fall back to `info`.
func Run(level string) *zap.SugaredLogger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	l, err := cfg.Build()
	if err != nil {
		// keep the nop logger, the client must not crash because of logging
		return sugar
	}
	sugar = l.Sugar()
	return sugar
}

// Log returns the logger enriched with the request id from ctx if present.
func Log(ctx context.Context) *zap.SugaredLogger {
	if id, ok := ctx.Value(requestIDKey).(string); ok && id != "" {
		return sugar.With("requestID", id)
	}
	return sugar
}

// SetRequestID puts a fresh correlation id into ctx so interleaved probes
// and credential attempts can be told apart in the logs.
func SetRequestID(ctx context.Context) context.Context {
	return context.WithValue(ctx, requestIDKey, uuid.NewString())
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
