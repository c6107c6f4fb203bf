// Package logger constructs the zap sugared loggers used across fxkv.
// Components never build their own logger; they receive one through their
// Config struct so that tests and embedders can substitute their own.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production-configured sugared logger named after the given
// service. Timestamps are ISO8601 and output goes to stdout.
func New(service string) *zap.SugaredLogger {
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{"stdout"}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.DisableStacktrace = true
	config.InitialFields = map[string]any{"service": service}

	log, err := config.Build(zap.WithCaller(true))
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return log.Sugar()
}

// NewNop returns a logger that discards everything. Handy default for
// components constructed without an explicit logger, and for tests.
func NewNop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
