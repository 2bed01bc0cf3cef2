package logger

import (
	"context"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process-wide sugared logger. APP_LOG_LEVEL (debug, info,
// warn, error) overrides the default info level.
func New(lc fx.Lifecycle) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.TimeKey = "time"
	if raw := os.Getenv("APP_LOG_LEVEL"); raw != "" {
		if lvl, err := zapcore.ParseLevel(raw); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(lvl)
		}
	}

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			// Sync on stdout returns EINVAL on linux; nothing to act on.
			_ = l.Sync()
			return nil
		},
	})
	return l.Sugar(), nil
}

var Module = fx.Options(
	fx.Provide(New),
)
