package logger

import (
	"fmt"
	"strings"

	"github.com/coopfoods/ajomart/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the structured zap logger used across the service.
func New(cfg config.Config) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.EncoderConfig.TimeKey = "ts"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.OutputPaths = []string{"stdout"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}

	level := strings.TrimSpace(getLevel(cfg))
	if err := zapCfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}

	logger = logger.With(
		zap.String("service", cfg.AppName),
		zap.String("env", cfg.Environment),
		zap.String("version", cfg.AppVersion),
	)
	zap.ReplaceGlobals(logger)

	return logger, nil
}

func getLevel(cfg config.Config) string {
	if cfg.Environment == "development" {
		return "debug"
	}
	return "info"
}
