package config

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger. Development environments get a
// console encoder; everything else logs JSON.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Env == "development" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	if cfg.LogEncoding != "" {
		zc.Encoding = cfg.LogEncoding
	}
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err == nil {
		zc.Level = zap.NewAtomicLevelAt(level)
	}
	logger, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return logger.Named(cfg.AppName), nil
}
