// Package logging builds the zap logger shared by the client components.
package logging

import (
	"go.uber.org/zap"

	"trackflow/internal/config"
)

// New builds a logger from cfg. Format "json" selects the production encoder,
// anything else the human-readable development encoder.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	// stdout belongs to command output.
	zapCfg.OutputPaths = []string{"stderr"}

	return zapCfg.Build()
}
