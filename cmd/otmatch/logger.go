package main

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/katalvlaran/otmatch/config"
)

// newLogger builds a JSON production logger, or a console logger in
// development mode, tagged with a fresh run id.
func newLogger(lc config.LoggingConfig) (*zap.Logger, string, error) {
	zc := zap.NewProductionConfig()
	if lc.Development {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(lc.Level)
	if err != nil {
		return nil, "", err
	}
	zc.Level = level

	logger, err := zc.Build()
	if err != nil {
		return nil, "", err
	}
	runID := uuid.NewString()

	return logger.With(zap.String("run_id", runID)), runID, nil
}
