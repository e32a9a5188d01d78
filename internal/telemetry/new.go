package telemetry

import (
	"fmt"

	"github.com/lgdlong/ttt/internal/config"
	"github.com/lgdlong/ttt/internal/logger"
)

// New creates the configured telemetry sink.
func New(cfg config.TelemetryConfig, log logger.Logger) (Sink, error) {
	switch cfg.Store {
	case "sqlite":
		return NewSQLiteSink(cfg.Path, log)
	case "file", "":
		return NewFileSink(cfg.Path, log), nil
	default:
		return nil, fmt.Errorf("unknown telemetry store %q", cfg.Store)
	}
}
