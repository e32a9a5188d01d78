package cli

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"

	"github.com/lgdlong/ttt/internal/config"
	"github.com/lgdlong/ttt/internal/llm"
	"github.com/lgdlong/ttt/internal/logger"
	"github.com/lgdlong/ttt/internal/telemetry"
)

// app holds the process-scoped state every command starts from.
type app struct {
	cfg  *config.Config
	log  logger.Logger
	sink telemetry.Sink
}

// bootstrap loads .env, the config file, and constructs the logger and
// telemetry sink. Secrets only ever come from the environment.
func bootstrap() (*app, error) {
	// A missing .env is fine; the variables may already be exported.
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg.Logging.Level)

	sink, err := telemetry.New(cfg.Telemetry, log)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	return &app{cfg: cfg, log: log, sink: sink}, nil
}

// registry builds the provider registry. Fails when no API keys are
// configured; that aborts startup before any file is touched.
func (a *app) registry(ctx context.Context) (*llm.Registry, error) {
	return llm.FromConfig(ctx, a.cfg, a.sink, a.log)
}
