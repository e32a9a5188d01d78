package pipeline

import (
	"context"

	"github.com/lgdlong/ttt/internal/config"
	"github.com/lgdlong/ttt/internal/llm"
	"github.com/lgdlong/ttt/internal/logger"
)

type implPipeline struct {
	cfg          *config.Config
	registry     *llm.Registry
	logger       logger.Logger
	systemPrompt string
}

// New creates a Pipeline. The system prompt is loaded once, from
// cfg.Paths.Prompt when set, otherwise the built-in fallback.
func New(ctx context.Context, cfg *config.Config, registry *llm.Registry, log logger.Logger) Pipeline {
	return &implPipeline{
		cfg:          cfg,
		registry:     registry,
		logger:       log,
		systemPrompt: loadSystemPrompt(ctx, cfg.Paths.Prompt, log),
	}
}
