package llm

import (
	"context"
	"time"

	"github.com/lgdlong/ttt/internal/config"
	"github.com/lgdlong/ttt/internal/logger"
	"github.com/lgdlong/ttt/internal/telemetry"
)

// FromConfig builds the registry from configuration. A provider is
// configured when at least one API key was found for it in the
// environment.
func FromConfig(ctx context.Context, cfg *config.Config, sink telemetry.Sink, log logger.Logger) (*Registry, error) {
	retry := RetryPolicy{
		MaxRetries: cfg.Retry.MaxRetries,
		BaseDelay:  time.Duration(cfg.Retry.BaseDelayMS) * time.Millisecond,
		JitterMax:  time.Duration(cfg.Retry.JitterMaxMS) * time.Millisecond,
	}

	providers := make(map[string]Provider)

	if keys := cfg.Providers.Gemini.APIKeys; len(keys) > 0 {
		p, err := newProvider(&geminiBackend{modelName: cfg.Providers.Gemini.Model}, keys, retry, sink, log)
		if err != nil {
			return nil, err
		}
		providers["gemini"] = p
		log.Info(ctx, "Loaded Gemini provider with %d key(s), model: %s", len(keys), cfg.Providers.Gemini.Model)
	}

	if keys := cfg.Providers.OpenAI.APIKeys; len(keys) > 0 {
		b := &openaiBackend{
			modelName: cfg.Providers.OpenAI.Model,
			baseURL:   cfg.Providers.OpenAI.BaseURL,
			logger:    log,
		}
		p, err := newProvider(b, keys, retry, sink, log)
		if err != nil {
			return nil, err
		}
		providers["openai"] = p
		if b.baseURL != "" {
			log.Info(ctx, "Loaded OpenAI provider with %d key(s), model: %s, base_url: %s", len(keys), b.modelName, b.baseURL)
		} else {
			log.Info(ctx, "Loaded OpenAI provider with %d key(s), model: %s", len(keys), b.modelName)
		}
	}

	reg, err := NewRegistry(providers, cfg.LLM.DefaultProvider, log)
	if err != nil {
		return nil, err
	}

	log.Info(ctx, "Default provider: %s", reg.DefaultName())
	return reg, nil
}
