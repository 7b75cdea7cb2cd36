package app

import (
	"github.com/meannnn/MindM/internal/config"
	"github.com/meannnn/MindM/internal/pipeline"
	"github.com/meannnn/MindM/internal/platform/llm"
	"github.com/meannnn/MindM/internal/platform/logger"
)

type Clients struct {
	LLM *llm.Client
}

// Generator returns the LLM client as a pipeline.Generator, or a nil interface
// when no client is configured.
func (c Clients) Generator() pipeline.Generator {
	if c.LLM == nil {
		return nil
	}
	return c.LLM
}

// wireClients builds the provider client. A missing API key leaves generation
// disabled instead of failing startup, so extraction and rendering still work.
func wireClients(log *logger.Logger, cfg *config.Config) Clients {
	log.Info("Wiring clients...")
	client, err := llm.New(log, llm.Config{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		TopP:        cfg.LLM.TopP,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout.Duration,
		Stream:      cfg.LLM.Stream,
		RateLimit:   cfg.LLM.RateLimit,
		RateBurst:   cfg.LLM.RateBurst,
	})
	if err != nil {
		log.Warn("Generation client disabled", "error", err)
		return Clients{}
	}
	return Clients{LLM: client}
}
