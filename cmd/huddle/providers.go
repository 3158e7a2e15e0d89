package main

import (
	"fmt"

	"github.com/kbukum/huddle/llm"
	"github.com/kbukum/huddle/llm/openai"
	"github.com/kbukum/huddle/logger"
	"github.com/kbukum/huddle/observability"
	"github.com/kbukum/huddle/provider"
	"github.com/kbukum/huddle/resilience"
	"github.com/kbukum/huddle/transcription"
	"github.com/kbukum/huddle/transcription/deepgram"
	"github.com/kbukum/huddle/transcription/whisper"
)

// newTranscriber builds the configured speech-to-text backend behind the
// provider middleware chain.
func newTranscriber(cfg *Config, log *logger.Logger, metrics *observability.Metrics) (*transcription.Transcriber, error) {
	reg := transcription.NewRegistry()
	reg.RegisterFactory(deepgram.ProviderName, deepgram.Factory(cfg.Deepgram))
	reg.RegisterFactory(whisper.ProviderName, whisper.Factory(cfg.Whisper))

	backend, err := reg.Create(cfg.Transcription.Provider, nil)
	if err != nil {
		return nil, fmt.Errorf("transcription provider: %w", err)
	}
	policy := resilience.NewPolicy("transcription", cfg.Transcription.Resilience)
	return transcription.New(backend, cfg.Transcription,
		provider.WithTracing[transcription.Request, *transcription.Result](serviceName),
		provider.WithLogging[transcription.Request, *transcription.Result](log),
		provider.WithMetrics[transcription.Request, *transcription.Result](metrics),
		provider.WithResilience[transcription.Request, *transcription.Result](policy),
	), nil
}

// newLLM builds the completion backend used by the insight extractor.
func newLLM(cfg *Config, log *logger.Logger, metrics *observability.Metrics) (*llm.Client, error) {
	reg := llm.NewRegistry()
	reg.RegisterFactory(openai.ProviderName, openai.Factory(cfg.OpenAI))

	backend, err := reg.Create(cfg.LLM.Provider, nil)
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	policy := resilience.NewPolicy("llm", cfg.LLM.Resilience)
	return llm.New(backend, cfg.LLM,
		provider.WithTracing[llm.CompletionRequest, *llm.CompletionResponse](serviceName),
		provider.WithLogging[llm.CompletionRequest, *llm.CompletionResponse](log),
		provider.WithMetrics[llm.CompletionRequest, *llm.CompletionResponse](metrics),
		provider.WithResilience[llm.CompletionRequest, *llm.CompletionResponse](policy),
	), nil
}
