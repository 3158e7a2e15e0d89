// Package openai implements the llm backend with the go-openai SDK.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	apperrors "github.com/kbukum/huddle/errors"
	"github.com/kbukum/huddle/llm"
	"github.com/kbukum/huddle/provider"
)

// ProviderName is the registered name for the OpenAI backend.
const ProviderName = "openai"

// Config holds the OpenAI credentials and endpoint.
type Config struct {
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	// BaseURL overrides the API base, e.g. for a compatible gateway.
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// Provider calls the chat completions endpoint.
type Provider struct {
	client *goopenai.Client
	hasKey bool
}

// NewProvider creates an OpenAI backend.
func NewProvider(cfg Config) *Provider {
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}
	return &Provider{client: goopenai.NewClientWithConfig(clientCfg), hasKey: cfg.APIKey != ""}
}

// Factory returns a registry factory bound to cfg.
func Factory(cfg Config) provider.Factory[llm.Backend] {
	return func(map[string]any) (llm.Backend, error) {
		return NewProvider(cfg), nil
	}
}

func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether an API key is configured.
func (p *Provider) IsAvailable(_ context.Context) bool { return p.hasKey }

// Execute sends one non-streaming chat completion.
func (p *Provider) Execute(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if !p.hasKey {
		return nil, apperrors.ServiceUnavailable(ProviderName).WithDetail("reason", "api key not configured")
	}

	messages := make([]goopenai.ChatCompletionMessage, 0, len(req.Messages)+1)
	for _, m := range req.AllMessages() {
		messages = append(messages, goopenai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := p.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
	})
	if err != nil {
		return nil, mapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, apperrors.ServiceUnavailable(ProviderName).WithDetail("reason", "no choices returned")
	}

	return &llm.CompletionResponse{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
		Usage: llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// mapError turns SDK errors into AppErrors. Rate limits and 5xx stay
// retryable; other API errors do not.
func mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperrors.Timeout(ProviderName).WithCause(err)
	}

	appErr := apperrors.ServiceUnavailable(ProviderName).WithCause(err)
	var apiErr *goopenai.APIError
	var reqErr *goopenai.RequestError
	switch {
	case errors.As(err, &apiErr):
		appErr.Retryable = apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
		appErr.WithDetail("status", apiErr.HTTPStatusCode).WithDetail("message", apiErr.Message)
	case errors.As(err, &reqErr):
		appErr.Retryable = reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
		appErr.WithDetail("status", reqErr.HTTPStatusCode)
	default:
		appErr.WithDetail("reason", fmt.Sprintf("request failed: %v", err))
	}
	return appErr
}
