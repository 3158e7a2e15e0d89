package llm

import (
	"context"
	"fmt"

	apperrors "github.com/kbukum/huddle/errors"
	"github.com/kbukum/huddle/provider"
	"github.com/kbukum/huddle/resilience"
)

// Backend is implemented by chat-completion backends.
type Backend = provider.RequestResponse[CompletionRequest, *CompletionResponse]

// Provider is what the insight extractor depends on.
type Provider interface {
	provider.Provider
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// Config holds completion defaults.
type Config struct {
	Provider    string            `yaml:"provider" mapstructure:"provider"`
	Model       string            `yaml:"model" mapstructure:"model"`
	MaxTokens   int               `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64           `yaml:"temperature" mapstructure:"temperature"`
	Resilience  resilience.Config `yaml:"resilience" mapstructure:"resilience"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = "openai"
	}
	if c.Model == "" {
		c.Model = "gpt-4.1-nano"
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 1000
	}
	if c.Temperature == 0 {
		c.Temperature = 0.3
	}
}

// Validate checks numeric bounds.
func (c *Config) Validate() error {
	if c.MaxTokens < 0 {
		return fmt.Errorf("llm: max_tokens must not be negative")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("llm: temperature must be between 0 and 2, got %v", c.Temperature)
	}
	return nil
}

// NewRegistry creates a registry for LLM backends.
func NewRegistry() *provider.Registry[Backend] {
	return provider.NewRegistry[Backend]()
}

// Client applies defaults and middleware around a Backend.
type Client struct {
	backend Backend
	cfg     Config
}

// New wraps backend with middlewares, outermost first.
func New(backend Backend, cfg Config, middlewares ...provider.Middleware[CompletionRequest, *CompletionResponse]) *Client {
	cfg.ApplyDefaults()
	return &Client{backend: provider.Chain(middlewares...)(backend), cfg: cfg}
}

func (c *Client) Name() string                         { return c.backend.Name() }
func (c *Client) IsAvailable(ctx context.Context) bool { return c.backend.IsAvailable(ctx) }

// Complete fills in model, max tokens and temperature and calls the backend.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if req.Model == "" {
		req.Model = c.cfg.Model
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = c.cfg.MaxTokens
	}
	if req.Temperature == 0 {
		req.Temperature = c.cfg.Temperature
	}
	resp, err := c.backend.Execute(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, apperrors.ServiceUnavailable(c.backend.Name()).WithDetail("reason", "empty response")
	}
	return resp, nil
}

// CompleteText sends a system and a user prompt and returns the text.
func (c *Client) CompleteText(ctx context.Context, system, user string) (string, error) {
	resp, err := c.Complete(ctx, CompletionRequest{
		SystemPrompt: system,
		Messages:     []Message{{Role: RoleUser, Content: user}},
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
