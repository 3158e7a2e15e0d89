package transcription

import (
	"context"
	"fmt"

	apperrors "github.com/kbukum/huddle/errors"
	"github.com/kbukum/huddle/httpclient"
	"github.com/kbukum/huddle/provider"
	"github.com/kbukum/huddle/resilience"
)

// Backend is implemented by speech-to-text backends.
type Backend = provider.RequestResponse[Request, *Result]

// Provider is what the audio pipeline depends on.
type Provider interface {
	provider.Provider
	Transcribe(ctx context.Context, req Request) (*Result, error)
}

// Config selects and tunes the backend.
type Config struct {
	// Provider is the registered backend name: "deepgram" or "whisper".
	Provider   string            `yaml:"provider" mapstructure:"provider"`
	Language   string            `yaml:"language" mapstructure:"language"`
	Model      string            `yaml:"model" mapstructure:"model"`
	Resilience resilience.Config `yaml:"resilience" mapstructure:"resilience"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = "deepgram"
	}
	if c.Language == "" {
		c.Language = "en"
	}
}

// Validate checks the provider name.
func (c *Config) Validate() error {
	switch c.Provider {
	case "deepgram", "whisper":
		return nil
	default:
		return fmt.Errorf("transcription: unknown provider %q", c.Provider)
	}
}

// NewRegistry creates a registry for transcription backends.
func NewRegistry() *provider.Registry[Backend] {
	return provider.NewRegistry[Backend]()
}

// Transcriber applies defaults and middleware around a Backend.
type Transcriber struct {
	backend  Backend
	language string
	model    string
}

// New wraps backend with middlewares, outermost first.
func New(backend Backend, cfg Config, middlewares ...provider.Middleware[Request, *Result]) *Transcriber {
	cfg.ApplyDefaults()
	return &Transcriber{
		backend:  provider.Chain(middlewares...)(backend),
		language: cfg.Language,
		model:    cfg.Model,
	}
}

func (t *Transcriber) Name() string                         { return t.backend.Name() }
func (t *Transcriber) IsAvailable(ctx context.Context) bool { return t.backend.IsAvailable(ctx) }

// Transcribe fills in the default language and model and calls the backend.
// Failures surface as TRANSCRIPTION_FAILED unless they already carry a code.
func (t *Transcriber) Transcribe(ctx context.Context, req Request) (*Result, error) {
	if req.AudioPath == "" {
		return nil, apperrors.InvalidInput("audio_path", "audio path is required")
	}
	if req.Language == "" {
		req.Language = t.language
	}
	if req.Model == "" {
		req.Model = t.model
	}

	res, err := t.backend.Execute(ctx, req)
	if err != nil {
		if _, ok := apperrors.AsAppError(err); ok {
			return nil, err
		}
		return nil, Failed(t.backend.Name(), err)
	}
	if res == nil {
		res = &Result{}
	}
	if res.Language == "" {
		res.Language = req.Language
	}
	return res, nil
}

// Failed wraps a backend error as TRANSCRIPTION_FAILED. Only transport
// failures, timeouts, 429 and 5xx responses stay retryable.
func Failed(providerName string, err error) *apperrors.AppError {
	appErr := apperrors.TranscriptionFailed(providerName, err)
	appErr.Retryable = httpclient.IsRetryable(err)
	return appErr
}
