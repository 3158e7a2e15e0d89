// Package deepgram implements the transcription backend on Deepgram's
// prerecorded audio API.
package deepgram

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	apperrors "github.com/kbukum/huddle/errors"
	"github.com/kbukum/huddle/httpclient"
	"github.com/kbukum/huddle/provider"
	"github.com/kbukum/huddle/transcription"
)

const (
	// ProviderName is the registered name for the Deepgram backend.
	ProviderName = "deepgram"

	defaultBaseURL = "https://api.deepgram.com"
	defaultTimeout = 60 * time.Second
	listenPath     = "/v1/listen"
)

// Config holds the Deepgram settings.
type Config struct {
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	APIKey  string        `yaml:"api_key" mapstructure:"api_key"`
	Model   string        `yaml:"model" mapstructure:"model"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// Provider sends WAV files to Deepgram.
type Provider struct {
	cfg    Config
	client *httpclient.Client
}

// NewProvider creates a Deepgram backend.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	client, err := httpclient.New(httpclient.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Auth:    httpclient.TokenAuth(cfg.APIKey),
	})
	if err != nil {
		return nil, fmt.Errorf("deepgram: %w", err)
	}
	return &Provider{cfg: cfg, client: client}, nil
}

// Factory returns a registry factory bound to cfg.
func Factory(cfg Config) provider.Factory[transcription.Backend] {
	return func(map[string]any) (transcription.Backend, error) {
		return NewProvider(cfg)
	}
}

func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether an API key is configured.
func (p *Provider) IsAvailable(_ context.Context) bool { return p.cfg.APIKey != "" }

// Execute uploads the audio file and extracts the first alternative of the
// first channel. A response without that path yields empty text.
func (p *Provider) Execute(ctx context.Context, req transcription.Request) (*transcription.Result, error) {
	if p.cfg.APIKey == "" {
		return nil, apperrors.ServiceUnavailable(ProviderName).WithDetail("reason", "api key not configured")
	}

	f, err := os.Open(req.AudioPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NotFound("audio", req.AudioPath)
		}
		return nil, fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	query := map[string]string{"punctuate": "true"}
	if req.Language != "" {
		query["language"] = req.Language
	}
	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}
	if model != "" {
		query["model"] = model
	}

	resp, err := p.client.Do(ctx, httpclient.Request{
		Method:  http.MethodPost,
		Path:    listenPath,
		Query:   query,
		Headers: map[string]string{"Content-Type": "audio/wav"},
		Body:    f,
	})
	if err != nil {
		return nil, transcription.Failed(ProviderName, err)
	}

	var body listenResponse
	if err := resp.JSON(&body); err != nil {
		return nil, apperrors.TranscriptionFailed(ProviderName, fmt.Errorf("decode response: %w", err))
	}
	return body.toResult(req.Language), nil
}

type listenResponse struct {
	Metadata struct {
		Duration float64 `json:"duration"`
	} `json:"metadata"`
	Results struct {
		Channels []struct {
			DetectedLanguage string `json:"detected_language"`
			Alternatives     []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

func (r *listenResponse) toResult(language string) *transcription.Result {
	res := &transcription.Result{Language: language, Duration: r.Metadata.Duration}
	if len(r.Results.Channels) == 0 {
		return res
	}
	ch := r.Results.Channels[0]
	if ch.DetectedLanguage != "" {
		res.Language = ch.DetectedLanguage
	}
	if len(ch.Alternatives) == 0 {
		return res
	}
	res.Text = ch.Alternatives[0].Transcript
	res.Confidence = ch.Alternatives[0].Confidence
	return res
}
