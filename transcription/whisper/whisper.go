// Package whisper implements the transcription backend on a self-hosted
// faster-whisper HTTP sidecar.
package whisper

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	apperrors "github.com/kbukum/huddle/errors"
	"github.com/kbukum/huddle/httpclient"
	"github.com/kbukum/huddle/provider"
	"github.com/kbukum/huddle/transcription"
)

const (
	// ProviderName is the registered name for the Whisper backend.
	ProviderName = "whisper"

	defaultURL     = "http://localhost:8387"
	defaultModel   = "base"
	defaultTimeout = 120 * time.Second
)

// Config holds the sidecar settings.
type Config struct {
	URL     string        `yaml:"url" mapstructure:"url"`
	Model   string        `yaml:"model" mapstructure:"model"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// Provider posts audio to the sidecar's /transcribe endpoint.
type Provider struct {
	cfg    Config
	client *httpclient.Client
}

// NewProvider creates a Whisper backend.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.URL == "" {
		cfg.URL = defaultURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	client, err := httpclient.New(httpclient.Config{BaseURL: cfg.URL, Timeout: cfg.Timeout})
	if err != nil {
		return nil, fmt.Errorf("whisper: %w", err)
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

// IsAvailable checks the sidecar's health endpoint.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	resp, err := p.client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: "/health"})
	return err == nil && resp.StatusCode == http.StatusOK
}

// Execute uploads the audio as multipart form data.
func (p *Provider) Execute(ctx context.Context, req transcription.Request) (*transcription.Result, error) {
	f, err := os.Open(req.AudioPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NotFound("audio", req.AudioPath)
		}
		return nil, fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	model := p.cfg.Model
	if req.Model != "" {
		model = req.Model
	}
	fields := map[string]string{"model": model}
	if req.Language != "" {
		fields["language"] = req.Language
	}

	resp, err := p.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/transcribe",
		Body: &httpclient.MultipartBody{
			Fields: fields,
			Files: []httpclient.FileField{{
				FieldName:   "audio",
				FileName:    filepath.Base(req.AudioPath),
				ContentType: "audio/wav",
				Reader:      f,
			}},
		},
	})
	if err != nil {
		return nil, transcription.Failed(ProviderName, err)
	}

	var body whisperResponse
	if err := resp.JSON(&body); err != nil {
		return nil, apperrors.TranscriptionFailed(ProviderName, fmt.Errorf("decode response: %w", err))
	}
	return body.toResult(), nil
}

type whisperResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Text  string  `json:"text"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"segments"`
}

func (r *whisperResponse) toResult() *transcription.Result {
	res := &transcription.Result{Text: r.Text, Language: r.Language}
	for _, seg := range r.Segments {
		res.Segments = append(res.Segments, transcription.Segment{Start: seg.Start, End: seg.End, Text: seg.Text})
	}
	if n := len(r.Segments); n > 0 {
		res.Duration = r.Segments[n-1].End
	}
	return res
}
