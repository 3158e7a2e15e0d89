package transcription_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kbukum/huddle/errors"
	"github.com/kbukum/huddle/provider"
	"github.com/kbukum/huddle/transcription"
)

func TestTranscriber_AppliesDefaults(t *testing.T) {
	var seen transcription.Request
	backend := provider.Func("fake", func(_ context.Context, req transcription.Request) (*transcription.Result, error) {
		seen = req
		return &transcription.Result{Text: "hi"}, nil
	})

	tr := transcription.New(backend, transcription.Config{Model: "nova-2"})
	res, err := tr.Transcribe(context.Background(), transcription.Request{AudioPath: "a.wav"})
	require.NoError(t, err)
	assert.Equal(t, "en", seen.Language)
	assert.Equal(t, "nova-2", seen.Model)
	assert.Equal(t, "en", res.Language)
	assert.Equal(t, "fake", tr.Name())
}

func TestTranscriber_WrapsPlainErrors(t *testing.T) {
	backend := provider.Func("fake", func(context.Context, transcription.Request) (*transcription.Result, error) {
		return nil, errors.New("socket closed")
	})
	_, err := transcription.New(backend, transcription.Config{}).Transcribe(context.Background(), transcription.Request{AudioPath: "a.wav"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeTranscriptionFailed))
}

func TestTranscriber_KeepsAppErrors(t *testing.T) {
	backend := provider.Func("fake", func(context.Context, transcription.Request) (*transcription.Result, error) {
		return nil, apperrors.ServiceUnavailable("fake")
	})
	_, err := transcription.New(backend, transcription.Config{}).Transcribe(context.Background(), transcription.Request{AudioPath: "a.wav"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeServiceUnavailable))
}

func TestTranscriber_RequiresPath(t *testing.T) {
	backend := provider.Func("fake", func(context.Context, transcription.Request) (*transcription.Result, error) {
		t.Fatal("backend must not be called")
		return nil, nil
	})
	_, err := transcription.New(backend, transcription.Config{}).Transcribe(context.Background(), transcription.Request{})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidInput))
}

func TestConfig_Validate(t *testing.T) {
	cfg := transcription.Config{}
	cfg.ApplyDefaults()
	assert.Equal(t, "deepgram", cfg.Provider)
	assert.NoError(t, cfg.Validate())

	cfg.Provider = "sphinx"
	assert.Error(t, cfg.Validate())
}

func TestRegistry(t *testing.T) {
	reg := transcription.NewRegistry()
	reg.RegisterFactory("fake", func(map[string]any) (transcription.Backend, error) {
		return provider.Func("fake", func(context.Context, transcription.Request) (*transcription.Result, error) {
			return &transcription.Result{}, nil
		}), nil
	})
	b, err := reg.Create("fake", nil)
	require.NoError(t, err)
	assert.Equal(t, "fake", b.Name())
}
