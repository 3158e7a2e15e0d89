package deepgram

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kbukum/huddle/errors"
	"github.com/kbukum/huddle/transcription"
)

func writeWAV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "m1_all.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFFfake"), 0o644))
	return path
}

func TestExecute_ExtractsFirstAlternative(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/listen", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("punctuate"))
		assert.Equal(t, "en", r.URL.Query().Get("language"))
		assert.Equal(t, "nova-2", r.URL.Query().Get("model"))
		assert.Equal(t, "Token key", r.Header.Get("Authorization"))
		assert.Equal(t, "audio/wav", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "RIFFfake", string(body))

		_, _ = w.Write([]byte(`{"metadata":{"duration":3.5},"results":{"channels":[{"alternatives":[{"transcript":"hello team","confidence":0.92}]}]}}`))
	}))
	defer srv.Close()

	p, err := NewProvider(Config{BaseURL: srv.URL, APIKey: "key", Model: "nova-2"})
	require.NoError(t, err)

	res, err := p.Execute(context.Background(), transcription.Request{AudioPath: writeWAV(t), Language: "en"})
	require.NoError(t, err)
	assert.Equal(t, "hello team", res.Text)
	assert.InDelta(t, 0.92, res.Confidence, 1e-9)
	assert.InDelta(t, 3.5, res.Duration, 1e-9)
	assert.Equal(t, "en", res.Language)
}

func TestExecute_MissingResultPathIsEmptyText(t *testing.T) {
	for name, payload := range map[string]string{
		"no channels":     `{"results":{"channels":[]}}`,
		"no alternatives": `{"results":{"channels":[{"alternatives":[]}]}}`,
		"no results":      `{}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(payload))
			}))
			defer srv.Close()

			p, err := NewProvider(Config{BaseURL: srv.URL, APIKey: "key"})
			require.NoError(t, err)
			res, err := p.Execute(context.Background(), transcription.Request{AudioPath: writeWAV(t)})
			require.NoError(t, err)
			assert.Empty(t, res.Text)
		})
	}
}

func TestExecute_ServerErrorIsRetryableFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p, _ := NewProvider(Config{BaseURL: srv.URL, APIKey: "key"})
	_, err := p.Execute(context.Background(), transcription.Request{AudioPath: writeWAV(t)})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeTranscriptionFailed, appErr.Code)
	assert.True(t, appErr.Retryable)
}

func TestExecute_AuthErrorNotRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p, _ := NewProvider(Config{BaseURL: srv.URL, APIKey: "bad"})
	_, err := p.Execute(context.Background(), transcription.Request{AudioPath: writeWAV(t)})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.False(t, appErr.Retryable)
}

func TestExecute_MissingFile(t *testing.T) {
	p, _ := NewProvider(Config{APIKey: "key"})
	_, err := p.Execute(context.Background(), transcription.Request{AudioPath: "/nope/missing.wav"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
}

func TestExecute_NoAPIKey(t *testing.T) {
	p, _ := NewProvider(Config{})
	assert.False(t, p.IsAvailable(context.Background()))
	_, err := p.Execute(context.Background(), transcription.Request{AudioPath: writeWAV(t)})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeServiceUnavailable))
}
