package llm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kbukum/huddle/errors"
	"github.com/kbukum/huddle/llm"
	"github.com/kbukum/huddle/provider"
)

func TestClient_CompleteTextAppliesDefaults(t *testing.T) {
	var seen llm.CompletionRequest
	backend := provider.Func("fake", func(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
		seen = req
		return &llm.CompletionResponse{Content: "done"}, nil
	})

	c := llm.New(backend, llm.Config{})
	text, err := c.CompleteText(context.Background(), "sys", "user text")
	require.NoError(t, err)
	assert.Equal(t, "done", text)
	assert.Equal(t, "gpt-4.1-nano", seen.Model)
	assert.Equal(t, 1000, seen.MaxTokens)
	assert.InDelta(t, 0.3, seen.Temperature, 1e-9)

	msgs := seen.AllMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, llm.Message{Role: llm.RoleSystem, Content: "sys"}, msgs[0])
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "user text"}, msgs[1])
}

func TestClient_NilResponse(t *testing.T) {
	backend := provider.Func("fake", func(context.Context, llm.CompletionRequest) (*llm.CompletionResponse, error) {
		return nil, nil
	})
	_, err := llm.New(backend, llm.Config{}).Complete(context.Background(), llm.CompletionRequest{})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeServiceUnavailable))
}

func TestAllMessages_NoSystemPrompt(t *testing.T) {
	req := llm.CompletionRequest{Messages: []llm.Message{{Role: llm.RoleUser, Content: "x"}}}
	assert.Len(t, req.AllMessages(), 1)
}

func TestConfig_Validate(t *testing.T) {
	cfg := llm.Config{Temperature: 3}
	assert.Error(t, cfg.Validate())
	cfg = llm.Config{}
	cfg.ApplyDefaults()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "openai", cfg.Provider)
}
