package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/kbukum/huddle/errors"
)

func TestExecute_NilPolicyPassthrough(t *testing.T) {
	got, err := Execute(context.Background(), nil, func() (string, error) { return "x", nil })
	if err != nil || got != "x" {
		t.Errorf("expected passthrough, got %q %v", got, err)
	}
}

func TestExecute_RetriesThenSucceeds(t *testing.T) {
	p := NewPolicy("llm", Config{RetryAttempts: 3, RetryBackoff: time.Millisecond})
	calls := 0
	got, err := Execute(context.Background(), p, func() (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("transient")
		}
		return 7, nil
	})
	if err != nil || got != 7 {
		t.Fatalf("expected 7, got %d %v", got, err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestExecute_OpenCircuitIsServiceUnavailable(t *testing.T) {
	p := NewPolicy("deepgram", Config{BreakerThreshold: 1, BreakerCooldown: time.Hour})
	_, _ = Execute(context.Background(), p, func() (int, error) { return 0, errors.New("down") })

	_, err := Execute(context.Background(), p, func() (int, error) { return 1, nil })
	if !apperrors.IsCode(err, apperrors.ErrCodeServiceUnavailable) {
		t.Fatalf("expected SERVICE_UNAVAILABLE, got %v", err)
	}
	if !errors.Is(err, ErrCircuitOpen) {
		t.Error("expected cause to be ErrCircuitOpen")
	}
	if p.Breaker().State() != StateOpen {
		t.Errorf("expected open breaker, got %s", p.Breaker().State())
	}
}

func TestExecute_DeadlineIsTimeout(t *testing.T) {
	p := NewPolicy("ffmpeg", Config{})
	_, err := Execute(context.Background(), p, func() (int, error) { return 0, context.DeadlineExceeded })
	if !apperrors.IsCode(err, apperrors.ErrCodeTimeout) {
		t.Errorf("expected TIMEOUT, got %v", err)
	}
}

func TestExecute_AppErrorUntouched(t *testing.T) {
	p := NewPolicy("llm", Config{})
	_, err := Execute(context.Background(), p, func() (int, error) {
		return 0, apperrors.InvalidInput("transcript", "empty")
	})
	if !apperrors.IsCode(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}
