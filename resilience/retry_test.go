package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/kbukum/huddle/errors"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	calls := 0
	result, err := Retry(context.Background(), fastRetry(3), func() (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result != "ok" {
		t.Errorf("expected 'ok', got %q", result)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetry_SucceedsAfterRetry(t *testing.T) {
	calls := 0
	result, err := Retry(context.Background(), fastRetry(3), func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("flaky")
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result != 42 || calls != 3 {
		t.Errorf("expected 42 after 3 calls, got %d after %d", result, calls)
	}
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastRetry(2), func() (int, error) {
		calls++
		return 0, errors.New("down")
	})
	if err == nil || err.Error() != "down" {
		t.Errorf("expected last error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestRetry_SkipsNonRetryableAppError(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastRetry(5), func() (int, error) {
		calls++
		return 0, apperrors.InvalidInput("file", "empty")
	})
	if !apperrors.IsCode(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("expected invalid input error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetry_RetriesRetryableAppError(t *testing.T) {
	calls := 0
	_, _ = Retry(context.Background(), fastRetry(3), func() (int, error) {
		calls++
		return 0, apperrors.TranscriptionFailed("deepgram", errors.New("502"))
	})
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetry_RespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := RetryConfig{MaxAttempts: 10, InitialBackoff: time.Second}
	calls := 0

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := Retry(ctx, cfg, func() (int, error) {
		calls++
		return 0, errors.New("down")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call before cancellation, got %d", calls)
	}
}

func TestRetry_OnRetryCallback(t *testing.T) {
	var attempts []int
	cfg := fastRetry(3)
	cfg.OnRetry = func(attempt int, _ error, _ time.Duration) { attempts = append(attempts, attempt) }

	_, _ = Retry(context.Background(), cfg, func() (int, error) { return 0, errors.New("x") })
	if len(attempts) != 2 || attempts[0] != 1 || attempts[1] != 2 {
		t.Errorf("expected callbacks for attempts [1 2], got %v", attempts)
	}
}

func TestRetryConfig_BackoffCapped(t *testing.T) {
	cfg := RetryConfig{InitialBackoff: 100 * time.Millisecond, MaxBackoff: 300 * time.Millisecond, Multiplier: 2}.withDefaults()
	if b := cfg.backoff(1); b < 90*time.Millisecond || b > 110*time.Millisecond {
		t.Errorf("attempt 1 backoff out of range: %v", b)
	}
	if b := cfg.backoff(10); b != 300*time.Millisecond {
		t.Errorf("expected capped backoff, got %v", b)
	}
}

func TestDefaultRetryIf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"plain error", errors.New("boom"), true},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"not found", apperrors.NotFound("meeting", "m1"), false},
		{"database", apperrors.DatabaseError(errors.New("locked")), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultRetryIf(tt.err); got != tt.want {
				t.Errorf("DefaultRetryIf(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
