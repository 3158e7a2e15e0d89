package resilience

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/kbukum/huddle/errors"
)

// Config is the resilience block accepted by every provider section of the
// service config. Zero values disable the corresponding guard.
type Config struct {
	RetryAttempts    int           `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	RetryBackoff     time.Duration `yaml:"retry_backoff" mapstructure:"retry_backoff"`
	BreakerThreshold int           `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerCooldown  time.Duration `yaml:"breaker_cooldown" mapstructure:"breaker_cooldown"`
	MaxConcurrent    int           `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	MaxWait          time.Duration `yaml:"max_wait" mapstructure:"max_wait"`
}

// Policy holds the guards built from a Config. A nil Policy is a passthrough.
type Policy struct {
	name     string
	retry    *RetryConfig
	breaker  *CircuitBreaker
	bulkhead *Bulkhead
}

// NewPolicy builds the guards enabled in cfg.
func NewPolicy(name string, cfg Config) *Policy {
	p := &Policy{name: name}
	if cfg.RetryAttempts > 1 {
		p.retry = &RetryConfig{MaxAttempts: cfg.RetryAttempts, InitialBackoff: cfg.RetryBackoff}
	}
	if cfg.BreakerThreshold > 0 {
		p.breaker = NewCircuitBreaker(BreakerConfig{Name: name, Threshold: cfg.BreakerThreshold, Cooldown: cfg.BreakerCooldown})
	}
	if cfg.MaxConcurrent > 0 {
		p.bulkhead = NewBulkhead(name, cfg.MaxConcurrent, cfg.MaxWait)
	}
	return p
}

// Breaker exposes the policy's circuit breaker, or nil when disabled.
func (p *Policy) Breaker() *CircuitBreaker {
	if p == nil {
		return nil
	}
	return p.breaker
}

// Execute runs fn through bulkhead, circuit breaker and retry, outermost
// first. Guard rejections come back as AppErrors.
func Execute[T any](ctx context.Context, p *Policy, fn func() (T, error)) (T, error) {
	if p == nil {
		return fn()
	}

	call := fn
	if p.retry != nil {
		cfg := *p.retry
		call = func() (T, error) { return Retry(ctx, cfg, fn) }
	}
	if p.breaker != nil {
		inner := call
		call = func() (T, error) {
			var result T
			err := p.breaker.Execute(func() error {
				var callErr error
				result, callErr = inner()
				return callErr
			})
			return result, err
		}
	}
	if p.bulkhead != nil {
		inner := call
		call = func() (T, error) {
			var result T
			err := p.bulkhead.Execute(ctx, func() error {
				var callErr error
				result, callErr = inner()
				return callErr
			})
			return result, err
		}
	}

	result, err := call()
	return result, p.wrap(err)
}

func (p *Policy) wrap(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrCircuitOpen):
		return apperrors.ServiceUnavailable(p.name).WithCause(err)
	case errors.Is(err, ErrBulkheadFull):
		return apperrors.ServiceUnavailable(p.name).WithCause(err).WithDetail("reason", "concurrency limit reached")
	case errors.Is(err, context.DeadlineExceeded):
		if _, ok := apperrors.AsAppError(err); !ok {
			return apperrors.Timeout(p.name).WithCause(err)
		}
	}
	return err
}
