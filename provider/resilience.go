package provider

import (
	"context"

	"github.com/kbukum/huddle/resilience"
)

// WithResilience runs each Execute call through policy. A nil policy is a
// passthrough.
func WithResilience[I, O any](policy *resilience.Policy) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		if policy == nil {
			return inner
		}
		return &resilientRR[I, O]{inner: inner, policy: policy}
	}
}

type resilientRR[I, O any] struct {
	inner  RequestResponse[I, O]
	policy *resilience.Policy
}

func (r *resilientRR[I, O]) Name() string { return r.inner.Name() }

// IsAvailable is false while the circuit is open.
func (r *resilientRR[I, O]) IsAvailable(ctx context.Context) bool {
	if cb := r.policy.Breaker(); cb != nil && cb.State() == resilience.StateOpen {
		return false
	}
	return r.inner.IsAvailable(ctx)
}

func (r *resilientRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	return resilience.Execute(ctx, r.policy, func() (O, error) {
		return r.inner.Execute(ctx, input)
	})
}
