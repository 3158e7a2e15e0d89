package resilience

import (
	"context"
	"errors"
	"time"
)

// ErrBulkheadFull is returned when no slot frees up in time.
var ErrBulkheadFull = errors.New("bulkhead is full")

// Bulkhead limits how many calls run concurrently.
type Bulkhead struct {
	name    string
	sem     chan struct{}
	maxWait time.Duration
}

// NewBulkhead creates a bulkhead with maxConcurrent slots. Callers wait up
// to maxWait for a slot; zero means wait until the context is done.
func NewBulkhead(name string, maxConcurrent int, maxWait time.Duration) *Bulkhead {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Bulkhead{name: name, sem: make(chan struct{}, maxConcurrent), maxWait: maxWait}
}

// Execute runs fn while holding a slot.
func (b *Bulkhead) Execute(ctx context.Context, fn func() error) error {
	if err := b.acquire(ctx); err != nil {
		return err
	}
	defer func() { <-b.sem }()
	return fn()
}

func (b *Bulkhead) acquire(ctx context.Context) error {
	select {
	case b.sem <- struct{}{}:
		return nil
	default:
	}

	var timeout <-chan time.Time
	if b.maxWait > 0 {
		timer := time.NewTimer(b.maxWait)
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case b.sem <- struct{}{}:
		return nil
	case <-timeout:
		return ErrBulkheadFull
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InUse returns the number of occupied slots.
func (b *Bulkhead) InUse() int { return len(b.sem) }

// Capacity returns the number of slots.
func (b *Bulkhead) Capacity() int { return cap(b.sem) }
