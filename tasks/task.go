package tasks

import (
	"context"
	"sync"
	"time"
)

// Status is a task's lifecycle state.
type Status string

// Task states. Pending and running are in flight; the others are final.
const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Func is the body of a task.
type Func func(ctx context.Context) error

// Task is a handle on submitted work.
type Task struct {
	ID        string
	Name      string
	Key       string
	CreatedAt time.Time

	fn   Func
	done chan struct{}

	mu         sync.Mutex
	status     Status
	err        error
	startedAt  time.Time
	finishedAt time.Time
}

func newTask(id, name, key string, fn Func) *Task {
	return &Task{
		ID:        id,
		Name:      name,
		Key:       key,
		CreatedAt: time.Now().UTC(),
		fn:        fn,
		done:      make(chan struct{}),
		status:    StatusPending,
	}
}

// Status returns the current state.
func (t *Task) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Err returns the failure, or nil while in flight or on success.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Done is closed when the task reaches a final state.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the task finishes or ctx ends. It returns the task's
// error, or ctx's error if ctx ended first.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Task) markRunning() {
	t.mu.Lock()
	t.status = StatusRunning
	t.startedAt = time.Now().UTC()
	t.mu.Unlock()
}

func (t *Task) finish(err error) {
	t.mu.Lock()
	if err != nil {
		t.status = StatusFailed
		t.err = err
	} else {
		t.status = StatusSucceeded
	}
	t.finishedAt = time.Now().UTC()
	t.mu.Unlock()
	close(t.done)
}

// Info is a JSON view of a task.
type Info struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Key        string     `json:"key"`
	Status     Status     `json:"status"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Info snapshots the task.
func (t *Task) Info() Info {
	t.mu.Lock()
	defer t.mu.Unlock()
	info := Info{
		ID:        t.ID,
		Name:      t.Name,
		Key:       t.Key,
		Status:    t.status,
		CreatedAt: t.CreatedAt,
	}
	if t.err != nil {
		info.Error = t.err.Error()
	}
	if !t.startedAt.IsZero() {
		s := t.startedAt
		info.StartedAt = &s
	}
	if !t.finishedAt.IsZero() {
		f := t.finishedAt
		info.FinishedAt = &f
	}
	return info
}
