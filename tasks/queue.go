package tasks

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/huddle/component"
	apperrors "github.com/kbukum/huddle/errors"
	"github.com/kbukum/huddle/logger"
	"github.com/kbukum/huddle/observability"
)

// Queue is a bounded FIFO of tasks served by a fixed worker pool.
type Queue struct {
	cfg     Config
	log     *logger.Logger
	metrics *observability.Metrics

	ch      chan *Task
	baseCtx context.Context
	cancel  context.CancelFunc
	workers sync.WaitGroup

	mu       sync.Mutex
	started  bool
	stopped  bool
	inflight map[string]*Task // coalescing key -> task
	tasks    map[string]*Task // id -> task
	finished []string         // ids of finished tasks, oldest first
	active   int              // pending + running
	idle     chan struct{}    // closed while active == 0
}

var (
	_ component.Component   = (*Queue)(nil)
	_ component.Describable = (*Queue)(nil)
)

// Option configures a Queue.
type Option func(*Queue)

// WithMetrics records task outcomes and queue depth.
func WithMetrics(m *observability.Metrics) Option {
	return func(q *Queue) { q.metrics = m }
}

// NewQueue creates a queue. Workers begin on Start; tasks submitted earlier
// wait in the buffer.
func NewQueue(cfg Config, log *logger.Logger, opts ...Option) *Queue {
	cfg.ApplyDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	idle := make(chan struct{})
	close(idle)
	q := &Queue{
		cfg:      cfg,
		log:      log.WithComponent("tasks"),
		ch:       make(chan *Task, cfg.QueueSize),
		baseCtx:  ctx,
		cancel:   cancel,
		inflight: make(map[string]*Task),
		tasks:    make(map[string]*Task),
		idle:     idle,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func coalesceKey(name, key string) string { return name + ":" + key }

// Submit enqueues fn. With a non-empty key, a task of the same name and key
// that is still pending is returned instead of queueing a duplicate; a task
// that has started is never reused. A stopped or full queue returns a task that has
// already failed with SERVICE_UNAVAILABLE.
func (q *Queue) Submit(name, key string, fn Func) *Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	if key != "" {
		if t, ok := q.inflight[coalesceKey(name, key)]; ok && t.Status() == StatusPending {
			q.log.Debug("Task coalesced", map[string]interface{}{
				logger.FieldTaskID: t.ID, "name": name, "key": key,
			})
			return t
		}
	}

	t := newTask(uuid.NewString(), name, key, fn)
	if q.stopped {
		t.finish(apperrors.ServiceUnavailable("task queue").WithDetail("reason", "stopped"))
		return t
	}

	select {
	case q.ch <- t:
	default:
		q.log.Warn("Task queue full, rejecting task", map[string]interface{}{"name": name, "key": key})
		q.metrics.RecordTask(name, "rejected")
		t.finish(apperrors.ServiceUnavailable("task queue").WithDetail("reason", "queue full"))
		return t
	}

	if key != "" {
		q.inflight[coalesceKey(name, key)] = t
	}
	q.tasks[t.ID] = t
	if q.active == 0 {
		q.idle = make(chan struct{})
	}
	q.active++
	q.metrics.SetQueueDepth(len(q.ch))
	return t
}

// Get returns a task that is in flight or among the most recently finished.
func (q *Queue) Get(id string) (*Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	t, ok := q.tasks[id]
	return t, ok
}

// Pending returns the number of tasks waiting for a worker.
func (q *Queue) Pending() int { return len(q.ch) }

// Active returns the number of pending plus running tasks.
func (q *Queue) Active() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.active
}

// Drain waits until no task is pending or running.
func (q *Queue) Drain(ctx context.Context) error {
	for {
		q.mu.Lock()
		if q.active == 0 {
			q.mu.Unlock()
			return nil
		}
		idle := q.idle
		q.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Name implements component.Component.
func (q *Queue) Name() string { return "tasks" }

// Start launches the workers.
func (q *Queue) Start(_ context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return nil
	}
	q.started = true
	for i := 0; i < q.cfg.Workers; i++ {
		q.workers.Add(1)
		go q.worker(i)
	}
	q.log.Info("Task queue started", map[string]interface{}{
		"workers": q.cfg.Workers, "queue_size": q.cfg.QueueSize,
	})
	return nil
}

// Stop closes intake and waits for workers to finish queued tasks. If ctx
// ends first, running tasks are cancelled and Stop returns ctx's error.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return nil
	}
	q.stopped = true
	close(q.ch)
	started := q.started
	q.mu.Unlock()

	if !started {
		// Nobody will run what is buffered.
		for t := range q.ch {
			q.complete(t, apperrors.ServiceUnavailable("task queue").WithDetail("reason", "stopped"))
		}
		q.cancel()
		return nil
	}

	done := make(chan struct{})
	go func() {
		q.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		q.log.Info("Task queue stopped")
		return nil
	case <-ctx.Done():
		q.cancel()
		<-done
		q.log.Warn("Task queue stopped before draining", map[string]interface{}{logger.FieldError: ctx.Err().Error()})
		return ctx.Err()
	}
}

// Health is degraded while the buffer is full and unhealthy once stopped.
func (q *Queue) Health(_ context.Context) component.Health {
	q.mu.Lock()
	stopped := q.stopped
	q.mu.Unlock()

	pending := len(q.ch)
	h := component.Health{
		Name:    q.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d pending, %d active", pending, q.Active()),
	}
	switch {
	case stopped:
		h.Status = component.StatusUnhealthy
		h.Message = "stopped"
	case pending >= q.cfg.QueueSize:
		h.Status = component.StatusDegraded
	}
	return h
}

// Describe returns a one-line summary for the startup banner.
func (q *Queue) Describe() component.Description {
	return component.Description{
		Name:    "Task Queue",
		Type:    "tasks",
		Details: fmt.Sprintf("workers=%d queue=%d", q.cfg.Workers, q.cfg.QueueSize),
	}
}

func (q *Queue) worker(n int) {
	defer q.workers.Done()
	for t := range q.ch {
		q.metrics.SetQueueDepth(len(q.ch))
		q.complete(t, q.run(t))
	}
	q.log.Debug("Worker exited", map[string]interface{}{"worker": n})
}

func (q *Queue) run(t *Task) (err error) {
	ctx := q.baseCtx
	if q.cfg.TaskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.cfg.TaskTimeout)
		defer cancel()
	}
	ctx, span := observability.StartSpan(ctx, "task."+t.Name)
	defer span.End()
	observability.SetSpanAttribute(ctx, "task.id", t.ID)
	observability.SetSpanAttribute(ctx, "task.key", t.Key)

	log := q.log.WithFields(map[string]interface{}{logger.FieldTaskID: t.ID, "name": t.Name, "key": t.Key})

	defer func() {
		if r := recover(); r != nil {
			log.Error("Task panicked", map[string]interface{}{
				"panic": fmt.Sprintf("%v", r),
				"stack": string(debug.Stack()),
			})
			err = apperrors.Internal(fmt.Errorf("task %s panicked: %v", t.Name, r))
		}
		if err != nil {
			observability.SetSpanError(ctx, err)
		}
	}()

	t.markRunning()
	start := time.Now()
	err = t.fn(ctx)
	if err != nil {
		log.Warn("Task failed", map[string]interface{}{
			logger.FieldError:    err.Error(),
			logger.FieldDuration: time.Since(start).Milliseconds(),
		})
		return err
	}
	log.Debug("Task succeeded", map[string]interface{}{logger.FieldDuration: time.Since(start).Milliseconds()})
	return nil
}

func (q *Queue) complete(t *Task, err error) {
	q.mu.Lock()
	if t.Key != "" {
		ck := coalesceKey(t.Name, t.Key)
		if q.inflight[ck] == t {
			delete(q.inflight, ck)
		}
	}
	q.finished = append(q.finished, t.ID)
	for len(q.finished) > q.cfg.Retain {
		delete(q.tasks, q.finished[0])
		q.finished = q.finished[1:]
	}
	q.active--
	if q.active == 0 {
		close(q.idle)
	}
	q.mu.Unlock()

	t.finish(err)
	status := string(StatusSucceeded)
	if err != nil {
		status = string(StatusFailed)
	}
	q.metrics.RecordTask(t.Name, status)
}
