package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/kbukum/huddle/component"
	"github.com/kbukum/huddle/logger"
	"github.com/kbukum/huddle/observability"
)

// Kind is a channel kind. Each kind has its own subscriber sets.
type Kind string

// Channel kinds.
const (
	KindChat    Kind = "chat"
	KindAudio   Kind = "audio"
	KindSummary Kind = "summary"
)

// Subscriber receives broadcast payloads. Send must not block for long; slow
// consumers should buffer or drop.
type Subscriber interface {
	ID() string
	Send(payload []byte) error
}

type key struct {
	kind    Kind
	meeting string
}

// Registry maps (kind, meeting) to the subscribed set.
type Registry struct {
	mu      sync.RWMutex
	subs    map[key]map[string]Subscriber
	log     *logger.Logger
	metrics *observability.Metrics
}

var _ component.Component = (*Registry)(nil)

// Option configures a Registry.
type Option func(*Registry)

// WithMetrics reports subscriber gauges.
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// NewRegistry creates an empty registry.
func NewRegistry(log *logger.Logger, opts ...Option) *Registry {
	r := &Registry{
		subs: make(map[key]map[string]Subscriber),
		log:  log.WithComponent("session"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Subscribe adds sub to the meeting's set for kind. Subscribing the same ID
// twice replaces the earlier entry.
func (r *Registry) Subscribe(kind Kind, meetingID string, sub Subscriber) {
	r.mu.Lock()
	k := key{kind, meetingID}
	set, ok := r.subs[k]
	if !ok {
		set = make(map[string]Subscriber)
		r.subs[k] = set
	}
	_, existed := set[sub.ID()]
	set[sub.ID()] = sub
	r.mu.Unlock()

	if !existed {
		r.metrics.SubscriberAdded(string(kind))
	}
	r.log.Debug("Subscriber added", logger.MeetingFields(meetingID,
		logger.FieldChannel, string(kind), "subscriber", sub.ID()))
}

// Unsubscribe removes sub. Removing the last subscriber deletes the entry.
// It reports whether sub was subscribed.
func (r *Registry) Unsubscribe(kind Kind, meetingID string, sub Subscriber) bool {
	r.mu.Lock()
	k := key{kind, meetingID}
	set, ok := r.subs[k]
	if ok {
		_, ok = set[sub.ID()]
		delete(set, sub.ID())
		if len(set) == 0 {
			delete(r.subs, k)
		}
	}
	r.mu.Unlock()

	if ok {
		r.metrics.SubscriberRemoved(string(kind))
		r.log.Debug("Subscriber removed", logger.MeetingFields(meetingID,
			logger.FieldChannel, string(kind), "subscriber", sub.ID()))
	}
	return ok
}

// Broadcast sends payload to every subscriber of (kind, meeting) except the
// one with except's ID. Send errors are logged and do not stop delivery. It
// returns the number of successful deliveries.
func (r *Registry) Broadcast(kind Kind, meetingID string, payload []byte, except Subscriber) int {
	r.mu.RLock()
	set := r.subs[key{kind, meetingID}]
	targets := make([]Subscriber, 0, len(set))
	for id, sub := range set {
		if except != nil && id == except.ID() {
			continue
		}
		targets = append(targets, sub)
	}
	r.mu.RUnlock()

	delivered := 0
	for _, sub := range targets {
		if err := sub.Send(payload); err != nil {
			r.log.Warn("Broadcast delivery failed", logger.MeetingFields(meetingID,
				logger.FieldChannel, string(kind), "subscriber", sub.ID(), logger.FieldError, err.Error()))
			continue
		}
		delivered++
	}
	return delivered
}

// BroadcastJSON marshals v and broadcasts it.
func (r *Registry) BroadcastJSON(kind Kind, meetingID string, v any, except Subscriber) (int, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("session: marshal %s payload: %w", kind, err)
	}
	return r.Broadcast(kind, meetingID, payload, except), nil
}

// Count returns the number of subscribers of (kind, meeting).
func (r *Registry) Count(kind Kind, meetingID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs[key{kind, meetingID}])
}

// Meetings returns the sorted meeting IDs that have subscribers of kind.
func (r *Registry) Meetings(kind Kind) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for k := range r.subs {
		if k.kind == kind {
			ids = append(ids, k.meeting)
		}
	}
	sort.Strings(ids)
	return ids
}

// Total returns the number of subscriptions across all kinds.
func (r *Registry) Total() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, set := range r.subs {
		n += len(set)
	}
	return n
}

// Name implements component.Component.
func (r *Registry) Name() string { return "session" }

// Start implements component.Component.
func (r *Registry) Start(_ context.Context) error { return nil }

// Stop drops every subscription and closes subscribers that implement
// io.Closer, which ends their connection loops.
func (r *Registry) Stop(_ context.Context) error {
	r.mu.Lock()
	all := r.subs
	r.subs = make(map[key]map[string]Subscriber)
	r.mu.Unlock()

	closed := 0
	for k, set := range all {
		for _, sub := range set {
			r.metrics.SubscriberRemoved(string(k.kind))
			if c, ok := sub.(io.Closer); ok {
				_ = c.Close()
				closed++
			}
		}
	}
	r.log.Info("Session registry stopped", map[string]interface{}{"closed": closed})
	return nil
}

// Health reports the subscription count.
func (r *Registry) Health(_ context.Context) component.Health {
	return component.Health{
		Name:    r.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d subscribers", r.Total()),
	}
}
