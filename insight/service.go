package insight

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/kbukum/huddle/errors"
	"github.com/kbukum/huddle/logger"
	"github.com/kbukum/huddle/meeting"
	"github.com/kbukum/huddle/observability"
	"github.com/kbukum/huddle/session"
	"github.com/kbukum/huddle/tasks"
)

// Queue names of insight generation. Finalize runs apart from plain
// generation so an end-of-meeting flush is never merged away.
const (
	TaskGenerate = "insight"
	TaskFinalize = "insight.finalize"
)

// Cache holds recently read insights. redis.TypedStore[meeting.Insight]
// satisfies it.
type Cache interface {
	Load(ctx context.Context, key string) (*meeting.Insight, error)
	Save(ctx context.Context, key string, val *meeting.Insight, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Flusher transcribes audio a meeting still holds before its insight is
// generated. It reports whether a new segment was stored.
type Flusher interface {
	Flush(ctx context.Context, meetingID string) (bool, error)
}

// SummaryEvent is pushed to summary subscribers once an insight exists.
type SummaryEvent struct {
	Type             string `json:"type"`
	Summary          string `json:"summary"`
	ActionItems      string `json:"action_items"`
	Decisions        string `json:"decisions"`
	SummaryAvailable bool   `json:"summary_available"`
}

// NewSummaryEvent builds the push payload for in.
func NewSummaryEvent(in *meeting.Insight) SummaryEvent {
	return SummaryEvent{
		Type:             "summary",
		Summary:          in.Summary,
		ActionItems:      in.ActionItems,
		Decisions:        in.Decisions,
		SummaryAvailable: true,
	}
}

// View is the payload of the view endpoint. It is either a flat insight or a
// message.
type View struct {
	Summary          string `json:"summary,omitempty"`
	ActionItems      string `json:"action_items,omitempty"`
	Decisions        string `json:"decisions,omitempty"`
	Message          string `json:"message,omitempty"`
	SummaryAvailable bool   `json:"summary_available"`
	TaskID           string `json:"task_id,omitempty"`
}

// View messages.
const (
	MessageNoSummary         = "This meeting does not have any summary"
	MessageGenerationStarted = "Summary generation started. Please wait..."
)

// Service stores and generates meeting insights.
type Service struct {
	repo      *meeting.Repository
	extractor *Extractor
	queue     *tasks.Queue
	log       *logger.Logger

	cache    Cache
	cacheTTL time.Duration
	sessions *session.Registry
	flusher  Flusher

	running *tasks.KeyedMutex
}

// Option configures a Service.
type Option func(*Service)

// WithCache reads and writes insights through c with the given ttl.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithSessions pushes new insights to summary subscribers.
func WithSessions(r *session.Registry) Option {
	return func(s *Service) { s.sessions = r }
}

// WithFlusher transcribes leftover audio before generation.
func WithFlusher(f Flusher) Option {
	return func(s *Service) { s.flusher = f }
}

// NewService creates an insight service.
func NewService(repo *meeting.Repository, extractor *Extractor, queue *tasks.Queue, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		extractor: extractor,
		queue:     queue,
		log:       log.WithComponent("insight"),
		running:   tasks.NewKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the meeting's insight, from the cache when possible.
func (s *Service) Get(ctx context.Context, meetingID string) (*meeting.Insight, error) {
	if s.cache != nil {
		cached, err := s.cache.Load(ctx, meetingID)
		if err != nil {
			s.log.Warn("Insight cache read failed", logger.MeetingFields(meetingID, logger.FieldError, err.Error()))
		} else if cached != nil {
			return cached, nil
		}
	}
	in, err := s.repo.GetInsight(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	s.store(ctx, in)
	return in, nil
}

// Generate returns the existing insight, or queues generation and returns
// its task.
func (s *Service) Generate(ctx context.Context, meetingID string) (*meeting.Insight, *tasks.Task, error) {
	in, err := s.Get(ctx, meetingID)
	if err == nil {
		return in, nil, nil
	}
	if !apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
		return nil, nil, err
	}
	ok, err := s.repo.MeetingExists(ctx, meetingID)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, apperrors.NotFound("meeting", meetingID)
	}
	return nil, s.submit(meetingID), nil
}

// Finalize queues generation for a meeting that just ended, transcribing any
// remaining audio first. When that audio yields a segment, an insight made
// earlier is replaced.
func (s *Service) Finalize(meetingID string) *tasks.Task {
	return s.queue.Submit(TaskFinalize, meetingID, func(ctx context.Context) error {
		return s.finalize(ctx, meetingID)
	})
}

func (s *Service) submit(meetingID string) *tasks.Task {
	return s.queue.Submit(TaskGenerate, meetingID, func(ctx context.Context) error {
		_, err := s.Run(ctx, meetingID)
		return err
	})
}

func (s *Service) finalize(ctx context.Context, meetingID string) error {
	flushed := false
	if s.flusher != nil {
		ok, err := s.flusher.Flush(ctx, meetingID)
		if err != nil {
			s.log.Warn("Final transcription failed, generating from existing transcript",
				logger.MeetingFields(meetingID, logger.FieldError, err.Error()))
		}
		flushed = ok
	}

	unlock := s.running.Lock(meetingID)
	defer unlock()
	if flushed {
		exists, err := s.repo.InsightExists(ctx, meetingID)
		if err != nil {
			return err
		}
		if exists {
			s.log.Info("Transcript grew after generation, regenerating", logger.MeetingFields(meetingID))
			if err := s.Delete(ctx, meetingID); err != nil {
				return err
			}
		}
	}
	_, err := s.run(ctx, meetingID)
	return err
}

// Run generates, stores and pushes the meeting's insight. It returns nil
// without error when there is no transcript text or an insight already
// exists. Runs for the same meeting never overlap.
func (s *Service) Run(ctx context.Context, meetingID string) (*meeting.Insight, error) {
	unlock := s.running.Lock(meetingID)
	defer unlock()
	return s.run(ctx, meetingID)
}

func (s *Service) run(ctx context.Context, meetingID string) (*meeting.Insight, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanInsight)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrMeetingID, meetingID)
	log := s.log.WithFields(logger.MeetingFields(meetingID))

	exists, err := s.repo.InsightExists(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if exists {
		log.Debug("Insight already exists, skipping generation")
		return nil, nil
	}

	segments, err := s.repo.ListSegments(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	transcript := joinSegments(segments)
	if strings.TrimSpace(transcript) == "" {
		log.Warn("No transcript text, skipping insight generation", logger.Fields("segments", len(segments)))
		return nil, nil
	}

	result := s.extractor.Extract(ctx, transcript)
	observability.SetSpanAttribute(ctx, observability.AttrDegraded, result.Degraded)
	if result.Degraded {
		degraded := apperrors.GenerationDegraded(meetingID, "insight built from fallback text")
		log.Warn(degraded.Message, logger.Fields("code", string(degraded.Code)))
	}

	in := &meeting.Insight{
		MeetingID:   meetingID,
		Summary:     result.Summary,
		ActionItems: result.ActionItems,
		Decisions:   result.Decisions,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.CreateInsight(ctx, in); err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeAlreadyExists) {
			log.Info("Concurrent generation stored an insight first")
			return nil, nil
		}
		observability.SetSpanError(ctx, err)
		return nil, err
	}
	s.store(ctx, in)
	s.push(ctx, in)

	log.Info("Insight generated", logger.Fields("degraded", result.Degraded))
	return in, nil
}

// View returns the insight, or a message saying there is nothing to show or
// that generation has been queued.
func (s *Service) View(ctx context.Context, meetingID string) (*View, error) {
	in, err := s.Get(ctx, meetingID)
	if err == nil {
		return &View{
			Summary:          in.Summary,
			ActionItems:      in.ActionItems,
			Decisions:        in.Decisions,
			SummaryAvailable: true,
		}, nil
	}
	if !apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
		return nil, err
	}

	has, err := s.repo.HasTranscript(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if !has {
		return &View{Message: MessageNoSummary}, nil
	}
	task := s.submit(meetingID)
	return &View{Message: MessageGenerationStarted, TaskID: task.ID}, nil
}

// Delete removes the meeting's insight and its cache entry.
func (s *Service) Delete(ctx context.Context, meetingID string) error {
	if err := s.repo.DeleteInsight(ctx, meetingID); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, meetingID); err != nil {
			s.log.Warn("Insight cache evict failed", logger.MeetingFields(meetingID, logger.FieldError, err.Error()))
		}
	}
	s.log.Info("Insight deleted", logger.MeetingFields(meetingID))
	return nil
}

func (s *Service) store(ctx context.Context, in *meeting.Insight) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Save(ctx, in.MeetingID, in, s.cacheTTL); err != nil {
		s.log.Warn("Insight cache write failed", logger.MeetingFields(in.MeetingID, logger.FieldError, err.Error()))
	}
}

func (s *Service) push(_ context.Context, in *meeting.Insight) {
	if s.sessions == nil {
		return
	}
	n, err := s.sessions.BroadcastJSON(session.KindSummary, in.MeetingID, NewSummaryEvent(in), nil)
	if err != nil {
		s.log.Error("Summary broadcast failed", logger.MeetingFields(in.MeetingID, logger.FieldError, err.Error()))
		return
	}
	s.log.Debug("Summary pushed", logger.MeetingFields(in.MeetingID, "subscribers", n))
}

func joinSegments(segments []meeting.Segment) string {
	parts := make([]string, len(segments))
	for i, seg := range segments {
		parts[i] = seg.Content
	}
	return strings.Join(parts, "\n")
}
