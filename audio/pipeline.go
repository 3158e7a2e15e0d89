package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kbukum/huddle/component"
	apperrors "github.com/kbukum/huddle/errors"
	"github.com/kbukum/huddle/logger"
	"github.com/kbukum/huddle/meeting"
	"github.com/kbukum/huddle/observability"
	"github.com/kbukum/huddle/session"
	"github.com/kbukum/huddle/storage"
	"github.com/kbukum/huddle/tasks"
	"github.com/kbukum/huddle/transcription"
)

// TaskTranscribe is the queue name of background transcriptions.
const TaskTranscribe = "transcribe"

// Audio status values pushed to audio subscribers.
const (
	StatusReceived    = "received"
	StatusTranscribed = "transcribed"
	StatusFailed      = "failed"
)

// StatusEvent is pushed on the audio channel as chunks move through the
// pipeline.
type StatusEvent struct {
	Type      string `json:"type"`
	Status    string `json:"status"`
	Bytes     int64  `json:"bytes,omitempty"`
	SegmentID string `json:"segment_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Pipeline runs transcode, transcribe, persist, archive and cleanup for a
// meeting. Runs for the same meeting never overlap.
type Pipeline struct {
	cfg        Config
	acc        *Accumulator
	transcoder *Transcoder
	stt        transcription.Provider
	repo       *meeting.Repository
	queue      *tasks.Queue
	log        *logger.Logger

	archive  storage.Storage
	sessions *session.Registry
	metrics  *observability.Metrics

	running *tasks.KeyedMutex
}

var _ component.Component = (*Pipeline)(nil)

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithArchive uploads each container to s before it is removed.
func WithArchive(s storage.Storage) PipelineOption {
	return func(p *Pipeline) { p.archive = s }
}

// WithSessions pushes audio status events to audio subscribers.
func WithSessions(r *session.Registry) PipelineOption {
	return func(p *Pipeline) { p.sessions = r }
}

// WithMetrics records stage durations and received bytes.
func WithMetrics(m *observability.Metrics) PipelineOption {
	return func(p *Pipeline) { p.metrics = m }
}

// NewPipeline wires the pipeline stages.
func NewPipeline(
	cfg Config,
	acc *Accumulator,
	transcoder *Transcoder,
	stt transcription.Provider,
	repo *meeting.Repository,
	queue *tasks.Queue,
	log *logger.Logger,
	opts ...PipelineOption,
) *Pipeline {
	cfg.ApplyDefaults()
	p := &Pipeline{
		cfg:        cfg,
		acc:        acc,
		transcoder: transcoder,
		stt:        stt,
		repo:       repo,
		queue:      queue,
		log:        log.WithComponent("audio.pipeline"),
		running:    tasks.NewKeyedMutex(),
	}
	for _, opt := range opts {
		opt(p)
	}
	logger.Register("audio", p.log)
	return p
}

// Accumulator returns the chunk accumulator.
func (p *Pipeline) Accumulator() *Accumulator { return p.acc }

// Ingest appends a chunk and, with the per_chunk policy, queues a
// transcription of the meeting. The returned task is nil when nothing was
// queued.
func (p *Pipeline) Ingest(ctx context.Context, meetingID string, chunk []byte) (*tasks.Task, error) {
	if _, err := p.acc.Append(ctx, meetingID, chunk); err != nil {
		p.metrics.RecordError(string(apperrors.FromError(err).Code), "audio")
		return nil, err
	}
	p.metrics.AddAudioBytes(len(chunk))

	size, _ := p.acc.Size(meetingID)
	p.notify(meetingID, StatusEvent{Status: StatusReceived, Bytes: size})

	if p.cfg.TranscribePolicy != PolicyPerChunk {
		return nil, nil
	}
	return p.Submit(meetingID), nil
}

// Submit queues a background Process of the meeting. A transcription of the
// same meeting that has not started yet is reused.
func (p *Pipeline) Submit(meetingID string) *tasks.Task {
	return p.queue.Submit(TaskTranscribe, meetingID, func(ctx context.Context) error {
		_, err := p.Process(ctx, meetingID)
		if apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
			// An earlier run already consumed the recording.
			return nil
		}
		return err
	})
}

// Flush waits for a running transcription of the meeting, then transcribes
// whatever audio the meeting still holds. It reports whether a segment was
// stored.
func (p *Pipeline) Flush(ctx context.Context, meetingID string) (bool, error) {
	unlock := p.running.Lock(meetingID)
	defer unlock()

	if !p.acc.Exists(meetingID) {
		return false, nil
	}
	seg, err := p.process(ctx, meetingID)
	if apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
		return false, nil
	}
	return seg != nil, err
}

// Process transcribes the meeting's container into a new segment. The
// segment is stored even when the transcript is empty. The container is
// claimed first, so chunks arriving meanwhile wait for the next run. Transcode
// and transcription errors are returned and give the audio back to the
// meeting.
func (p *Pipeline) Process(ctx context.Context, meetingID string) (*meeting.Segment, error) {
	unlock := p.running.Lock(meetingID)
	defer unlock()
	return p.process(ctx, meetingID)
}

func (p *Pipeline) process(ctx context.Context, meetingID string) (*meeting.Segment, error) {
	ctx, span := observability.StartSpan(ctx, "audio.process")
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrMeetingID, meetingID)
	log := p.log.WithFields(logger.MeetingFields(meetingID))

	claimed, err := p.acc.Claim(meetingID)
	if err != nil {
		p.fail(meetingID, err)
		return nil, err
	}
	seg, err := p.transcribe(ctx, meetingID, claimed)
	if err != nil {
		p.fail(meetingID, err)
		if rerr := p.acc.Release(meetingID, claimed); rerr != nil {
			log.Error("Recording could not be returned", logger.Fields("path", claimed, logger.FieldError, rerr.Error()))
		}
		return nil, err
	}

	p.archiveContainer(ctx, meetingID, claimed)
	removeQuietly(claimed)

	log.Info("Segment transcribed", logger.Fields("segment_id", seg.ID, "chars", len(seg.Content)))
	p.notify(meetingID, StatusEvent{Status: StatusTranscribed, SegmentID: seg.ID})
	return seg, nil
}

// transcribe converts, transcribes and stores one claimed container.
func (p *Pipeline) transcribe(ctx context.Context, meetingID, container string) (*meeting.Segment, error) {
	log := p.log.WithFields(logger.MeetingFields(meetingID))

	wav, err := p.stage(ctx, "transcode", func(ctx context.Context) (string, error) {
		return p.transcoder.Transcode(ctx, meetingID, container)
	})
	if err != nil {
		return nil, err
	}
	defer removeQuietly(wav)

	text, err := p.stage(ctx, "transcribe", func(ctx context.Context) (string, error) {
		ctx, span := observability.StartSpan(ctx, observability.SpanTranscribe)
		defer span.End()
		observability.SetSpanAttribute(ctx, observability.AttrProvider, p.stt.Name())
		res, err := p.stt.Transcribe(ctx, transcription.Request{AudioPath: wav})
		if err != nil {
			observability.SetSpanError(ctx, err)
			return "", err
		}
		return strings.TrimSpace(res.Text), nil
	})
	if err != nil {
		log.Warn("Transcription failed", logger.ErrorFields("transcribe", err))
		return nil, err
	}

	seg := &meeting.Segment{MeetingID: meetingID, Content: text}
	if _, err := p.stage(ctx, "persist", func(ctx context.Context) (string, error) {
		ctx, span := observability.StartSpan(ctx, observability.SpanPersist)
		defer span.End()
		return "", p.repo.AddSegment(ctx, seg)
	}); err != nil {
		return nil, err
	}
	if text == "" {
		log.Info("Transcription returned no speech")
	}
	return seg, nil
}

func (p *Pipeline) stage(ctx context.Context, name string, fn func(context.Context) (string, error)) (string, error) {
	start := time.Now()
	out, err := fn(ctx)
	status := "success"
	if err != nil {
		status = "error"
		p.metrics.RecordError(string(apperrors.FromError(err).Code), "audio")
	}
	p.metrics.RecordOperation("audio", name, status, time.Since(start))
	return out, err
}

// archiveContainer uploads the container before cleanup. Failures are logged
// and do not fail the run.
func (p *Pipeline) archiveContainer(ctx context.Context, meetingID, container string) {
	if p.archive == nil {
		return
	}
	key := fmt.Sprintf("recordings/%s/%s.webm", meetingID, time.Now().UTC().Format("20060102T150405.000Z"))
	_, err := p.stage(ctx, "archive", func(ctx context.Context) (string, error) {
		ctx, span := observability.StartSpan(ctx, observability.SpanArchive)
		defer span.End()
		if err := storage.UploadFile(ctx, p.archive, key, container); err != nil {
			observability.SetSpanError(ctx, err)
			return "", err
		}
		return key, nil
	})
	if err != nil {
		p.log.Warn("Recording archive failed", logger.MeetingFields(meetingID, logger.FieldError, err.Error()))
		return
	}
	p.log.Debug("Recording archived", logger.MeetingFields(meetingID, "key", key))
}

func (p *Pipeline) fail(meetingID string, err error) {
	if apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
		return
	}
	p.notify(meetingID, StatusEvent{Status: StatusFailed, Error: string(apperrors.FromError(err).Code)})
}

func (p *Pipeline) notify(meetingID string, ev StatusEvent) {
	if p.sessions == nil {
		return
	}
	ev.Type = "audio_status"
	if _, err := p.sessions.BroadcastJSON(session.KindAudio, meetingID, ev, nil); err != nil {
		p.log.Warn("Audio status broadcast failed", logger.ErrorFields("notify", err))
	}
}

// Name implements component.Component.
func (p *Pipeline) Name() string { return "audio" }

// Start checks that the working directories can be created.
func (p *Pipeline) Start(_ context.Context) error {
	for _, dir := range []string{p.cfg.RecordingsDir, p.cfg.TempDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("audio: create %s: %w", dir, err)
		}
	}
	p.log.Info("Audio pipeline ready", logger.Fields(
		"policy", p.cfg.TranscribePolicy,
		"provider", p.stt.Name(),
		"archive", p.archive != nil,
	))
	return nil
}

// Stop is a no-op; queued runs are drained by the task queue.
func (p *Pipeline) Stop(_ context.Context) error { return nil }

// Health reports the transcription provider's availability.
func (p *Pipeline) Health(ctx context.Context) component.Health {
	h := component.Health{
		Name:    p.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d transcodes running", p.transcoder.InUse()),
	}
	if !p.stt.IsAvailable(ctx) {
		h.Status = component.StatusDegraded
		h.Message = fmt.Sprintf("transcription provider %s unavailable", p.stt.Name())
	}
	return h
}

func removeQuietly(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Get("audio").Debug("Remove failed", logger.Fields("path", path, logger.FieldError, err.Error()))
	}
}
