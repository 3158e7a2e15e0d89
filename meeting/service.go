package meeting

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/kbukum/huddle/errors"
	"github.com/kbukum/huddle/logger"
	"github.com/kbukum/huddle/tasks"
	"github.com/kbukum/huddle/validation"
)

const maxCreateAttempts = 5

// Finalizer runs post-meeting work once a meeting ends.
type Finalizer interface {
	Finalize(meetingID string) *tasks.Task
}

// Service implements the meeting lifecycle.
type Service struct {
	repo      *Repository
	cfg       Config
	log       *logger.Logger
	finalizer Finalizer
	newCode   func(n int) (string, error)
	now       func() time.Time
}

// NewService creates a meeting service.
func NewService(repo *Repository, cfg Config, log *logger.Logger) *Service {
	cfg.ApplyDefaults()
	return &Service{
		repo:    repo,
		cfg:     cfg,
		log:     log.WithComponent("meeting"),
		newCode: NewRoomCode,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SetFinalizer installs the work submitted when a meeting ends.
func (s *Service) SetFinalizer(f Finalizer) { s.finalizer = f }

// Repository returns the underlying repository.
func (s *Service) Repository() *Repository { return s.repo }

// Create opens a room owned by owner. The owner is the first participant.
func (s *Service) Create(ctx context.Context, title, owner string) (*Meeting, error) {
	title, owner = strings.TrimSpace(title), strings.TrimSpace(owner)
	if err := validation.New().
		Required("title", title).
		MaxLength("title", title, 200).
		Required("owner_name", owner).
		MaxLength("owner_name", owner, 100).
		Validate(); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		id, err := s.newCode(s.cfg.RoomCodeLength)
		if err != nil {
			return nil, apperrors.Internal(fmt.Errorf("generate room code: %w", err))
		}
		jitsi, err := s.newCode(s.cfg.RoomCodeLength)
		if err != nil {
			return nil, apperrors.Internal(fmt.Errorf("generate room code: %w", err))
		}

		m := &Meeting{
			ID:           id,
			Title:        title,
			OwnerID:      owner,
			JitsiRoom:    jitsi,
			Participants: []string{owner},
			Status:       StatusActive,
			CreatedAt:    s.now(),
		}
		err = s.repo.CreateMeeting(ctx, m)
		if err == nil {
			s.log.Info("Meeting created", logger.MeetingFields(m.ID, "owner", owner))
			return m, nil
		}
		if !apperrors.IsCode(err, apperrors.ErrCodeAlreadyExists) {
			return nil, err
		}
		lastErr = err
		s.log.Debug("Room code collision, retrying", logger.MeetingFields(id, "attempt", attempt))
	}
	return nil, apperrors.Internal(fmt.Errorf("no free room code after %d attempts: %w", maxCreateAttempts, lastErr))
}

// Get returns the meeting or NOT_FOUND.
func (s *Service) Get(ctx context.Context, id string) (*Meeting, error) {
	return s.repo.GetMeeting(ctx, id)
}

// Join adds participant to an active meeting. Joining twice is a no-op.
func (s *Service) Join(ctx context.Context, id, participant string) (*Meeting, error) {
	participant = strings.TrimSpace(participant)
	if err := validation.New().
		Required("user_name", participant).
		MaxLength("user_name", participant, 100).
		Validate(); err != nil {
		return nil, err
	}

	m, err := s.repo.UpdateMeeting(ctx, id, func(m *Meeting) (bool, error) {
		if m.Status != StatusActive {
			return false, apperrors.MeetingEnded(id)
		}
		if m.HasParticipant(participant) {
			return false, nil
		}
		if len(m.Participants) >= s.cfg.MaxParticipants {
			return false, apperrors.RoomFull(id, s.cfg.MaxParticipants)
		}
		m.Participants = append(m.Participants, participant)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Participant joined", logger.MeetingFields(id,
		logger.FieldParticipant, participant,
		"participants", len(m.Participants),
	))
	return m, nil
}

// End marks the meeting ended and submits post-meeting work. Ending an ended
// meeting keeps its first ended_at.
func (s *Service) End(ctx context.Context, id string) (*Meeting, *tasks.Task, error) {
	m, err := s.repo.UpdateMeeting(ctx, id, func(m *Meeting) (bool, error) {
		if m.Status == StatusEnded {
			return false, nil
		}
		now := s.now()
		m.Status = StatusEnded
		m.EndedAt = &now
		return true, nil
	})
	if err != nil {
		return nil, nil, err
	}
	s.log.Info("Meeting ended", logger.MeetingFields(id, "participants", len(m.Participants)))

	var task *tasks.Task
	if s.finalizer != nil {
		task = s.finalizer.Finalize(id)
	}
	return m, task, nil
}

// Status returns the meeting's state and whether a summary exists.
func (s *Service) Status(ctx context.Context, id string) (*StatusView, error) {
	m, err := s.repo.GetMeeting(ctx, id)
	if err != nil {
		return nil, err
	}
	available, err := s.repo.InsightExists(ctx, id)
	if err != nil {
		return nil, err
	}
	return &StatusView{
		MeetingID:        m.ID,
		Status:           m.Status,
		Participants:     m.Participants,
		CreatedAt:        m.CreatedAt,
		EndedAt:          m.EndedAt,
		SummaryAvailable: available,
	}, nil
}

// Transcript lists the meeting's segments in timestamp order.
func (s *Service) Transcript(ctx context.Context, id string) ([]Segment, error) {
	return s.repo.ListSegments(ctx, id)
}

// DeleteTranscript removes all of the meeting's segments.
func (s *Service) DeleteTranscript(ctx context.Context, id string) (int64, error) {
	n, err := s.repo.DeleteSegments(ctx, id)
	if err != nil {
		return 0, err
	}
	s.log.Info("Transcript deleted", logger.MeetingFields(id, "segments", n))
	return n, nil
}
