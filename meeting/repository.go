package meeting

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kbukum/huddle/database"
	apperrors "github.com/kbukum/huddle/errors"
)

// Repository persists meetings, segments and insights.
type Repository struct {
	db *database.DB
}

// NewRepository creates a repository over db.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// CreateMeeting inserts m. A taken room code yields ALREADY_EXISTS.
func (r *Repository) CreateMeeting(ctx context.Context, m *Meeting) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return database.FromDatabase(err, "meeting", m.ID)
	}
	return nil
}

// GetMeeting loads a meeting by room code.
func (r *Repository) GetMeeting(ctx context.Context, id string) (*Meeting, error) {
	var m Meeting
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, database.FromDatabase(err, "meeting", id)
	}
	return &m, nil
}

// MeetingExists reports whether a meeting with id exists.
func (r *Repository) MeetingExists(ctx context.Context, id string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&Meeting{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, database.FromDatabase(err, "meeting", id)
	}
	return n > 0, nil
}

// UpdateMeeting loads the meeting under a row lock, applies fn and saves the
// result in one transaction. If fn returns an error nothing is written.
func (r *Repository) UpdateMeeting(ctx context.Context, id string, fn func(m *Meeting) (bool, error)) (*Meeting, error) {
	var out Meeting
	err := r.db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := r.db.ForUpdate(tx).Where("id = ?", id).First(&out).Error; err != nil {
			return err
		}
		changed, err := fn(&out)
		if err != nil || !changed {
			return err
		}
		return tx.Save(&out).Error
	})
	if err != nil {
		return nil, database.FromDatabase(err, "meeting", id)
	}
	return &out, nil
}

// AddSegment appends a transcript segment. ID and Timestamp are filled when
// empty.
func (r *Repository) AddSegment(ctx context.Context, s *Segment) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return database.FromDatabase(err, "transcription", s.ID)
	}
	return nil
}

// ListSegments returns a meeting's segments in timestamp order.
func (r *Repository) ListSegments(ctx context.Context, meetingID string) ([]Segment, error) {
	segments := make([]Segment, 0)
	err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("timestamp ASC").
		Find(&segments).Error
	if err != nil {
		return nil, database.FromDatabase(err, "transcription", meetingID)
	}
	return segments, nil
}

// HasTranscript reports whether any segment of the meeting has text.
func (r *Repository) HasTranscript(ctx context.Context, meetingID string) (bool, error) {
	segments, err := r.ListSegments(ctx, meetingID)
	if err != nil {
		return false, err
	}
	for _, s := range segments {
		if strings.TrimSpace(s.Content) != "" {
			return true, nil
		}
	}
	return false, nil
}

// DeleteSegments removes all of a meeting's segments and returns how many
// were removed.
func (r *Repository) DeleteSegments(ctx context.Context, meetingID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("meeting_id = ?", meetingID).Delete(&Segment{})
	if res.Error != nil {
		return 0, database.FromDatabase(res.Error, "transcription", meetingID)
	}
	return res.RowsAffected, nil
}

// GetInsight loads the insight of a meeting.
func (r *Repository) GetInsight(ctx context.Context, meetingID string) (*Insight, error) {
	var in Insight
	if err := r.db.WithContext(ctx).Where("meeting_id = ?", meetingID).First(&in).Error; err != nil {
		return nil, database.FromDatabase(err, "insight", meetingID)
	}
	return &in, nil
}

// InsightExists reports whether the meeting has an insight.
func (r *Repository) InsightExists(ctx context.Context, meetingID string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&Insight{}).Where("meeting_id = ?", meetingID).Count(&n).Error; err != nil {
		return false, database.FromDatabase(err, "insight", meetingID)
	}
	return n > 0, nil
}

// CreateInsight inserts in. A second insight for the same meeting yields
// ALREADY_EXISTS.
func (r *Repository) CreateInsight(ctx context.Context, in *Insight) error {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(in).Error; err != nil {
		return database.FromDatabase(err, "insight", in.MeetingID)
	}
	return nil
}

// DeleteInsight removes the meeting's insight, or returns NOT_FOUND.
func (r *Repository) DeleteInsight(ctx context.Context, meetingID string) error {
	res := r.db.WithContext(ctx).Where("meeting_id = ?", meetingID).Delete(&Insight{})
	if res.Error != nil {
		return database.FromDatabase(res.Error, "insight", meetingID)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("insight", meetingID)
	}
	return nil
}
