package meeting

import "time"

// Status is a meeting's lifecycle state. It only moves active -> ended.
type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

// Meeting is a room. ID is the room code participants share.
type Meeting struct {
	ID           string     `gorm:"primaryKey;size:32" json:"id"`
	Title        string     `gorm:"not null" json:"title"`
	OwnerID      string     `gorm:"not null" json:"owner_id"`
	JitsiRoom    string     `gorm:"size:32" json:"jitsi_room"`
	Participants []string   `gorm:"serializer:json;type:text" json:"participants"`
	Status       Status     `gorm:"size:16;not null;default:active" json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	EndedAt      *time.Time `json:"ended_at"`
}

func (Meeting) TableName() string { return "meetings" }

// HasParticipant reports whether name already joined.
func (m *Meeting) HasParticipant(name string) bool {
	for _, p := range m.Participants {
		if p == name {
			return true
		}
	}
	return false
}

// Segment is one transcribed piece of a meeting. Segments are append-only.
type Segment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	MeetingID string    `gorm:"index;size:32;not null" json:"meeting_id"`
	Content   string    `gorm:"type:text" json:"content"`
	Speaker   *string   `json:"speaker"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`
}

func (Segment) TableName() string { return "transcriptions" }

// Insight is the generated summary of a meeting. There is at most one per
// meeting.
type Insight struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	MeetingID   string    `gorm:"uniqueIndex;size:32;not null" json:"meeting_id"`
	Summary     string    `gorm:"type:text" json:"summary"`
	ActionItems string    `gorm:"type:text" json:"action_items"`
	Decisions   string    `gorm:"type:text" json:"decisions"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Insight) TableName() string { return "insights" }

// Models lists the tables for auto-migration.
func Models() []interface{} {
	return []interface{}{&Meeting{}, &Segment{}, &Insight{}}
}

// StatusView is the meeting status endpoint payload.
type StatusView struct {
	MeetingID        string     `json:"meeting_id"`
	Status           Status     `json:"status"`
	Participants     []string   `json:"participants"`
	CreatedAt        time.Time  `json:"created_at"`
	EndedAt          *time.Time `json:"ended_at"`
	SummaryAvailable bool       `json:"summary_available"`
}
