package entity

import (
	"time"

	"github.com/google/uuid"

	"gorm.io/datatypes"
)

// SessionRecord is the scheduled temple as persisted at booking time. The
// live, participant-bearing state lives on the realtime channel; this row is
// the durable registry entry the catalog and listing endpoints read.
type SessionRecord struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ExerciseId    string    `gorm:"index"`
	FacilitatorId uuid.UUID `gorm:"type:uuid;index"`
	StartTime     time.Time
	Started       bool

	// ExerciseSnapshot denormalizes the content descriptor at scheduling
	// time so session cards keep rendering even if the catalog entry moves.
	ExerciseSnapshot datatypes.JSON

	CreatedAt time.Time
	UpdatedAt *time.Time
}

// PinnedSession is a user's provisional interest marker on a future session.
// It expires one month after the session's planned start.
type PinnedSession struct {
	Id      string    `json:"id"`
	Expires time.Time `json:"expires"`
}

// CompletedSession is the record appended when a user finishes a session.
type CompletedSession struct {
	Id          string    `json:"id"`
	ExerciseId  string    `json:"exercise_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// UserState is the per-user bookkeeping record. One exists per user id; state
// of different users is never merged.
type UserState struct {
	PinnedSessions    []PinnedSession    `json:"pinned_sessions"`
	CompletedSessions []CompletedSession `json:"completed_sessions"`
}
