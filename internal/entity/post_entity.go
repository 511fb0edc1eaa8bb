package entity

import (
	"time"

	"github.com/google/uuid"
)

// Post is a user-generated sharing post tied to an exercise question.
type Post struct {
	Id          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ExerciseId  string     `gorm:"index:idx_posts_exercise_sharing"`
	SharingId   string     `gorm:"index:idx_posts_exercise_sharing"`
	UserId      *uuid.UUID `gorm:"type:uuid;index"`
	Text        string
	Language    string
	IsPublic    bool
	IsAnonymous bool
	Approved    bool
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
