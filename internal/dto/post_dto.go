package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreatePostRequest struct {
	ExerciseId  string `json:"exercise_id" validate:"required"`
	SharingId   string `json:"sharing_id" validate:"required"`
	Text        string `json:"text" validate:"required"`
	IsPublic    bool   `json:"is_public"`
	IsAnonymous bool   `json:"is_anonymous"`
	Language    string `json:"language"`
}

type CreatePostResponse struct {
	Id uuid.UUID `json:"id"`
}

type PostResponse struct {
	Id          uuid.UUID  `json:"id"`
	ExerciseId  string     `json:"exercise_id"`
	SharingId   string     `json:"sharing_id"`
	UserId      *uuid.UUID `json:"user_id,omitempty"`
	Text        string     `json:"text"`
	Language    string     `json:"language"`
	IsPublic    bool       `json:"is_public"`
	IsAnonymous bool       `json:"is_anonymous"`
	CreatedAt   time.Time  `json:"created_at"`
}
