package dto

import (
	"time"

	"temple-sessions-be/pkg/content"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	ExerciseId string    `json:"exercise_id" validate:"required"`
	StartTime  time.Time `json:"start_time" validate:"required"`
}

type CreateSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

type SessionResponse struct {
	Id              uuid.UUID         `json:"id"`
	ExerciseId      string            `json:"exercise_id"`
	FacilitatorId   uuid.UUID         `json:"facilitator_id"`
	StartTime       time.Time         `json:"start_time"`
	Started         bool              `json:"started"`
	InterestedCount int64             `json:"interested_count"`
	Pinned          bool              `json:"pinned"`
	Exercise        *content.Exercise `json:"exercise,omitempty"`
}

type ToggleInterestedResponse struct {
	Pinned          bool  `json:"pinned"`
	InterestedCount int64 `json:"interested_count"`
}

type ResetUserStateRequest struct {
	All bool `json:"all"`
}
