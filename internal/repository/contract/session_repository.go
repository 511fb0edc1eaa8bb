package contract

import (
	"context"
	"time"

	"temple-sessions-be/internal/entity"

	"github.com/google/uuid"
)

type SessionRepository interface {
	Create(ctx context.Context, record *entity.SessionRecord) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.SessionRecord, error)

	// FindUpcomingByExercise lists sessions for an exercise that have not
	// ended yet, soonest first.
	FindUpcomingByExercise(ctx context.Context, exerciseId string, after time.Time) ([]*entity.SessionRecord, error)

	// MarkStarted flips the started flag. Idempotent.
	MarkStarted(ctx context.Context, id uuid.UUID) error
}
