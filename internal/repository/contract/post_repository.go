package contract

import (
	"context"

	"temple-sessions-be/internal/entity"

	"github.com/google/uuid"
)

type PostRepository interface {
	Create(ctx context.Context, post *entity.Post) error

	// Delete removes a post. Returns gorm.ErrRecordNotFound (wrapped by the
	// implementation) when the post does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByExerciseAndSharing lists the newest posts for one sharing
	// question, bounded by limit.
	FindByExerciseAndSharing(ctx context.Context, exerciseId, sharingId string, limit int) ([]*entity.Post, error)
}
