package service

import (
	"context"
	"errors"
	"time"

	"temple-sessions-be/internal/dto"
	"temple-sessions-be/internal/entity"
	"temple-sessions-be/internal/pkg/logger"
	"temple-sessions-be/internal/pkg/serverutils"
	"temple-sessions-be/internal/repository/contract"
	"temple-sessions-be/pkg/events"
	"temple-sessions-be/pkg/live"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// postsLimit bounds how many posts a sharing feed returns.
const postsLimit = 20

type IPostService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreatePostRequest) (*dto.CreatePostResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByExerciseAndSharing(ctx context.Context, exerciseId, sharingId string) ([]*dto.PostResponse, error)
}

type postService struct {
	posts   contract.PostRepository
	metrics live.MetricsSink
	logger  logger.ILogger
}

func NewPostService(posts contract.PostRepository, metrics live.MetricsSink, log logger.ILogger) IPostService {
	return &postService{
		posts:   posts,
		metrics: metrics,
		logger:  log,
	}
}

func (s *postService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreatePostRequest) (*dto.CreatePostResponse, error) {
	post := entity.Post{
		Id:          uuid.New(),
		ExerciseId:  req.ExerciseId,
		SharingId:   req.SharingId,
		Text:        req.Text,
		Language:    req.Language,
		IsPublic:    req.IsPublic,
		IsAnonymous: req.IsAnonymous,
		Approved:    true,
		CreatedAt:   time.Now(),
	}
	// Anonymous posts drop the author reference entirely.
	if !req.IsAnonymous {
		post.UserId = &userId
	}

	if err := s.posts.Create(ctx, &post); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		evt := events.NewSessionMetricEvent(events.TypePostCreated, "", req.ExerciseId, userId.String())
		go func() {
			if err := s.metrics.Publish(context.Background(), evt); err != nil {
				s.logger.Warn("Post", "Failed to publish metric event", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}()
	}

	return &dto.CreatePostResponse{Id: post.Id}, nil
}

func (s *postService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.posts.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return serverutils.NewNotFoundError("Post not found")
	}
	return err
}

func (s *postService) FindByExerciseAndSharing(ctx context.Context, exerciseId, sharingId string) ([]*dto.PostResponse, error) {
	posts, err := s.posts.FindByExerciseAndSharing(ctx, exerciseId, sharingId, postsLimit)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.PostResponse, 0, len(posts))
	for _, p := range posts {
		res = append(res, &dto.PostResponse{
			Id:          p.Id,
			ExerciseId:  p.ExerciseId,
			SharingId:   p.SharingId,
			UserId:      p.UserId,
			Text:        p.Text,
			Language:    p.Language,
			IsPublic:    p.IsPublic,
			IsAnonymous: p.IsAnonymous,
			CreatedAt:   p.CreatedAt,
		})
	}
	return res, nil
}
