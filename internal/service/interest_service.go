package service

import (
	"context"
	"fmt"

	"temple-sessions-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// IInterestService tracks how many users marked a session as interesting.
// Updates are best-effort: callers stay responsive whether or not redis is
// reachable, so failures are logged and swallowed.
type IInterestService interface {
	UpdateInterestedCount(ctx context.Context, sessionId string, interested bool)
	InterestedCount(ctx context.Context, sessionId string) int64
}

type interestService struct {
	rdb    *redis.Client
	logger logger.ILogger
}

func NewInterestService(rdb *redis.Client, log logger.ILogger) IInterestService {
	return &interestService{
		rdb:    rdb,
		logger: log,
	}
}

func interestKey(sessionId string) string {
	return fmt.Sprintf("session:%s:interested", sessionId)
}

func (s *interestService) UpdateInterestedCount(ctx context.Context, sessionId string, interested bool) {
	if s.rdb == nil {
		return
	}

	var err error
	if interested {
		err = s.rdb.Incr(ctx, interestKey(sessionId)).Err()
	} else {
		// Floor at zero: a decrement for a key that was already pruned on
		// another device must not go negative.
		var count int64
		count, err = s.rdb.Decr(ctx, interestKey(sessionId)).Result()
		if err == nil && count < 0 {
			err = s.rdb.Set(ctx, interestKey(sessionId), 0, 0).Err()
		}
	}

	if err != nil {
		s.logger.Warn("Interest", "Failed to update interested count", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}
}

func (s *interestService) InterestedCount(ctx context.Context, sessionId string) int64 {
	if s.rdb == nil {
		return 0
	}

	count, err := s.rdb.Get(ctx, interestKey(sessionId)).Int64()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("Interest", "Failed to read interested count", map[string]interface{}{
				"session_id": sessionId,
				"error":      err.Error(),
			})
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return count
}
