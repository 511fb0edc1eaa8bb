package controller

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"temple-sessions-be/internal/entity"
	"temple-sessions-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakePinService struct {
	pinned    map[string][]entity.PinnedSession
	completed map[string][]entity.CompletedSession
	resets    []string
	resetAll  bool
}

func newFakePinService() *fakePinService {
	return &fakePinService{
		pinned:    make(map[string][]entity.PinnedSession),
		completed: make(map[string][]entity.CompletedSession),
	}
}

func (s *fakePinService) TogglePinned(ctx context.Context, userId, sessionId, exerciseId string, startTime time.Time) bool {
	s.pinned[userId] = append(s.pinned[userId], entity.PinnedSession{Id: sessionId})
	return true
}

func (s *fakePinService) IsPinned(userId, sessionId string) bool {
	for _, p := range s.pinned[userId] {
		if p.Id == sessionId {
			return true
		}
	}
	return false
}

func (s *fakePinService) PinnedSessions(userId string) []entity.PinnedSession {
	return s.pinned[userId]
}

func (s *fakePinService) AddCompletedSession(ctx context.Context, userId, sessionId, exerciseId string) {
	s.completed[userId] = append(s.completed[userId], entity.CompletedSession{Id: sessionId, ExerciseId: exerciseId})
}

func (s *fakePinService) CompletedSessions(userId string) []entity.CompletedSession {
	return s.completed[userId]
}

func (s *fakePinService) Reset(userId string, all bool) {
	if all {
		s.resetAll = true
		return
	}
	s.resets = append(s.resets, userId)
}

func TestUserStateEndpoints(t *testing.T) {
	t.Setenv("JWT_SECRET", testJwtSecret)

	svc := newFakePinService()
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	NewUserStateController(svc).RegisterRoutes(api)

	userId := uuid.New()
	svc.TogglePinned(context.Background(), userId.String(), "s1", "ex1", time.Now())
	svc.AddCompletedSession(context.Background(), userId.String(), "s2", "ex2")

	t.Run("Show state", func(t *testing.T) {
		resp, err := app.Test(authedRequest(t, "GET", "/api/user/v1/state", "", userId), -1)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var result serverutils.BaseResponse[struct {
			PinnedSessions    []entity.PinnedSession    `json:"pinned_sessions"`
			CompletedSessions []entity.CompletedSession `json:"completed_sessions"`
		}]
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Len(t, result.Data.PinnedSessions, 1)
		assert.Len(t, result.Data.CompletedSessions, 1)
	})

	t.Run("Reset single user", func(t *testing.T) {
		resp, err := app.Test(authedRequest(t, "POST", "/api/user/v1/state/reset", `{"all":false}`, userId), -1)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, []string{userId.String()}, svc.resets)
	})

	t.Run("Reset all users", func(t *testing.T) {
		resp, err := app.Test(authedRequest(t, "POST", "/api/user/v1/state/reset", `{"all":true}`, userId), -1)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.True(t, svc.resetAll)
	})
}
