package controller

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"temple-sessions-be/internal/dto"
	"temple-sessions-be/internal/pkg/serverutils"
	"temple-sessions-be/pkg/live"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeSessionService struct {
	facilitatorId uuid.UUID
	sessions      map[uuid.UUID]*dto.SessionResponse
	started       map[uuid.UUID]bool
	pinned        map[uuid.UUID]bool
}

func newFakeSessionService(facilitatorId uuid.UUID) *fakeSessionService {
	return &fakeSessionService{
		facilitatorId: facilitatorId,
		sessions:      make(map[uuid.UUID]*dto.SessionResponse),
		started:       make(map[uuid.UUID]bool),
		pinned:        make(map[uuid.UUID]bool),
	}
}

func (s *fakeSessionService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	if !req.StartTime.After(time.Now()) {
		return nil, serverutils.NewInvalidInputError("start time must be in the future")
	}
	id := uuid.New()
	s.sessions[id] = &dto.SessionResponse{
		Id:            id,
		ExerciseId:    req.ExerciseId,
		FacilitatorId: userId,
		StartTime:     req.StartTime,
	}
	return &dto.CreateSessionResponse{Id: id}, nil
}

func (s *fakeSessionService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.SessionResponse, error) {
	res, ok := s.sessions[id]
	if !ok {
		return nil, serverutils.NewNotFoundError("Session not found")
	}
	return res, nil
}

func (s *fakeSessionService) FindUpcomingByExercise(ctx context.Context, userId uuid.UUID, exerciseId string) ([]*dto.SessionResponse, error) {
	out := make([]*dto.SessionResponse, 0)
	for _, res := range s.sessions {
		if res.ExerciseId == exerciseId {
			out = append(out, res)
		}
	}
	return out, nil
}

func (s *fakeSessionService) Start(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	if _, ok := s.sessions[id]; !ok {
		return serverutils.NewNotFoundError("Session not found")
	}
	if userId != s.facilitatorId {
		return serverutils.NewForbiddenError("only the facilitator can start the session")
	}
	s.started[id] = true
	return nil
}

func (s *fakeSessionService) ToggleInterested(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ToggleInterestedResponse, error) {
	if _, ok := s.sessions[id]; !ok {
		return nil, serverutils.NewNotFoundError("Session not found")
	}
	s.pinned[id] = !s.pinned[id]
	var count int64
	if s.pinned[id] {
		count = 1
	}
	return &dto.ToggleInterestedResponse{Pinned: s.pinned[id], InterestedCount: count}, nil
}

func (s *fakeSessionService) Complete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	if _, ok := s.sessions[id]; !ok {
		return serverutils.NewNotFoundError("Session not found")
	}
	return nil
}

func (s *fakeSessionService) LiveSeed(ctx context.Context, id uuid.UUID) (live.Session, error) {
	res, ok := s.sessions[id]
	if !ok {
		return live.Session{}, serverutils.NewNotFoundError("Session not found")
	}
	return live.Session{
		ID:            res.Id.String(),
		ExerciseID:    res.ExerciseId,
		FacilitatorID: res.FacilitatorId.String(),
		StartTime:     res.StartTime,
	}, nil
}

func newSessionTestApp(t *testing.T, svc *fakeSessionService) *fiber.App {
	t.Helper()
	t.Setenv("JWT_SECRET", testJwtSecret)

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	NewSessionController(svc).RegisterRoutes(api)
	return app
}

func TestSessionEndpoints(t *testing.T) {
	facilitator := uuid.New()
	guest := uuid.New()
	svc := newFakeSessionService(facilitator)
	app := newSessionTestApp(t, svc)

	var sessionId uuid.UUID

	t.Run("Create session", func(t *testing.T) {
		body, _ := json.Marshal(dto.CreateSessionRequest{
			ExerciseId: "ex1",
			StartTime:  time.Now().Add(time.Hour),
		})

		resp, err := app.Test(authedRequest(t, "POST", "/api/session/v1", string(body), facilitator), -1)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var result serverutils.BaseResponse[dto.CreateSessionResponse]
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		sessionId = result.Data.Id
		assert.NotEqual(t, uuid.Nil, sessionId)
	})

	t.Run("Create in the past rejected", func(t *testing.T) {
		body, _ := json.Marshal(dto.CreateSessionRequest{
			ExerciseId: "ex1",
			StartTime:  time.Now().Add(-time.Hour),
		})

		resp, err := app.Test(authedRequest(t, "POST", "/api/session/v1", string(body), facilitator), -1)
		assert.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
	})

	t.Run("Show session", func(t *testing.T) {
		resp, err := app.Test(authedRequest(t, "GET", "/api/session/v1/"+sessionId.String(), "", guest), -1)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("Show unknown session", func(t *testing.T) {
		resp, err := app.Test(authedRequest(t, "GET", "/api/session/v1/"+uuid.NewString(), "", guest), -1)
		assert.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
	})

	t.Run("List by exercise", func(t *testing.T) {
		resp, err := app.Test(authedRequest(t, "GET", "/api/session/v1/exercise/ex1", "", guest), -1)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var result serverutils.BaseResponse[[]*dto.SessionResponse]
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Len(t, result.Data, 1)
	})

	t.Run("Start by guest forbidden", func(t *testing.T) {
		resp, err := app.Test(authedRequest(t, "POST", "/api/session/v1/"+sessionId.String()+"/start", "", guest), -1)
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.StatusCode)

		var result struct {
			Code string `json:"code"`
		}
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, serverutils.CodeForbidden, result.Code)
	})

	t.Run("Start by facilitator", func(t *testing.T) {
		resp, err := app.Test(authedRequest(t, "POST", "/api/session/v1/"+sessionId.String()+"/start", "", facilitator), -1)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.True(t, svc.started[sessionId])
	})

	t.Run("Toggle interested", func(t *testing.T) {
		resp, err := app.Test(authedRequest(t, "PUT", "/api/session/v1/"+sessionId.String()+"/interested", "", guest), -1)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var result serverutils.BaseResponse[dto.ToggleInterestedResponse]
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.True(t, result.Data.Pinned)
		assert.Equal(t, int64(1), result.Data.InterestedCount)
	})

	t.Run("Complete session", func(t *testing.T) {
		resp, err := app.Test(authedRequest(t, "POST", "/api/session/v1/"+sessionId.String()+"/complete", "", guest), -1)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("Malformed session id rejected", func(t *testing.T) {
		resp, err := app.Test(authedRequest(t, "GET", "/api/session/v1/not-a-uuid", "", guest), -1)
		assert.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
	})
}
