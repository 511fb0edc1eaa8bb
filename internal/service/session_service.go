package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"temple-sessions-be/internal/dto"
	"temple-sessions-be/internal/entity"
	"temple-sessions-be/internal/pkg/logger"
	"temple-sessions-be/internal/pkg/serverutils"
	"temple-sessions-be/internal/repository/contract"
	"temple-sessions-be/pkg/content"
	"temple-sessions-be/pkg/events"
	"temple-sessions-be/pkg/live"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ISessionService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.SessionResponse, error)
	FindUpcomingByExercise(ctx context.Context, userId uuid.UUID, exerciseId string) ([]*dto.SessionResponse, error)

	// Start flips the shared started flag. Facilitator-only; pressing start
	// again once started is a no-op.
	Start(ctx context.Context, userId uuid.UUID, id uuid.UUID) error

	ToggleInterested(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ToggleInterestedResponse, error)
	Complete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error

	// LiveSeed builds the initial realtime snapshot for a device joining
	// the session channel.
	LiveSeed(ctx context.Context, id uuid.UUID) (live.Session, error)
}

type sessionService struct {
	sessions contract.SessionRepository
	store    *live.Store
	catalog  content.Provider
	interest IInterestService
	pins     IPinService
	metrics  live.MetricsSink
	logger   logger.ILogger
}

func NewSessionService(
	sessions contract.SessionRepository,
	store *live.Store,
	catalog content.Provider,
	interest IInterestService,
	pins IPinService,
	metrics live.MetricsSink,
	log logger.ILogger,
) ISessionService {
	return &sessionService{
		sessions: sessions,
		store:    store,
		catalog:  catalog,
		interest: interest,
		pins:     pins,
		metrics:  metrics,
		logger:   log,
	}
}

func (s *sessionService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	if !req.StartTime.After(time.Now()) {
		return nil, serverutils.NewInvalidInputError("start time must be in the future")
	}
	exercise, ok := s.catalog.GetExercise(req.ExerciseId)
	if !ok {
		return nil, serverutils.NewNotFoundError("Exercise not found")
	}

	snapshot, err := json.Marshal(exercise)
	if err != nil {
		return nil, err
	}

	record := entity.SessionRecord{
		Id:               uuid.New(),
		ExerciseId:       req.ExerciseId,
		FacilitatorId:    userId,
		StartTime:        req.StartTime,
		ExerciseSnapshot: snapshot,
		CreatedAt:        time.Now(),
	}
	if err := s.sessions.Create(ctx, &record); err != nil {
		return nil, err
	}

	return &dto.CreateSessionResponse{Id: record.Id}, nil
}

func (s *sessionService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.SessionResponse, error) {
	record, err := s.findRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, userId, record), nil
}

func (s *sessionService) FindUpcomingByExercise(ctx context.Context, userId uuid.UUID, exerciseId string) ([]*dto.SessionResponse, error) {
	records, err := s.sessions.FindUpcomingByExercise(ctx, exerciseId, time.Now())
	if err != nil {
		return nil, err
	}
	res := make([]*dto.SessionResponse, 0, len(records))
	for _, record := range records {
		res = append(res, s.toResponse(ctx, userId, record))
	}
	return res, nil
}

func (s *sessionService) Start(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	record, err := s.findRecord(ctx, id)
	if err != nil {
		return err
	}
	if record.FacilitatorId != userId {
		return serverutils.NewForbiddenError("only the facilitator can start the session")
	}
	if record.Started {
		return nil
	}

	if err := s.sessions.MarkStarted(ctx, id); err != nil {
		return err
	}

	// The realtime write is fire-and-forget: participants learn about the
	// start through their own subscriptions.
	if err := s.store.SetStarted(ctx, id.String()); err != nil {
		s.logger.Warn("Session", "Failed to publish started flag", map[string]interface{}{
			"session_id": id.String(),
			"error":      err.Error(),
		})
	}

	s.emitMetric(events.TypeSessionStarted, id.String(), record.ExerciseId, userId.String())
	return nil
}

func (s *sessionService) ToggleInterested(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ToggleInterestedResponse, error) {
	record, err := s.findRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	pinned := s.pins.TogglePinned(ctx, userId.String(), id.String(), record.ExerciseId, record.StartTime)
	return &dto.ToggleInterestedResponse{
		Pinned:          pinned,
		InterestedCount: s.interest.InterestedCount(ctx, id.String()),
	}, nil
}

func (s *sessionService) Complete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	record, err := s.findRecord(ctx, id)
	if err != nil {
		return err
	}
	s.pins.AddCompletedSession(ctx, userId.String(), id.String(), record.ExerciseId)
	return nil
}

func (s *sessionService) LiveSeed(ctx context.Context, id uuid.UUID) (live.Session, error) {
	record, err := s.findRecord(ctx, id)
	if err != nil {
		return live.Session{}, err
	}
	return live.Session{
		ID:            record.Id.String(),
		ExerciseID:    record.ExerciseId,
		FacilitatorID: record.FacilitatorId.String(),
		Started:       record.Started,
		StartTime:     record.StartTime,
	}, nil
}

func (s *sessionService) findRecord(ctx context.Context, id uuid.UUID) (*entity.SessionRecord, error) {
	record, err := s.sessions.FindById(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, serverutils.NewNotFoundError("Session not found")
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *sessionService) toResponse(ctx context.Context, userId uuid.UUID, record *entity.SessionRecord) *dto.SessionResponse {
	res := &dto.SessionResponse{
		Id:              record.Id,
		ExerciseId:      record.ExerciseId,
		FacilitatorId:   record.FacilitatorId,
		StartTime:       record.StartTime,
		Started:         record.Started,
		InterestedCount: s.interest.InterestedCount(ctx, record.Id.String()),
		Pinned:          s.pins.IsPinned(userId.String(), record.Id.String()),
	}

	// Prefer the live snapshot for the started flag; the realtime channel
	// learns about it before the row does on other instances.
	if snap, ok := s.store.Snapshot(record.Id.String()); ok && snap.Started {
		res.Started = true
	}

	if exercise, ok := s.catalog.GetExercise(record.ExerciseId); ok {
		res.Exercise = exercise
	} else if len(record.ExerciseSnapshot) > 0 {
		var snapshot content.Exercise
		if err := json.Unmarshal(record.ExerciseSnapshot, &snapshot); err == nil {
			res.Exercise = &snapshot
		}
	}
	return res
}

func (s *sessionService) emitMetric(eventType, sessionId, exerciseId, userId string) {
	if s.metrics == nil {
		return
	}
	evt := events.NewSessionMetricEvent(eventType, sessionId, exerciseId, userId)
	go func() {
		if err := s.metrics.Publish(context.Background(), evt); err != nil {
			s.logger.Warn("Session", "Failed to publish metric event", map[string]interface{}{
				"event": eventType,
				"error": err.Error(),
			})
		}
	}()
}
