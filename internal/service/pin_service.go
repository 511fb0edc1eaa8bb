package service

import (
	"context"
	"sync"
	"time"

	"temple-sessions-be/internal/entity"
	"temple-sessions-be/internal/pkg/logger"
	"temple-sessions-be/internal/repository/memory"
	"temple-sessions-be/pkg/events"
	"temple-sessions-be/pkg/live"
)

// defaultPinTTL is how long past a session's planned start a pin survives.
const defaultPinTTL = 30 * 24 * time.Hour // 1 month

type IPinService interface {
	// TogglePinned flips the caller's interest in a session. Expired pins
	// are pruned as part of the toggle. Returns the resulting pinned state.
	TogglePinned(ctx context.Context, userId, sessionId, exerciseId string, startTime time.Time) bool

	// IsPinned checks membership against the pruned projection of the
	// user's list. The prune is read-only here; only TogglePinned persists
	// it, matching the behaviour the clients already rely on.
	IsPinned(userId, sessionId string) bool

	PinnedSessions(userId string) []entity.PinnedSession

	AddCompletedSession(ctx context.Context, userId, sessionId, exerciseId string)
	CompletedSessions(userId string) []entity.CompletedSession

	// Reset clears the given user's state, or every user's when all is set.
	Reset(userId string, all bool)
}

type pinService struct {
	states   *memory.UserStateRepository
	interest IInterestService
	metrics  live.MetricsSink
	logger   logger.ILogger
	ttl      time.Duration
	now      func() time.Time

	// Per-user toggles are serialized; different users never contend on
	// each other's state beyond this lock.
	mu sync.Mutex
}

// NewPinService builds the tracker. pinTTL is how long past a session's
// planned start a pin survives; zero or negative falls back to one month.
func NewPinService(states *memory.UserStateRepository, interest IInterestService, metrics live.MetricsSink, log logger.ILogger, pinTTL time.Duration) IPinService {
	if pinTTL <= 0 {
		pinTTL = defaultPinTTL
	}
	return &pinService{
		states:   states,
		interest: interest,
		metrics:  metrics,
		logger:   log,
		ttl:      pinTTL,
		now:      time.Now,
	}
}

func (s *pinService) TogglePinned(ctx context.Context, userId, sessionId, exerciseId string, startTime time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	state := s.states.Get(userId)
	current := prunePinned(state.PinnedSessions, now)

	if idx := indexOfPinned(current, sessionId); idx >= 0 {
		state.PinnedSessions = append(current[:idx:idx], current[idx+1:]...)
		s.states.Save(userId, state)
		go s.interest.UpdateInterestedCount(context.Background(), sessionId, false)
		return false
	}

	state.PinnedSessions = append(current, entity.PinnedSession{
		Id:      sessionId,
		Expires: startTime.Add(s.ttl),
	})
	s.states.Save(userId, state)
	go s.interest.UpdateInterestedCount(context.Background(), sessionId, true)
	s.emitMetric(ctx, events.TypeAddedToInterested, sessionId, exerciseId, userId)
	return true
}

func (s *pinService) IsPinned(userId, sessionId string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := prunePinned(s.states.Get(userId).PinnedSessions, s.now())
	return indexOfPinned(current, sessionId) >= 0
}

func (s *pinService) PinnedSessions(userId string) []entity.PinnedSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return prunePinned(s.states.Get(userId).PinnedSessions, s.now())
}

func (s *pinService) AddCompletedSession(ctx context.Context, userId, sessionId, exerciseId string) {
	s.mu.Lock()
	state := s.states.Get(userId)
	state.CompletedSessions = append(state.CompletedSessions, entity.CompletedSession{
		Id:          sessionId,
		ExerciseId:  exerciseId,
		CompletedAt: s.now(),
	})
	s.states.Save(userId, state)
	s.mu.Unlock()

	s.emitMetric(ctx, events.TypeSessionCompleted, sessionId, exerciseId, userId)
}

func (s *pinService) CompletedSessions(userId string) []entity.CompletedSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.CompletedSession(nil), s.states.Get(userId).CompletedSessions...)
}

func (s *pinService) Reset(userId string, all bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if all {
		s.states.Flush()
		return
	}
	s.states.Delete(userId)
}

func (s *pinService) emitMetric(ctx context.Context, eventType, sessionId, exerciseId, userId string) {
	if s.metrics == nil {
		return
	}
	evt := events.NewSessionMetricEvent(eventType, sessionId, exerciseId, userId)
	go func() {
		if err := s.metrics.Publish(context.Background(), evt); err != nil {
			s.logger.Warn("Pin", "Failed to publish metric event", map[string]interface{}{
				"event": eventType,
				"error": err.Error(),
			})
		}
	}()
}

func prunePinned(pinned []entity.PinnedSession, now time.Time) []entity.PinnedSession {
	kept := make([]entity.PinnedSession, 0, len(pinned))
	for _, p := range pinned {
		if now.Before(p.Expires) {
			kept = append(kept, p)
		}
	}
	return kept
}

func indexOfPinned(pinned []entity.PinnedSession, sessionId string) int {
	for i, p := range pinned {
		if p.Id == sessionId {
			return i
		}
	}
	return -1
}
