package live

import (
	"context"
	"encoding/json"
	"sync"

	"temple-sessions-be/internal/pkg/logger"
	"temple-sessions-be/pkg/realtime"
)

// Store is the shared session state store. It holds the latest snapshot per
// session and fans incoming channel updates out to local subscribers. The
// underlying channel subscription is reference-counted: exactly one exists
// per session id no matter how many screens subscribe.
type Store struct {
	channel realtime.Channel
	logger  logger.ILogger

	mu      sync.Mutex
	entries map[string]*storeEntry
}

type storeEntry struct {
	current Session
	cancel  context.CancelFunc
	subs    map[*Subscription]struct{}
}

// Subscription is one subscriber's handle on a session. Updates delivers
// snapshots in arrival order; Close releases the handle and, when it was the
// last one, the backend channel.
type Subscription struct {
	store     *Store
	sessionID string
	updates   chan Session
	closeOnce sync.Once
}

func (s *Subscription) Updates() <-chan Session {
	return s.updates
}

func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.store.unsubscribe(s)
	})
}

func NewStore(channel realtime.Channel, log logger.ILogger) *Store {
	return &Store{
		channel: channel,
		logger:  log,
		entries: make(map[string]*storeEntry),
	}
}

// Subscribe registers interest in a session. The initial snapshot seeds the
// entry the first time the session is seen; later subscribers receive the
// current snapshot immediately.
func (s *Store) Subscribe(ctx context.Context, sessionID string, initial Session) (*Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[sessionID]
	if !ok {
		streamCtx, cancel := context.WithCancel(context.Background())
		stream, err := s.channel.Subscribe(streamCtx, sessionID)
		if err != nil {
			cancel()
			return nil, err
		}
		entry = &storeEntry{
			current: initial,
			cancel:  cancel,
			subs:    make(map[*Subscription]struct{}),
		}
		s.entries[sessionID] = entry
		go s.pump(sessionID, stream)
	}

	sub := &Subscription{
		store:     s,
		sessionID: sessionID,
		updates:   make(chan Session, 16),
	}
	entry.subs[sub] = struct{}{}

	// Deliver the current snapshot so late subscribers do not wait for the
	// next backend push.
	sub.updates <- entry.current
	return sub, nil
}

// Snapshot returns the latest known state of a session.
func (s *Store) Snapshot(sessionID string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[sessionID]
	if !ok {
		return Session{}, false
	}
	return entry.current, true
}

// SetStarted marks the session as started. The write is proxied to the
// channel fire-and-forget; the flag flips locally only when the update is
// echoed back through the subscription.
func (s *Store) SetStarted(ctx context.Context, sessionID string) error {
	started := true
	return s.Publish(ctx, sessionID, SessionUpdate{Started: &started})
}

// Publish sends a partial update to the session channel.
func (s *Store) Publish(ctx context.Context, sessionID string, update SessionUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return err
	}
	return s.channel.Publish(ctx, sessionID, payload)
}

func (s *Store) pump(sessionID string, stream <-chan []byte) {
	for payload := range stream {
		var update SessionUpdate
		if err := json.Unmarshal(payload, &update); err != nil {
			s.logger.Warn("SessionStore", "Dropping malformed session update", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
			continue
		}

		s.mu.Lock()
		entry, ok := s.entries[sessionID]
		if !ok {
			s.mu.Unlock()
			return
		}
		entry.current = update.Apply(entry.current)
		snapshot := entry.current
		for sub := range entry.subs {
			select {
			case sub.updates <- snapshot:
			default:
				// Slow subscriber: drop the oldest queued snapshot so the
				// newest state always lands.
				select {
				case <-sub.updates:
				default:
				}
				sub.updates <- snapshot
			}
		}
		s.mu.Unlock()
	}
}

func (s *Store) unsubscribe(sub *Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[sub.sessionID]
	if !ok {
		return
	}
	delete(entry.subs, sub)
	close(sub.updates)
	if len(entry.subs) == 0 {
		entry.cancel()
		delete(s.entries, sub.sessionID)
	}
}
