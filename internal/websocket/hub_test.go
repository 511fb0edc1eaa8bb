package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"temple-sessions-be/pkg/live"

	"github.com/stretchr/testify/assert"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// loopbackChannel fans every publish back to all subscribers of the session.
type loopbackChannel struct {
	mu   sync.Mutex
	subs map[string][]chan []byte
}

func newLoopbackChannel() *loopbackChannel {
	return &loopbackChannel{subs: make(map[string][]chan []byte)}
}

func (c *loopbackChannel) Publish(ctx context.Context, sessionID string, payload []byte) error {
	c.mu.Lock()
	targets := append([]chan []byte(nil), c.subs[sessionID]...)
	c.mu.Unlock()
	for _, ch := range targets {
		ch <- payload
	}
	return nil
}

func (c *loopbackChannel) Subscribe(ctx context.Context, sessionID string) (<-chan []byte, error) {
	ch := make(chan []byte, 16)
	c.mu.Lock()
	c.subs[sessionID] = append(c.subs[sessionID], ch)
	c.mu.Unlock()

	go func() {
		<-ctx.Done()
		c.mu.Lock()
		list := c.subs[sessionID]
		for i, s := range list {
			if s == ch {
				c.subs[sessionID] = append(list[:i], list[i+1:]...)
				break
			}
		}
		c.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}

func (c *loopbackChannel) Close() error { return nil }

type outboundFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func testTimings() live.Timings {
	return live.Timings{
		SettleDelay:     2 * time.Second,
		FadeDuration:    10 * time.Second,
		FadeOutDuration: 5 * time.Second,
	}
}

func newTestHub() *Hub {
	store := live.NewStore(newLoopbackChannel(), nopLogger{})
	return NewHub(store, nil, testTimings(), nopLogger{})
}

func newTestClient(hub *Hub, sessionID, userID, facilitatorID string, inPortal bool) *Client {
	return &Client{
		Hub:       hub,
		SessionID: sessionID,
		UserID:    userID,
		Initial: live.Session{
			ID:            sessionID,
			FacilitatorID: facilitatorID,
		},
		UserData: &live.UserData{InPortal: inPortal},
		Send:     make(chan []byte, 64),
	}
}

// nextFrame pops one outbound frame, failing the test on timeout.
func nextFrame(t *testing.T, client *Client) outboundFrame {
	t.Helper()
	select {
	case raw, ok := <-client.Send:
		if !ok {
			t.Fatal("send channel closed unexpectedly")
		}
		var f outboundFrame
		assert.NoError(t, json.Unmarshal(raw, &f))
		return f
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for outbound frame")
	}
	return outboundFrame{}
}

// waitForSession reads session frames until one satisfies the predicate.
func waitForSession(t *testing.T, client *Client, match func(live.Session) bool) live.Session {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case raw, ok := <-client.Send:
			if !ok {
				t.Fatal("send channel closed unexpectedly")
			}
			var f outboundFrame
			if err := json.Unmarshal(raw, &f); err != nil || f.Type != "session" {
				continue
			}
			var snap live.Session
			if err := json.Unmarshal(f.Data, &snap); err != nil {
				continue
			}
			if match(snap) {
				return snap
			}
		case <-deadline:
			t.Fatal("timed out waiting for matching session frame")
		}
	}
}

func rosterHas(snap live.Session, userID string) bool {
	for _, p := range snap.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

func TestHubConfigFrameOnJoin(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub, "s1", "alice", "host", true)
	hub.addClient(client)
	defer hub.removeClient(client)

	f := nextFrame(t, client)
	assert.Equal(t, "config", f.Type)

	var cfg struct {
		SettleDelayMs     int64 `json:"settle_delay_ms"`
		FadeDurationMs    int64 `json:"fade_duration_ms"`
		FadeOutDurationMs int64 `json:"fade_out_duration_ms"`
	}
	assert.NoError(t, json.Unmarshal(f.Data, &cfg))
	assert.Equal(t, int64(2000), cfg.SettleDelayMs)
	assert.Equal(t, int64(10000), cfg.FadeDurationMs)
	assert.Equal(t, int64(5000), cfg.FadeOutDurationMs)
}

func TestHubRosterOnJoinAndLeave(t *testing.T) {
	hub := newTestHub()

	alice := newTestClient(hub, "s1", "alice", "host", true)
	hub.addClient(alice)
	waitForSession(t, alice, func(snap live.Session) bool {
		return rosterHas(snap, "alice")
	})

	bob := newTestClient(hub, "s1", "bob", "host", false)
	hub.addClient(bob)
	snap := waitForSession(t, alice, func(snap live.Session) bool {
		return rosterHas(snap, "alice") && rosterHas(snap, "bob")
	})
	assert.Len(t, snap.Participants, 2)

	hub.removeClient(bob)
	waitForSession(t, alice, func(snap live.Session) bool {
		return rosterHas(snap, "alice") && !rosterHas(snap, "bob")
	})

	// Last client out closes the room and releases the store entry.
	hub.removeClient(alice)
	assert.Eventually(t, func() bool {
		_, ok := hub.store.Snapshot("s1")
		return !ok
	}, time.Second, time.Millisecond)
}

func TestHubSpotlightFacilitatorOnly(t *testing.T) {
	hub := newTestHub()

	host := newTestClient(hub, "s1", "host", "host", false)
	guest := newTestClient(hub, "s1", "guest", "host", false)
	hub.addClient(host)
	hub.addClient(guest)
	defer func() {
		hub.removeClient(host)
		hub.removeClient(guest)
	}()

	guest.handleMessage([]byte(`{"type":"spotlight","data":{"user_id":"guest"}}`))
	time.Sleep(20 * time.Millisecond)
	snap, ok := hub.store.Snapshot("s1")
	assert.True(t, ok)
	assert.Empty(t, snap.SpotlightUserID, "guest spotlight request ignored")

	host.handleMessage([]byte(`{"type":"spotlight","data":{"user_id":"guest"}}`))
	assert.Eventually(t, func() bool {
		snap, ok := hub.store.Snapshot("s1")
		return ok && snap.SpotlightUserID == "guest"
	}, time.Second, time.Millisecond)
}

func TestHubUserDataUpdate(t *testing.T) {
	hub := newTestHub()

	alice := newTestClient(hub, "s1", "alice", "host", true)
	hub.addClient(alice)
	defer hub.removeClient(alice)

	waitForSession(t, alice, func(snap live.Session) bool {
		for _, p := range snap.Participants {
			if p.UserID == "alice" && p.UserData != nil && p.UserData.InPortal {
				return true
			}
		}
		return false
	})

	// Crossing into the live room flips the portal flag for everyone.
	alice.handleMessage([]byte(`{"type":"user_data","data":{"in_portal":false}}`))
	waitForSession(t, alice, func(snap live.Session) bool {
		for _, p := range snap.Participants {
			if p.UserID == "alice" && p.UserData != nil && !p.UserData.InPortal {
				return true
			}
		}
		return false
	})
}

func TestHubMalformedMessageIgnored(t *testing.T) {
	hub := newTestHub()
	alice := newTestClient(hub, "s1", "alice", "host", false)
	hub.addClient(alice)
	defer hub.removeClient(alice)

	alice.handleMessage([]byte(`not json`))
	alice.handleMessage([]byte(`{"type":"unknown","data":{}}`))

	snap, ok := hub.store.Snapshot("s1")
	assert.True(t, ok)
	assert.Empty(t, snap.SpotlightUserID)
}
