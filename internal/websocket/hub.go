package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"temple-sessions-be/internal/pkg/logger"
	"temple-sessions-be/pkg/live"

	"github.com/redis/go-redis/v9"
)

// Hub connects websocket clients to their session rooms. Each room mirrors
// one live session: the roster of connected clients is published into the
// shared session store, and store snapshots are broadcast back to every
// client in the room. Redis bridges updates across instances.
type Hub struct {
	// Rooms map: SessionID -> set of clients (multi-device)
	rooms map[string]*room

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	store *live.Store

	// Redis connection for cross-instance communication
	rdb *redis.Client

	// Portal media timings served to every client on join.
	timings live.Timings

	// Dedicated Logger
	logger logger.ILogger
}

type room struct {
	sessionID string
	clients   map[*Client]struct{}
	sub       *live.Subscription
	cancel    context.CancelFunc
}

func NewHub(store *live.Store, rdb *redis.Client, timings live.Timings, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]*room),
		store:      store,
		rdb:        rdb,
		timings:    timings,
		logger:     log,
	}
}

func (h *Hub) Run() {
	// Start Redis bridge if Redis is available
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	// The first frame a client receives is the portal timing config, so
	// screens apply the server's knobs instead of baked-in constants. Sent
	// before the client joins the room: snapshot broadcasts cannot reach it
	// yet, which keeps the config frame first.
	h.sendConfig(client)

	h.mu.Lock()
	r, ok := h.rooms[client.SessionID]
	if !ok {
		ctx, cancel := context.WithCancel(context.Background())
		sub, err := h.store.Subscribe(ctx, client.SessionID, client.Initial)
		if err != nil {
			cancel()
			h.mu.Unlock()
			h.logger.Error("Hub", "Failed to subscribe to session", map[string]interface{}{
				"session_id": client.SessionID,
				"error":      err.Error(),
			})
			close(client.Send)
			return
		}
		r = &room{
			sessionID: client.SessionID,
			clients:   make(map[*Client]struct{}),
			sub:       sub,
			cancel:    cancel,
		}
		h.rooms[client.SessionID] = r
		go h.broadcastSnapshots(r)
	}
	r.clients[client] = struct{}{}
	h.mu.Unlock()

	h.logger.Info("Hub", "Client joined session", map[string]interface{}{
		"user_id":    client.UserID,
		"session_id": client.SessionID,
	})
	h.publishRoster(client.SessionID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	r, ok := h.rooms[client.SessionID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, present := r.clients[client]; !present {
		h.mu.Unlock()
		return
	}
	delete(r.clients, client)
	close(client.Send)

	empty := len(r.clients) == 0
	if empty {
		r.sub.Close()
		r.cancel()
		delete(h.rooms, client.SessionID)
		h.logger.Info("Hub", "Session room closed", map[string]interface{}{
			"session_id": client.SessionID,
		})
	}
	h.mu.Unlock()

	if !empty {
		h.publishRoster(client.SessionID)
	}
}

func (h *Hub) sendConfig(client *Client) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "config",
		"data": map[string]interface{}{
			"settle_delay_ms":      h.timings.SettleDelay.Milliseconds(),
			"fade_duration_ms":     h.timings.FadeDuration.Milliseconds(),
			"fade_out_duration_ms": h.timings.FadeOutDuration.Milliseconds(),
		},
	})
	select {
	case client.Send <- data:
	default:
	}
}

// UpdateUserData replaces a client's user data blob (e.g. leaving the portal)
// and republishes the roster.
func (h *Hub) UpdateUserData(client *Client, data *live.UserData) {
	client.mu.Lock()
	client.UserData = data
	client.mu.Unlock()
	h.publishRoster(client.SessionID)
}

// PublishUpdate pushes a partial session update into the shared store and
// forwards it to the other instances.
func (h *Hub) PublishUpdate(sessionID string, update live.SessionUpdate) {
	if err := h.store.Publish(context.Background(), sessionID, update); err != nil {
		h.logger.Warn("Hub", "Failed to publish session update", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return
	}
	h.forwardToRedis(sessionID, update)
}

func (h *Hub) publishRoster(sessionID string) {
	h.mu.RLock()
	r, ok := h.rooms[sessionID]
	if !ok {
		h.mu.RUnlock()
		return
	}
	roster := make([]live.Participant, 0, len(r.clients))
	for client := range r.clients {
		client.mu.Lock()
		roster = append(roster, live.Participant{
			UserID:   client.UserID,
			UserData: client.UserData,
		})
		client.mu.Unlock()
	}
	h.mu.RUnlock()

	update := live.SessionUpdate{Participants: &roster}
	if err := h.store.Publish(context.Background(), sessionID, update); err != nil {
		h.logger.Warn("Hub", "Failed to publish roster", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return
	}
	h.forwardToRedis(sessionID, update)
}

// broadcastSnapshots fans store snapshots out to every client in the room.
func (h *Hub) broadcastSnapshots(r *room) {
	for snapshot := range r.sub.Updates() {
		data, _ := json.Marshal(map[string]interface{}{
			"type": "session",
			"data": snapshot,
		})

		h.mu.RLock()
		for client := range r.clients {
			select {
			case client.Send <- data:
			default:
				h.logger.Warn("Hub", "Client send buffer full, dropping client", map[string]interface{}{
					"user_id":    client.UserID,
					"session_id": client.SessionID,
				})
				go func(c *Client) { h.unregister <- c }(client)
			}
		}
		h.mu.RUnlock()
	}
}

func (h *Hub) forwardToRedis(sessionID string, update live.SessionUpdate) {
	if h.rdb == nil {
		return
	}
	message, err := json.Marshal(update)
	if err != nil {
		return
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"session_id": sessionID,
		"message":    json.RawMessage(message),
	})
	h.rdb.Publish(context.Background(), "cluster_events", payload)
}

// subscribeToRedis replays updates published by other instances into the
// local store. Replayed updates are not forwarded again, so they cannot loop.
func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "cluster_events")
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			SessionID string          `json:"session_id"`
			Message   json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		// Only replay into rooms this instance is serving.
		h.mu.RLock()
		_, serving := h.rooms[payload.SessionID]
		h.mu.RUnlock()
		if !serving {
			continue
		}

		var update live.SessionUpdate
		if err := json.Unmarshal(payload.Message, &update); err != nil {
			continue
		}
		if err := h.store.Publish(ctx, payload.SessionID, update); err != nil {
			h.logger.Warn("Hub", "Failed to replay cluster update", map[string]interface{}{
				"session_id": payload.SessionID,
				"error":      err.Error(),
			})
		}
	}
}
