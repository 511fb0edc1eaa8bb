package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"temple-sessions-be/pkg/live"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// SessionID of the room this connection belongs to.
	SessionID string

	// UserID associated with this connection
	UserID string

	// Initial seeds the shared store the first time this session is seen on
	// this instance.
	Initial live.Session

	// UserData is the participant blob announced on join (e.g. inPortal)
	// and updated over the socket. Guarded by mu.
	UserData *live.UserData
	mu       sync.Mutex

	// Buffered channel of outbound messages.
	Send chan []byte
}

// inboundMessage is what clients may push up the socket.
type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// readPump pumps messages from the websocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("Hub", "Unexpected socket close", map[string]interface{}{
					"user_id": c.UserID,
					"error":   err.Error(),
				})
			}
			break
		}
		c.handleMessage(raw)
	}
}

func (c *Client) handleMessage(raw []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}

	switch msg.Type {
	case "user_data":
		// Clients flip inPortal=false when they cross into the live room.
		var data live.UserData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}
		c.Hub.UpdateUserData(c, &data)

	case "spotlight":
		var data struct {
			UserID string `json:"user_id"`
		}
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}
		// Only the facilitator controls the spotlight.
		if c.UserID != c.Initial.FacilitatorID {
			return
		}
		c.Hub.PublishUpdate(c.SessionID, live.SessionUpdate{SpotlightUserID: &data.UserID})
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued snapshots to the current websocket message.
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
