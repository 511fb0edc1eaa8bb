package websocket

import (
	"temple-sessions-be/pkg/live"

	"github.com/gofiber/websocket/v2"
)

// ServeWs handles a live session websocket connection. The caller resolves
// the initial session snapshot and whether the device joins in the portal.
func ServeWs(hub *Hub, c *websocket.Conn, userID string, initial live.Session, inPortal bool) {
	client := &Client{
		Hub:       hub,
		Conn:      c,
		SessionID: initial.ID,
		UserID:    userID,
		Initial:   initial,
		UserData:  &live.UserData{InPortal: inPortal},
		Send:      make(chan []byte, 256),
	}
	client.Hub.register <- client

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	client.readPump() // Run readPump in current goroutine (handler)
}
