package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWatch upgrades to a websocket and streams slot content. Watchers
// are read-only; anything they send is discarded.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	slot := slotFrom(r)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{ID: uuid.New().String(), Slot: slot, Conn: conn, Send: make(chan []byte, sendBuffer)}
	if !s.hub.Register(client) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server stopping"))
		conn.Close()
		return
	}

	defer func() {
		s.hub.Unregister(client)
		conn.Close()
	}()

	// Write loop (server -> client).
	go func() {
		for {
			message, ok := <-client.Send
			if !ok {
				// Hub closed the channel
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				s.log.Debug("websocket write failed", "client", client.ID, "error", err)
				return
			}
		}
	}()

	// Read loop; returns when the client goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.log.Debug("websocket closed", "client", client.ID, "error", err)
			return
		}
	}
}
