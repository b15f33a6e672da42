package http

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/vaibha-v7/SIH/internal/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type outboundMessage struct {
	Type    string              `json:"type"`
	Payload domain.AttemptEvent `json:"payload"`
}

// progressWS streams accepted-attempt events to a teacher over a websocket.
// Role enforcement happens in the middleware before the upgrade.
func (h *Handler) progressWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events, cancel := h.feed.Subscribe()
	defer cancel()

	done := make(chan struct{})

	// Reader loop: its only job is to observe the close.
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(outboundMessage{Type: "attempt", Payload: event}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case <-done:
			return
		}
	}
}
