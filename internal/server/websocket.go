package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleWebSocket upgrades to WebSocket and pushes a summary after every run.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	runs := s.hub.Subscribe()
	done := make(chan struct{})

	// Read pump: detect client disconnect.
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
		case <-done:
			s.hub.Unsubscribe(runs)
			return
		case run, ok := <-runs:
			if !ok {
				return
			}
			if err := conn.WriteJSON(run); err != nil {
				slog.Warn("websocket write failed", "err", err)
				s.hub.Unsubscribe(runs)
				return
			}
		}
	}
}
