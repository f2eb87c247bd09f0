package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wnt/pollhub/internal/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

// handleWebSocket streams store change notifications to the client.
// Each message mirrors the cross-process broadcast payload, e.g.
// {"type":"votes","pollId":"..."}. Clients re-fetch on receipt; the
// socket carries no state itself.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}
	defer conn.Close()

	s.logger.Info().Str("remote_addr", r.RemoteAddr).Msg("Websocket client connected")
	metrics.WebsocketClients.Inc()
	defer metrics.WebsocketClients.Dec()

	changes, err := s.broadcaster.Subscribe(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to subscribe to change feed")
		return
	}

	// Reader goroutine only to detect client close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case change, ok := <-changes:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(change); err != nil {
				s.logger.Debug().Err(err).Msg("Websocket write failed, closing")
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
