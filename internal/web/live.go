package web

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	liveRefresh      = "refresh"
	liveWriteTimeout = 10 * time.Second
	livePingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// handleLive pushes "refresh" to the page whenever its view changes.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(s.cookieName)
	if err != nil {
		http.Error(w, "no session", http.StatusNotFound)
		return
	}
	sess, ok := s.sessions.Get(c.Value)
	if !ok {
		http.Error(w, "no session", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("ws upgrade error")
		return
	}
	defer conn.Close()

	changes, cancel := sess.Listen()
	defer cancel()

	// The page never sends anything; reading only detects the close.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(livePingInterval)
	defer ping.Stop()

	for {
		select {
		case <-gone:
			return
		case <-sess.Controller().Done():
			return
		case <-changes:
			_ = conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(liveRefresh)); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteTimeout)); err != nil {
				return
			}
		}
	}
}
