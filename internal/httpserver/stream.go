package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/balda/internal/events"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Per-subscriber event buffer; a slower viewer misses events
	streamBuffer = 64
)

// handleStream upgrades to a websocket and forwards the game's live events as
// JSON text messages until the game ends or the viewer leaves. A cancelled or
// faulted run sends its GameOver event but keeps the stream open, since a
// resumed run continues on it.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.deps.Hub == nil {
		jsonError(w, http.StatusNotImplemented, "no_stream")
		return
	}
	id := chi.URLParam(r, "id")
	// Subscribe before reading the state so a game ending in between still
	// closes the stream.
	ch, unsubscribe := s.deps.Hub.Subscribe(id, streamBuffer)
	defer unsubscribe()

	st, err := s.deps.Store.Get(r.Context(), id)
	if err != nil {
		s.runnerError(w, err)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str(events.FieldGameID, id).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	closeWith := func(reason string) {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason))
	}
	if st.Final {
		closeWith("game over")
		return
	}

	// Reader: only control frames are expected; an error means the viewer left.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case e, ok := <-ch:
			if !ok {
				closeWith("game over")
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(e); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-gone:
			return
		}
	}
}
