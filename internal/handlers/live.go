package handlers

import (
	"net/http"
	"time"

	"tangled.org/corvid.social/corvid/internal/thread"

	"github.com/gorilla/websocket"
	"github.com/nbd-wtf/go-nostr"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The fronting proxy enforces origin policy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
)

// HandleRepliesLive upgrades to a WebSocket and pushes replies accepted
// against the displayed target as they arrive. The relay subscription is
// torn down when the client disconnects; it never outlives the connection.
func (h *Handler) HandleRepliesLive(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target := thread.Target{
		Author:  q.Get("author"),
		Address: q.Get("address"),
		EventID: q.Get("id"),
	}
	if !nostr.IsValid32ByteHex(target.EventID) {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to upgrade reply stream connection")
		return
	}
	defer conn.Close()

	watcher := thread.NewWatcher(h.fetcher, target)
	watcher.Start(r.Context())
	defer watcher.Stop()

	accepted, unsubscribe := watcher.Subscribe()
	defer unsubscribe()

	// Reader goroutine: we never expect client frames, but reading is how
	// close and pong frames surface.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case ev := <-accepted:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				log.Debug().Err(err).Msg("Reply stream write failed, closing")
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
