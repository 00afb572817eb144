package api

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/xandalyze/xandalyze/internal/pnode"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The REST API is already open to any origin; the stream follows.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans snapshot refreshes out to connected websocket clients.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]bool
	log   *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{conns: make(map[*websocket.Conn]bool), log: log}
}

// Serve upgrades the request and keeps the connection registered until
// the client goes away. Inbound messages are drained and discarded; the
// stream is one-way.
func (h *Hub) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.conns[conn] = true
	h.mu.Unlock()

	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	conn.Close()
}

// Broadcast pushes the refreshed snapshot to every client. The mutex is
// held across the writes: refreshes arrive from both the poller and
// manual-refresh request goroutines, and gorilla connections allow only
// one concurrent writer. Write failures drop the client; the next
// refresh carries on without it.
func (h *Hub) Broadcast(snap pnode.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteJSON(snap); err != nil {
			delete(h.conns, conn)
			conn.Close()
		}
	}
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		conn.Close()
		delete(h.conns, conn)
	}
}
