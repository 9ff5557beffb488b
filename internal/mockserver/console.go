package mockserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/bedrockmgr/bsmctl/internal/logging"
)

const (
	consoleWriteTimeout = 5 * time.Second
	consoleSendBuffer   = 32
)

// ConsoleHub fans console lines out to websocket subscribers, one
// subscriber set per server.
type ConsoleHub struct {
	mu          sync.Mutex
	subscribers map[string]map[chan string]struct{}
	upgrader    websocket.Upgrader
}

func NewConsoleHub() *ConsoleHub {
	return &ConsoleHub{
		subscribers: make(map[string]map[chan string]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Broadcast delivers one console line to every subscriber of the named
// server. Slow subscribers are skipped rather than blocked on.
func (h *ConsoleHub) Broadcast(server, line string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers[server] {
		select {
		case ch <- line:
		default:
		}
	}
}

// Serve upgrades the request and streams console lines until the peer
// disconnects.
func (h *ConsoleHub) Serve(w http.ResponseWriter, r *http.Request, server string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("Console upgrade failed",
			zap.String("server", server),
			zap.Error(err))
		return
	}
	defer conn.Close()

	lines := h.subscribe(server)
	defer h.unsubscribe(server, lines)

	logging.Debug("Console subscriber attached", zap.String("server", server))

	// Drain the reader so close frames and pings are processed.
	done := make(chan struct{})
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
		case line := <-lines:
			conn.SetWriteDeadline(time.Now().Add(consoleWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (h *ConsoleHub) subscribe(server string) chan string {
	ch := make(chan string, consoleSendBuffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[server] == nil {
		h.subscribers[server] = make(map[chan string]struct{})
	}
	h.subscribers[server][ch] = struct{}{}
	return ch
}

func (h *ConsoleHub) unsubscribe(server string, ch chan string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscribers[server], ch)
}
