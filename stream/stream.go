package stream

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-gol3d/model"
	"github.com/sheikhrachel/go-gol3d/utils"
)

const writeTimeout = 2 * time.Second

// Frame is one post-step view of the lattice. Only live cells are sent,
// anything missing is dead.
type Frame struct {
	RunID         string            `json:"runId"`
	Generation    int               `json:"generation"`
	Regenerations int               `json:"regenerations"`
	Width         int               `json:"width"`
	Height        int               `json:"height"`
	Depth         int               `json:"depth"`
	CellSize      float32           `json:"cellSize"`
	Cells         []model.CellState `json:"cells"`
}

// NewFrame captures the live cells of a lattice. Call it between steps.
func NewFrame(runID string, l *model.Lattice) Frame {
	f := Frame{
		RunID:         runID,
		Generation:    l.Generation(),
		Regenerations: l.Regenerations(),
		Width:         l.GetWidth(),
		Height:        l.GetHeight(),
		Depth:         l.GetDepth(),
		CellSize:      l.GetCellSize(),
		Cells:         []model.CellState{},
	}
	l.Each(func(c *model.Cell) {
		if c.IsAlive() {
			f.Cells = append(f.Cells, c.State())
		}
	})
	return f
}

// Hub fans frames out to connected WebSocket clients
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
	last    *Frame
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Viewers are served from anywhere
			},
		},
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and keeps the client registered until it
// disconnects. A new client gets the latest frame straight away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		utils.Logf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	// Broadcasts to this client wait on connMutex until the replay is written,
	// so the client never sees the replayed frame after a newer one
	connMutex := &sync.Mutex{}
	connMutex.Lock()
	h.mu.Lock()
	h.clients[conn] = connMutex
	last := h.last
	h.mu.Unlock()
	defer h.remove(conn)

	if last != nil {
		if err := writeFrameLocked(conn, *last); err != nil {
			connMutex.Unlock()
			utils.Logf("websocket initial frame error: %v", err)
			return
		}
	}
	connMutex.Unlock()

	// Clients don't send anything meaningful, reading detects the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

// Broadcast sends a frame to every client. Clients that fail are dropped.
func (h *Hub) Broadcast(f Frame) {
	h.mu.Lock()
	h.last = &f
	targets := make(map[*websocket.Conn]*sync.Mutex, len(h.clients))
	for conn, m := range h.clients {
		targets[conn] = m
	}
	h.mu.Unlock()

	for conn, m := range targets {
		if err := writeFrame(conn, m, f); err != nil {
			utils.Logf("websocket write error, dropping client: %v", err)
			h.remove(conn)
			conn.Close()
		}
	}
}

func writeFrame(conn *websocket.Conn, m *sync.Mutex, f Frame) error {
	m.Lock()
	defer m.Unlock()
	return writeFrameLocked(conn, f)
}

// writeFrameLocked expects the caller to hold the connection mutex
func writeFrameLocked(conn *websocket.Conn, f Frame) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return errors.Wrap(err, "[writeFrame] set deadline")
	}
	return errors.Wrap(conn.WriteJSON(f), "[writeFrame] write")
}

// Serve runs an HTTP server exposing the hub on /ws until ctx is done
func Serve(ctx context.Context, addr string, hub *Hub) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)

	srv := &http.Server{Addr: addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrapf(err, "[Serve] listen on %s", addr)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "[Serve] shutdown")
		}
		return nil
	}
}
