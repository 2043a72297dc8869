package stream

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikhrachel/go-gol3d/model"
	"github.com/sheikhrachel/go-gol3d/utils"
)

func testLattice(t *testing.T) *model.Lattice {
	t.Helper()
	cfg := utils.DefaultConfig()
	cfg.Width, cfg.Height, cfg.Depth = 3, 3, 3
	cfg.Seed = 1
	l, err := model.NewLattice(cfg)
	require.NoError(t, err)
	l.Populate()
	l.Clear()
	l.Set(model.Position{1, 0, 1}, true)
	l.Set(model.Position{1, 1, 1}, true)
	return l
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestNewFrame(t *testing.T) {
	l := testLattice(t)
	f := NewFrame("run-1", l)

	assert.Equal(t, "run-1", f.RunID)
	assert.Equal(t, 3, f.Width)
	assert.Equal(t, float32(1), f.CellSize)
	require.Len(t, f.Cells, 2)
	assert.Equal(t, model.Position{1, 0, 1}, f.Cells[0].Position)
	assert.True(t, f.Cells[1].Alive)
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	want := NewFrame("run-2", testLattice(t))
	hub.Broadcast(want)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got Frame
	require.NoError(t, conn.ReadJSON(&got))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("frame mismatch (-want +got):\n%s", diff)
	}
}

func TestHubSendsLastFrameOnConnect(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	hub.Broadcast(Frame{RunID: "early", Generation: 4, Cells: []model.CellState{}})

	conn := dial(t, srv)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got Frame
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "early", got.RunID)
	assert.Equal(t, 4, got.Generation)
}

func TestHubDropsClosedClients(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHubReplayNeverFollowsNewerFrame(t *testing.T) {
	utils.SetLogger(nil)
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	const last = 200
	hub.Broadcast(Frame{Generation: 0, Cells: []model.CellState{}})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for gen := 1; gen <= last; gen++ {
			hub.Broadcast(Frame{Generation: gen, Cells: []model.CellState{}})
		}
	}()

	conn := dial(t, srv)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	prev := -1
	for prev < last {
		var got Frame
		require.NoError(t, conn.ReadJSON(&got))
		require.Greater(t, got.Generation, prev, "frames arrived out of order")
		prev = got.Generation
	}
	<-done
}
