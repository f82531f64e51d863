package ws

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Temutjin2k/ambulance-dispatch/pkg/logger"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// startServer upgrades every request and registers it in hub under the id from the query string.
func startServer(t *testing.T, hub *ConnectionHub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.MustParse(r.URL.Query().Get("id"))
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := NewConn(context.Background(), id, c)
		_ = hub.Add(conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, id uuid.UUID) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?id=" + id.String()
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestBroadcastReachesEveryClient(t *testing.T) {
	hub := NewConnHub(logger.New(io.Discard, "test", logger.LevelError))
	srv := startServer(t, hub)

	a, b := uuid.New(), uuid.New()
	ca := dial(t, srv, a)
	cb := dial(t, srv, b)

	require.Eventually(t, func() bool { return hub.Len() == 2 }, time.Second, 10*time.Millisecond)
	require.Equal(t, 2, hub.Broadcast(map[string]string{"type": "ride_cancelled", "ride_id": "r1"}))

	for _, c := range []*websocket.Conn{ca, cb} {
		var msg map[string]string
		require.NoError(t, c.SetReadDeadline(time.Now().Add(time.Second)))
		require.NoError(t, c.ReadJSON(&msg))
		require.Equal(t, "r1", msg["ride_id"])
	}
}

func TestAddReplacesConnectionForSameEntity(t *testing.T) {
	hub := NewConnHub(logger.New(io.Discard, "test", logger.LevelError))
	srv := startServer(t, hub)

	id := uuid.New()
	first := dial(t, srv, id)
	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 10*time.Millisecond)
	old, err := hub.GetConn(id)
	require.NoError(t, err)

	dial(t, srv, id)
	require.Eventually(t, func() bool {
		c, err := hub.GetConn(id)
		return err == nil && c != old
	}, time.Second, 10*time.Millisecond)

	// the old socket was closed by the hub
	require.NoError(t, first.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err = first.ReadMessage()
	require.Error(t, err)

	// removing the stale connection keeps the new one registered
	hub.Remove(old)
	require.Equal(t, 1, hub.Len())
}

func TestUnknownEntity(t *testing.T) {
	hub := NewConnHub(logger.New(io.Discard, "test", logger.LevelError))
	_, err := hub.GetConn(uuid.New())
	require.ErrorIs(t, err, ErrConnIsNotFound)
	require.ErrorIs(t, hub.Add(nil), ErrEmptyConn)
}
