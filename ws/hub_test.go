package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tcriess/lightspeed-rooms/types"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		roomID, err := strconv.ParseUint(r.URL.Query().Get("room"), 10, 64)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		Serve(hub, conn, uint(roomID))
	}))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, roomID int) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?room=" + strconv.Itoa(roomID)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) *types.WebsocketMessage {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	msg := &types.WebsocketMessage{}
	require.NoError(t, json.Unmarshal(raw, msg))
	return msg
}

func TestPublishReachesRoomOnly(t *testing.T) {
	hub, srv := startHub(t)
	a := dial(t, srv, 1)
	b := dial(t, srv, 2)
	require.Eventually(t, func() bool { return hub.NoClients(1) == 1 && hub.NoClients(2) == 1 }, 5*time.Second, 10*time.Millisecond)

	msg, err := types.NewWebsocketMessage(types.WireEventMessage, map[string]string{"body": "hello"})
	require.NoError(t, err)
	hub.Publish(1, msg)
	other, err := types.NewWebsocketMessage(types.WireEventMessage, map[string]string{"body": "room two"})
	require.NoError(t, err)
	hub.Publish(2, other)

	got := readMessage(t, a)
	assert.Equal(t, types.WireEventMessage, got.Event)
	assert.JSONEq(t, `{"body":"hello"}`, string(got.Data))
	got = readMessage(t, b)
	assert.JSONEq(t, `{"body":"room two"}`, string(got.Data))
}

func TestCloseRoomDisconnects(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, 7)
	require.Eventually(t, func() bool { return hub.NoClients(7) == 1 }, 5*time.Second, 10*time.Millisecond)

	msg, err := types.NewWebsocketMessage(types.WireEventRoomDeleted, map[string]uint{"id": 7})
	require.NoError(t, err)
	hub.Publish(7, msg)
	hub.CloseRoom(7)

	got := readMessage(t, conn)
	assert.Equal(t, types.WireEventRoomDeleted, got.Event)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
	assert.Equal(t, 0, hub.NoClients(7))
}

func TestClientDisconnectUnregisters(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, 3)
	require.Eventually(t, func() bool { return hub.NoClients(3) == 1 }, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.NoClients(3) == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestPublishWithoutClients(t *testing.T) {
	hub, _ := startHub(t)
	msg, err := types.NewWebsocketMessage(types.WireEventMessageDeleted, map[string]uint{"id": 1})
	require.NoError(t, err)
	hub.Publish(99, msg)
	hub.CloseRoom(99)
	assert.Equal(t, 0, hub.NoClients(99))
}
