package chat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server, userID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?user=" + userID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	assert.Eventually(t, cond, time.Second, 10*time.Millisecond)
}

func TestHub_PublishToParticipants(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(w, r, r.URL.Query().Get("user"), nil)
	}))
	defer srv.Close()

	alice := dial(t, srv, "u1")
	bob := dial(t, srv, "u2")
	carol := dial(t, srv, "u3")
	waitFor(t, func() bool {
		return hub.Connections("u1") == 1 && hub.Connections("u2") == 1 && hub.Connections("u3") == 1
	})

	room := Room{ID: "room-1", Participants: []string{"u1", "u2"}}
	hub.Publish(room, Message{ID: "msg-1", RoomID: "room-1", SenderID: "u1", Text: "hello"})

	for _, conn := range []*websocket.Conn{alice, bob} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)

		var ev Event
		require.NoError(t, json.Unmarshal(raw, &ev))
		assert.Equal(t, "message", ev.Type)
		assert.Equal(t, "hello", ev.Message.Text)
	}

	require.NoError(t, carol.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := carol.ReadMessage()
	assert.Error(t, err)
}

func TestHub_UnregisterOnClose(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(w, r, r.URL.Query().Get("user"), nil)
	}))
	defer srv.Close()

	conn := dial(t, srv, "u1")
	waitFor(t, func() bool { return hub.Connections("u1") == 1 })

	conn.Close()
	waitFor(t, func() bool { return hub.Connections("u1") == 0 })
}

func TestHub_ClosesWhenDone(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(w, r, r.URL.Query().Get("user"), done)
	}))
	defer srv.Close()

	conn := dial(t, srv, "u1")
	waitFor(t, func() bool { return hub.Connections("u1") == 1 })

	close(done)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "got %v", err)
	waitFor(t, func() bool { return hub.Connections("u1") == 0 })

	hub.Publish(Room{ID: "room-1", Participants: []string{"u1", "u2"}}, Message{ID: "msg-1", Text: "late"})
}
