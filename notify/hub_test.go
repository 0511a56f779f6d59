package notify

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentbase/talentbase/optimistic"
)

func dialHub(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil)
	t.Cleanup(hub.Close)

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(server.Close)

	conn1 := dialHub(t, server)
	conn2 := dialHub(t, server)

	require.Eventually(t, func() bool { return hub.ClientCount() == 2 },
		time.Second, 10*time.Millisecond)

	notification := optimistic.Notification{
		Kind:    optimistic.KindConfirmed,
		Target:  optimistic.TargetJobOrder,
		Seq:     3,
		Message: "job order updated",
	}
	sent := hub.Broadcast(notification)
	assert.Equal(t, 2, sent)

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		var got optimistic.Notification
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, notification, got)
	}
}

func TestHubUnregistersOnDisconnect(t *testing.T) {
	hub := NewHub(nil)
	t.Cleanup(hub.Close)

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(server.Close)

	conn := dialHub(t, server)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 },
		time.Second, 10*time.Millisecond)

	assert.Zero(t, hub.Broadcast("nobody home"))
}

func TestHubNotifyImplementsNotifier(t *testing.T) {
	var _ optimistic.Notifier = NewHub(nil)
	var _ optimistic.Notifier = NewChannelNotifier(0)
}

func TestChannelNotifier(t *testing.T) {
	t.Run("delivers in order", func(t *testing.T) {
		n := NewChannelNotifier(4)
		n.Notify(optimistic.Notification{Seq: 1})
		n.Notify(optimistic.Notification{Seq: 2})

		assert.Equal(t, uint64(1), (<-n.C()).Seq)
		assert.Equal(t, uint64(2), (<-n.C()).Seq)
	})

	t.Run("drops instead of blocking when full", func(t *testing.T) {
		n := NewChannelNotifier(1)
		n.Notify(optimistic.Notification{Seq: 1})

		done := make(chan struct{})
		go func() {
			n.Notify(optimistic.Notification{Seq: 2})
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Notify blocked on a full channel")
		}

		assert.Equal(t, uint64(1), (<-n.C()).Seq)
		select {
		case got := <-n.C():
			t.Fatalf("unexpected extra notification: %+v", got)
		default:
		}
	})
}
