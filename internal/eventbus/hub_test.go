package eventbus

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub()
	stop := make(chan struct{})
	go h.Run(stop)
	t.Cleanup(func() { close(stop) })
	return h
}

func TestHub_PublishDeliversToSubscriberOfSameSession(t *testing.T) {
	h := newTestHub(t)

	conn := &Connection{ID: "c1", SessionID: "sess-1", Send: make(chan []byte, 4)}
	h.register <- conn
	time.Sleep(10 * time.Millisecond)

	h.Publish("sess-1", "step", map[string]string{"kind": "thinking"})

	select {
	case data := <-conn.Send:
		var evt Event
		require.NoError(t, json.Unmarshal(data, &evt))
		require.Equal(t, "step", evt.Type)
		require.Equal(t, "sess-1", evt.SessionID)
	case <-time.After(time.Second):
		t.Fatal("expected to receive published event")
	}
}

func TestHub_PublishIgnoresOtherSessions(t *testing.T) {
	h := newTestHub(t)

	conn := &Connection{ID: "c1", SessionID: "sess-1", Send: make(chan []byte, 4)}
	h.register <- conn
	time.Sleep(10 * time.Millisecond)

	h.Publish("sess-2", "step", nil)

	select {
	case <-conn.Send:
		t.Fatal("connection subscribed to a different session should not receive this event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_UnregisterClosesSendChannel(t *testing.T) {
	h := newTestHub(t)

	conn := &Connection{ID: "c1", SessionID: "sess-1", Send: make(chan []byte, 4)}
	h.register <- conn
	time.Sleep(10 * time.Millisecond)
	require.Equal(t, 1, h.SubscriberCount("sess-1"))

	h.unregister <- conn
	time.Sleep(10 * time.Millisecond)
	require.Equal(t, 0, h.SubscriberCount("sess-1"))

	_, ok := <-conn.Send
	require.False(t, ok, "send channel should be closed after unregister")
}

func TestHub_SubscriberCountTracksMultipleConnections(t *testing.T) {
	h := newTestHub(t)

	h.register <- &Connection{ID: "c1", SessionID: "sess-1", Send: make(chan []byte, 4)}
	h.register <- &Connection{ID: "c2", SessionID: "sess-1", Send: make(chan []byte, 4)}
	time.Sleep(10 * time.Millisecond)

	require.Equal(t, 2, h.SubscriberCount("sess-1"))
}
