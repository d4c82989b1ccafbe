package stream

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHubServer(hub *Hub) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Subscribe(w, r)
	}))
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	return conn
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for hub.ClientCount() != want {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %d clients, have %d", want, hub.ClientCount())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	server := newHubServer(hub)
	defer server.Close()

	conn := dial(t, server)
	defer conn.Close()
	waitForClients(t, hub, 1)

	event := Event{
		ID:      "abc-123",
		Title:   "Broadcast headline",
		Verdict: "REAL",
		Score:   81,
	}
	hub.Broadcast(event)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var received Event
	require.NoError(t, conn.ReadJSON(&received))
	assert.Equal(t, event, received)
}

func TestHubMultipleSubscribers(t *testing.T) {
	hub := NewHub()
	server := newHubServer(hub)
	defer server.Close()

	first := dial(t, server)
	defer first.Close()
	second := dial(t, server)
	defer second.Close()
	waitForClients(t, hub, 2)

	hub.Broadcast(Event{ID: "ev-1", Title: "For everyone"})

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var received Event
		require.NoError(t, conn.ReadJSON(&received))
		assert.Equal(t, "ev-1", received.ID)
	}
}

func TestHubRemovesDisconnectedClients(t *testing.T) {
	hub := NewHub()
	server := newHubServer(hub)
	defer server.Close()

	conn := dial(t, server)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}

func TestHubShutdown(t *testing.T) {
	hub := NewHub()
	server := newHubServer(hub)
	defer server.Close()

	conn := dial(t, server)
	defer conn.Close()
	waitForClients(t, hub, 1)

	hub.Shutdown()
	assert.Zero(t, hub.ClientCount())
}

func TestHubBroadcastConcurrently(t *testing.T) {
	hub := NewHub()
	server := newHubServer(hub)
	defer server.Close()

	conn := dial(t, server)
	defer conn.Close()
	waitForClients(t, hub, 1)

	const senders = 4
	const perSender = 50

	received := make(chan Event, senders*perSender)
	go func() {
		defer close(received)
		for {
			conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
			var event Event
			if err := conn.ReadJSON(&event); err != nil {
				return
			}
			received <- event
		}
	}()

	// Several goroutines broadcast at once, the way concurrent persistence
	// workers do after simultaneous verifications
	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < perSender; n++ {
				hub.Broadcast(Event{ID: "concurrent", Verdict: "REAL", Score: 81})
			}
		}()
	}
	wg.Wait()

	// Every frame that arrives must decode intact; a slow reader may not
	// get all of them, but none may be interleaved or corrupted
	count := 0
	for event := range received {
		assert.Equal(t, "concurrent", event.ID)
		assert.Equal(t, "REAL", event.Verdict)
		assert.Equal(t, 81, event.Score)
		count++
	}
	assert.Greater(t, count, 0)
}

func TestHubDropsSlowClients(t *testing.T) {
	hub := NewHub()
	server := newHubServer(hub)
	defer server.Close()

	// Subscribe but never read, so the socket and the send buffer back up
	conn := dial(t, server)
	defer conn.Close()
	waitForClients(t, hub, 1)

	event := Event{Title: strings.Repeat("x", 1<<16)}
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() > 0 && time.Now().Before(deadline) {
		hub.Broadcast(event)
	}

	assert.Zero(t, hub.ClientCount())
}

func TestHubBroadcastWithoutClients(t *testing.T) {
	hub := NewHub()
	// Must not panic or block
	hub.Broadcast(Event{ID: "nobody-listening"})
	assert.Zero(t, hub.ClientCount())
}
