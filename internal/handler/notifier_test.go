package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireside/proctor-gateway/internal/signal"
)

// notifierPair registers one live WebSocket connection with the notifier
// and returns the client side for reading broadcasts.
func notifierPair(t *testing.T, n *Notifier) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	registered := make(chan struct{})
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := signal.NewConn(ws)
		n.add(conn)
		close(registered)
		<-done
		n.remove(conn)
		conn.Close()
	}))
	t.Cleanup(srv.Close)

	client, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { client.Close() })

	<-registered
	return client
}

func TestNotifier_ConcurrentBroadcasts(t *testing.T) {
	// Warnings from concurrent signal streams all funnel into the same
	// presentation connection; every one must arrive intact.
	const broadcasters, perBroadcaster = 8, 25

	n := NewNotifier(zerolog.Nop())
	client := notifierPair(t, n)

	var wg sync.WaitGroup
	for i := 0; i < broadcasters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perBroadcaster; j++ {
				n.OnWarning(1, 1)
			}
		}()
	}

	for i := 0; i < broadcasters*perBroadcaster; i++ {
		require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
		var msg signal.WarningResponse
		require.NoError(t, client.ReadJSON(&msg))
		assert.Equal(t, signal.EventWarning, msg.Event)
	}
	wg.Wait()
}

func TestNotifier_DeliversSubmitted(t *testing.T) {
	n := NewNotifier(zerolog.Nop())
	client := notifierPair(t, n)

	n.OnSubmitted()
	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg signal.SubmittedResponse
	require.NoError(t, client.ReadJSON(&msg))
	assert.Equal(t, signal.EventSubmitted, msg.Event)
}
