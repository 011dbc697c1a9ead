package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestPage(t *testing.T) {
	server := httptest.NewServer(Routes(NewHub()))
	defer server.Close()

	resp, err := http.Get(server.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "/watch")
}

func TestMetrics(t *testing.T) {
	server := httptest.NewServer(Routes(NewHub()))
	defer server.Close()

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWatch(t *testing.T) {
	hub := NewHub()
	server := httptest.NewServer(Routes(hub))
	defer server.Close()

	require.NoError(t, hub.Present([]byte("first")))

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/watch"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, "first", string(msg), "spectators get the last frame on joining")

	require.Eventually(t, func() bool { return hub.Spectators() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, hub.Present([]byte("second")))

	_, msg, err = conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, "second", string(msg))

	require.NoError(t, hub.Close())
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
}

func TestOfferDropsOldFrames(t *testing.T) {
	c := &client{send: make(chan []byte, 2)}
	for _, frame := range []string{"a", "b", "c", "d"} {
		c.offer([]byte(frame))
	}

	require.Equal(t, "c", string(<-c.send))
	require.Equal(t, "d", string(<-c.send))
}
