package server

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

	"github.com/sanaanm/webdesk/api"
	"github.com/sanaanm/webdesk/internal/audio"
	"github.com/sanaanm/webdesk/internal/window"
	"github.com/sanaanm/webdesk/pkg/events"
)

// dialWS starts a server around the handler and opens a client
// connection to /ws.
func dialWS(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(srv.handleWS))
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame map[string]any
	require.NoError(t, json.Unmarshal(data, &frame))
	return frame
}

func TestWS_WelcomeFrame(t *testing.T) {
	bus := events.NewBus()
	defer bus.Close()

	registry := window.NewRegistry(bus, nil)
	engine := audio.NewEngine(audio.NewVirtualDevice(0), bus)
	hub := NewHub()
	go hub.Run()

	srv := NewServer(registry, engine, nil, hub)
	conn := dialWS(t, srv)

	frame := readFrame(t, conn)
	assert.Equal(t, "welcome", frame["type"])
	assert.Contains(t, frame, "windows")
	assert.Contains(t, frame, "player")
}

func TestWS_BroadcastsBusEvents(t *testing.T) {
	bus := events.NewBus()
	defer bus.Close()

	registry := window.NewRegistry(bus, nil)
	engine := audio.NewEngine(audio.NewVirtualDevice(0), bus)
	hub := NewHub()
	go hub.Run()
	go hub.RunBusBridge(bus)

	srv := NewServer(registry, engine, nil, hub)
	conn := dialWS(t, srv)
	readFrame(t, conn) // welcome

	registry.Open("finder", nil)

	frame := readFrame(t, conn)
	assert.Equal(t, string(api.EventWindowUpdated), frame["type"])

	payload, ok := frame["payload"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "finder", payload["key"])
	assert.Equal(t, true, payload["isOpen"])
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	bus := events.NewBus()
	defer bus.Close()

	registry := window.NewRegistry(bus, nil)
	engine := audio.NewEngine(audio.NewVirtualDevice(0), bus)
	hub := NewHub()
	go hub.Run()
	go hub.RunBusBridge(bus)

	srv := NewServer(registry, engine, nil, hub)
	conn := dialWS(t, srv)
	readFrame(t, conn) // welcome
	require.NoError(t, conn.Close())

	// Broadcasts after the disconnect must not wedge the hub.
	for i := 0; i < 5; i++ {
		registry.Focus("finder")
	}

	done := make(chan struct{})
	go func() {
		hub.broadcast <- []byte(`{"type":"ping"}`)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("hub stopped accepting broadcasts after a client disconnect")
	}
}
