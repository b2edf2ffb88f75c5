package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanaanm/webdesk/api"
	"github.com/sanaanm/webdesk/internal/audio"
	"github.com/sanaanm/webdesk/internal/window"
	"github.com/sanaanm/webdesk/pkg/events"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	bus := events.NewBus()
	t.Cleanup(bus.Close)

	registry := window.NewRegistry(bus, nil)
	engine := audio.NewEngine(audio.NewVirtualDevice(0), bus)
	return NewServer(registry, engine, nil, NewHub())
}

func doRequest(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeWindow(t *testing.T, rec *httptest.ResponseRecorder) api.WindowInfo {
	t.Helper()
	var info api.WindowInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	return info
}

func TestHandleListWindows(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/windows", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var infos []api.WindowInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &infos))
	assert.Len(t, infos, len(window.DefaultKeys()))
	for _, info := range infos {
		assert.False(t, info.IsOpen)
	}
}

func TestHandleOpenWindow(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/windows/finder/open", "")
	require.Equal(t, http.StatusOK, rec.Code)

	info := decodeWindow(t, rec)
	assert.True(t, info.IsOpen)
	assert.Equal(t, 1001, info.ZIndex)
}

func TestHandleOpenWindow_WithPayload(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/windows/txtfile/open", `{"path":"/notes/readme.txt"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	info := decodeWindow(t, rec)
	assert.JSONEq(t, `{"path":"/notes/readme.txt"}`, string(info.Data))
}

func TestHandleOpenWindow_RejectsInvalidJSON(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/windows/txtfile/open", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleFocusWindow_RaisesZIndex(t *testing.T) {
	srv := newTestServer(t)

	doRequest(t, srv, http.MethodPost, "/api/windows/finder/open", "")
	doRequest(t, srv, http.MethodPost, "/api/windows/contact/open", "")

	rec := doRequest(t, srv, http.MethodPost, "/api/windows/finder/focus", "")
	require.Equal(t, http.StatusOK, rec.Code)

	finder := decodeWindow(t, rec)
	contact, ok := srv.registry.Get("contact")
	require.True(t, ok)
	assert.Greater(t, finder.ZIndex, contact.ZIndex)
}

func TestHandleCloseAndSettle(t *testing.T) {
	srv := newTestServer(t)

	doRequest(t, srv, http.MethodPost, "/api/windows/imgfile/open", `{"src":"/photos/1.jpg"}`)
	rec := doRequest(t, srv, http.MethodPost, "/api/windows/imgfile/close", "")
	require.Equal(t, http.StatusOK, rec.Code)

	// The payload survives the close so the exit animation can still
	// render content.
	info := decodeWindow(t, rec)
	assert.False(t, info.IsOpen)
	assert.NotEmpty(t, info.Data)

	rec = doRequest(t, srv, http.MethodPost, "/api/windows/imgfile/settle", "")
	info = decodeWindow(t, rec)
	assert.Empty(t, info.Data)
}

func TestHandleToggleFullscreen(t *testing.T) {
	srv := newTestServer(t)

	doRequest(t, srv, http.MethodPost, "/api/windows/safari/open", "")
	rec := doRequest(t, srv, http.MethodPost, "/api/windows/safari/fullscreen", "")
	assert.True(t, decodeWindow(t, rec).IsFullscreen)

	rec = doRequest(t, srv, http.MethodPost, "/api/windows/safari/fullscreen", "")
	assert.False(t, decodeWindow(t, rec).IsFullscreen)
}

func TestHandleWindowCommand_UnknownKey(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/windows/bogus/open", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok": false}`, rec.Body.String())
}

func TestHandleGetWindow_NotFound(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/windows/bogus", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "webdeskd")
}
