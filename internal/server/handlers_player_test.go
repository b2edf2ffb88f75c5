package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanaanm/webdesk/api"
)

func newPlayerServer(t *testing.T, tracks int) *Server {
	t.Helper()
	srv := newTestServer(t)

	playlist := make([]api.Track, tracks)
	for i := range playlist {
		playlist[i] = api.Track{
			ID:    fmt.Sprintf("track-%d", i),
			Title: fmt.Sprintf("Track %d", i),
			Src:   fmt.Sprintf("/audio/track_%d.mp3", i),
		}
	}
	srv.engine.SetPlaylist(playlist)
	srv.engine.LoadTrack(false)
	return srv
}

func decodePlayer(t *testing.T, rec *httptest.ResponseRecorder) api.PlaybackInfo {
	t.Helper()
	var info api.PlaybackInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	return info
}

func TestHandlePlayerState_Defaults(t *testing.T) {
	srv := newPlayerServer(t, 3)

	rec := doRequest(t, srv, http.MethodGet, "/api/player", "")
	require.Equal(t, http.StatusOK, rec.Code)

	info := decodePlayer(t, rec)
	assert.False(t, info.IsPlaying)
	assert.Equal(t, 0, info.TrackIndex)
	assert.Equal(t, api.RepeatOff, info.RepeatMode)
	assert.False(t, info.Shuffle)
	assert.Equal(t, 3, info.PlaylistSize)
}

func TestHandlePlaylist(t *testing.T) {
	srv := newPlayerServer(t, 2)

	rec := doRequest(t, srv, http.MethodGet, "/api/playlist.json", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var tracks []api.Track
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tracks))
	require.Len(t, tracks, 2)
	assert.Equal(t, "track-0", tracks[0].ID)
}

func TestHandlePlay_EmptyPlaylistStaysIdle(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/player/play", "")
	require.Equal(t, http.StatusOK, rec.Code)

	info := decodePlayer(t, rec)
	assert.False(t, info.IsPlaying)
	assert.Equal(t, 0, info.PlaylistSize)
}

func TestHandleToggleAndPause(t *testing.T) {
	srv := newPlayerServer(t, 2)

	rec := doRequest(t, srv, http.MethodPost, "/api/player/toggle", "")
	assert.True(t, decodePlayer(t, rec).IsPlaying)

	rec = doRequest(t, srv, http.MethodPost, "/api/player/pause", "")
	assert.False(t, decodePlayer(t, rec).IsPlaying)
}

func TestHandleNextPrev(t *testing.T) {
	srv := newPlayerServer(t, 3)

	rec := doRequest(t, srv, http.MethodPost, "/api/player/next", "")
	assert.Equal(t, 1, decodePlayer(t, rec).TrackIndex)

	rec = doRequest(t, srv, http.MethodPost, "/api/player/prev", "")
	assert.Equal(t, 0, decodePlayer(t, rec).TrackIndex)

	// Already at the first track; prev is a no-op.
	rec = doRequest(t, srv, http.MethodPost, "/api/player/prev", "")
	assert.Equal(t, 0, decodePlayer(t, rec).TrackIndex)
}

func TestHandleSetTrack(t *testing.T) {
	srv := newPlayerServer(t, 3)

	rec := doRequest(t, srv, http.MethodPost, "/api/player/track", `{"index": 2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decodePlayer(t, rec).TrackIndex)
}

func TestHandleSetTrack_BadRequests(t *testing.T) {
	srv := newPlayerServer(t, 3)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"missing index", `{}`},
		{"invalid json", `{"index":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodPost, "/api/player/track", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleSetTrack_OutOfRangeIsNoOp(t *testing.T) {
	srv := newPlayerServer(t, 3)

	rec := doRequest(t, srv, http.MethodPost, "/api/player/track", `{"index": 99}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decodePlayer(t, rec).TrackIndex)
}

func TestHandleShuffleAndRepeat(t *testing.T) {
	srv := newPlayerServer(t, 3)

	rec := doRequest(t, srv, http.MethodPost, "/api/player/shuffle", "")
	assert.True(t, decodePlayer(t, rec).Shuffle)

	rec = doRequest(t, srv, http.MethodPost, "/api/player/repeat", "")
	assert.Equal(t, api.RepeatAll, decodePlayer(t, rec).RepeatMode)

	// Advancing to repeat-one turns shuffle off.
	rec = doRequest(t, srv, http.MethodPost, "/api/player/repeat", "")
	info := decodePlayer(t, rec)
	assert.Equal(t, api.RepeatOne, info.RepeatMode)
	assert.False(t, info.Shuffle)
}

func TestHandleSeekFlow(t *testing.T) {
	srv := newPlayerServer(t, 2)

	rec := doRequest(t, srv, http.MethodPost, "/api/player/seek/start", "")
	assert.True(t, decodePlayer(t, rec).IsSeeking)

	rec = doRequest(t, srv, http.MethodPost, "/api/player/seek", `{"time": 30}`)
	assert.True(t, decodePlayer(t, rec).IsSeeking)

	rec = doRequest(t, srv, http.MethodPost, "/api/player/seek/end", `{"time": 30}`)
	assert.False(t, decodePlayer(t, rec).IsSeeking)
}

func TestHandleSeek_BadRequest(t *testing.T) {
	srv := newPlayerServer(t, 2)

	rec := doRequest(t, srv, http.MethodPost, "/api/player/seek", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
