package server

import (
	"encoding/json"
	"net/http"
	"time"
)

// handlePlayerState returns the playback snapshot.
// GET /api/player
func (s *Server) handlePlayerState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

// handlePlaylist returns the loaded playlist.
// GET /api/playlist.json
func (s *Server) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Playlist())
}

// POST /api/player/play
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	s.engine.Play()
	s.playerResponse(w)
}

// POST /api/player/pause
func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.engine.Pause()
	s.playerResponse(w)
}

// POST /api/player/toggle
func (s *Server) handleTogglePlay(w http.ResponseWriter, r *http.Request) {
	s.engine.TogglePlay()
	s.playerResponse(w)
}

// POST /api/player/next
func (s *Server) handleNextTrack(w http.ResponseWriter, r *http.Request) {
	s.engine.NextTrack()
	s.playerResponse(w)
}

// POST /api/player/prev
func (s *Server) handlePrevTrack(w http.ResponseWriter, r *http.Request) {
	s.engine.PrevTrack()
	s.playerResponse(w)
}

// handleSetTrack jumps to a playlist index.
// POST /api/player/track {"index": n}
func (s *Server) handleSetTrack(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req struct {
		Index *int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Index == nil {
		writeError(w, http.StatusBadRequest, "body must be {\"index\": n}")
		return
	}

	s.engine.SetTrack(*req.Index)
	s.playerResponse(w)
}

// POST /api/player/shuffle
func (s *Server) handleToggleShuffle(w http.ResponseWriter, r *http.Request) {
	s.engine.ToggleShuffle()
	s.playerResponse(w)
}

// POST /api/player/repeat
func (s *Server) handleCycleRepeat(w http.ResponseWriter, r *http.Request) {
	s.engine.CycleRepeatMode()
	s.playerResponse(w)
}

// POST /api/player/seek/start
func (s *Server) handleSeekStart(w http.ResponseWriter, r *http.Request) {
	s.engine.StartSeek()
	s.playerResponse(w)
}

// handleSeek moves the displayed position during a scrub.
// POST /api/player/seek {"time": seconds}
func (s *Server) handleSeek(w http.ResponseWriter, r *http.Request) {
	pos, ok := decodeSeekTime(w, r)
	if !ok {
		return
	}
	s.engine.Seek(pos)
	s.playerResponse(w)
}

// handleSeekEnd commits the scrub position.
// POST /api/player/seek/end {"time": seconds}
func (s *Server) handleSeekEnd(w http.ResponseWriter, r *http.Request) {
	pos, ok := decodeSeekTime(w, r)
	if !ok {
		return
	}
	s.engine.EndSeek(pos)
	s.playerResponse(w)
}

func decodeSeekTime(w http.ResponseWriter, r *http.Request) (time.Duration, bool) {
	defer r.Body.Close()

	var req struct {
		Time *float64 `json:"time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Time == nil {
		writeError(w, http.StatusBadRequest, "body must be {\"time\": seconds}")
		return 0, false
	}
	return time.Duration(*req.Time * float64(time.Second)), true
}

func (s *Server) playerResponse(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}
