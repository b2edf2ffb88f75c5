package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleListWindows returns the full registry snapshot.
// GET /api/windows
func (s *Server) handleListWindows(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.Snapshot())
}

// handleGetWindow returns one window's state.
// GET /api/windows/{key}
func (s *Server) handleGetWindow(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	info, ok := s.registry.Get(key)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown window")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// handleOpenWindow opens (or re-focuses) a window. The request body,
// if any, becomes the window's opaque payload.
// POST /api/windows/{key}/open
func (s *Server) handleOpenWindow(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var data json.RawMessage
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}
	if len(body) > 0 {
		if !json.Valid(body) {
			writeError(w, http.StatusBadRequest, "payload must be valid JSON")
			return
		}
		data = json.RawMessage(body)
	}

	s.registry.Open(key, data)
	s.windowResponse(w, key)
}

// POST /api/windows/{key}/close
func (s *Server) handleCloseWindow(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	s.registry.Close(key)
	s.windowResponse(w, key)
}

// POST /api/windows/{key}/focus
func (s *Server) handleFocusWindow(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	s.registry.Focus(key)
	s.windowResponse(w, key)
}

// POST /api/windows/{key}/fullscreen
func (s *Server) handleToggleFullscreen(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	s.registry.ToggleFullscreen(key)
	s.windowResponse(w, key)
}

// handleSettleClose tells the registry a close animation has finished
// so the window's payload can be dropped.
// POST /api/windows/{key}/settle
func (s *Server) handleSettleClose(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	s.registry.SettleClose(key)
	s.windowResponse(w, key)
}

// windowResponse writes the window's post-command state. Commands on
// unknown keys are silent no-ops, so those report 200 with ok=false
// rather than an error.
func (s *Server) windowResponse(w http.ResponseWriter, key string) {
	info, ok := s.registry.Get(key)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"ok": false})
		return
	}
	writeJSON(w, http.StatusOK, info)
}
