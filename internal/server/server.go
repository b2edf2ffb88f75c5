package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sanaanm/webdesk/internal/audio"
	"github.com/sanaanm/webdesk/internal/gallery"
	"github.com/sanaanm/webdesk/internal/window"
)

// Server exposes the desktop state over HTTP and websockets. Every UI
// surface talks to the same registry and engine, so they all observe
// one shared desktop.
type Server struct {
	registry *window.Registry
	engine   *audio.Engine
	gallery  *gallery.Service
	hub      *Hub
}

func NewServer(registry *window.Registry, engine *audio.Engine, gal *gallery.Service, hub *Hub) *Server {
	return &Server{
		registry: registry,
		engine:   engine,
		gallery:  gal,
		hub:      hub,
	}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.handleWS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/windows", s.handleListWindows)
		r.Route("/windows/{key}", func(r chi.Router) {
			r.Get("/", s.handleGetWindow)
			r.Post("/open", s.handleOpenWindow)
			r.Post("/close", s.handleCloseWindow)
			r.Post("/focus", s.handleFocusWindow)
			r.Post("/fullscreen", s.handleToggleFullscreen)
			r.Post("/settle", s.handleSettleClose)
		})

		r.Get("/playlist.json", s.handlePlaylist)
		r.Route("/player", func(r chi.Router) {
			r.Get("/", s.handlePlayerState)
			r.Post("/play", s.handlePlay)
			r.Post("/pause", s.handlePause)
			r.Post("/toggle", s.handleTogglePlay)
			r.Post("/next", s.handleNextTrack)
			r.Post("/prev", s.handlePrevTrack)
			r.Post("/track", s.handleSetTrack)
			r.Post("/shuffle", s.handleToggleShuffle)
			r.Post("/repeat", s.handleCycleRepeat)
			r.Post("/seek/start", s.handleSeekStart)
			r.Post("/seek", s.handleSeek)
			r.Post("/seek/end", s.handleSeekEnd)
		})

		r.Get("/gallery.json", s.handleGallery)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "webdeskd",
	})
}
