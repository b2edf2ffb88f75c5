package server

import (
	"errors"
	"log"
	"net/http"

	deskerrors "github.com/sanaanm/webdesk/pkg/errors"
)

// handleGallery returns the gallery listing. The Cache-Control header
// mirrors the CDN window the listing is cached under: browsers always
// revalidate, edges hold it for five minutes.
// GET /api/gallery.json
func (s *Server) handleGallery(w http.ResponseWriter, r *http.Request) {
	if s.gallery == nil {
		writeError(w, http.StatusNotFound, "gallery not configured")
		return
	}

	listing, err := s.gallery.List(r.Context())
	if errors.Is(err, deskerrors.ErrGalleryNotEnabled) {
		writeError(w, http.StatusNotFound, "gallery not configured")
		return
	}
	if err != nil {
		log.Printf("webdeskd: gallery list: %v", err)
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to list images", err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=0, s-maxage=300, stale-while-revalidate=60")
	writeJSON(w, http.StatusOK, listing)
}
