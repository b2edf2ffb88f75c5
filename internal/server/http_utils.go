package server

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"error": msg,
	})
}

// writeErrorDetails carries the underlying cause alongside the
// user-facing message.
func writeErrorDetails(w http.ResponseWriter, status int, msg string, err error) {
	writeJSON(w, status, map[string]string{
		"error":   msg,
		"details": err.Error(),
	})
}
