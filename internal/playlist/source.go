package playlist

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sanaanm/webdesk/api"
)

// Source provides the ordered track list the audio engine plays.
// Order is preserved: insertion order is sequential playback order.
type Source interface {
	Load(ctx context.Context) ([]api.Track, error)
}

// HTTPSource fetches the playlist from a well-known URL returning a
// JSON array of track descriptors.
type HTTPSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource creates a source for the given URL. A nil client gets
// a default with a sane timeout.
func NewHTTPSource(url string, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPSource{url: url, client: client}
}

func (s *HTTPSource) Load(ctx context.Context) ([]api.Track, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build playlist request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch playlist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch playlist: status %d", resp.StatusCode)
	}

	var tracks []api.Track
	if err := json.NewDecoder(resp.Body).Decode(&tracks); err != nil {
		return nil, fmt.Errorf("decode playlist: %w", err)
	}
	return tracks, nil
}

// FileSource reads the same JSON array from disk, for deployments that
// ship playlist.json alongside the daemon.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Load(ctx context.Context) ([]api.Track, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read playlist file: %w", err)
	}

	var tracks []api.Track
	if err := json.Unmarshal(data, &tracks); err != nil {
		return nil, fmt.Errorf("decode playlist file: %w", err)
	}
	return tracks, nil
}
