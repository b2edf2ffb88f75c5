package playlist

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"

	"github.com/sanaanm/webdesk/api"
)

// MetadataReader builds playlist entries from tagged audio files
type MetadataReader struct{}

// NewMetadataReader creates a new metadata reader
func NewMetadataReader() *MetadataReader {
	return &MetadataReader{}
}

// Read extracts title/artist/album from a file's tags. Files without
// readable tags degrade to a filename-derived title.
func (r *MetadataReader) Read(filePath string) (api.Track, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return api.Track{}, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	id := generateTrackID(filePath)

	metadata, err := tag.ReadFrom(file)
	if err != nil {
		return api.Track{
			ID:    id,
			Title: titleFromFilename(filePath),
		}, nil
	}

	return api.Track{
		ID:     id,
		Title:  getOrDefault(metadata.Title(), titleFromFilename(filePath)),
		Artist: getOrDefault(metadata.Artist(), "Unknown Artist"),
		Album:  getOrDefault(metadata.Album(), "Unknown Album"),
	}, nil
}

// ReadCoverArt extracts embedded cover art. The returned extension is
// derived from the picture format and always usable as a filename
// suffix; both results are zero when the file has no picture.
func (r *MetadataReader) ReadCoverArt(filePath string) ([]byte, string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, "", fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	metadata, err := tag.ReadFrom(file)
	if err != nil {
		return nil, "", fmt.Errorf("read metadata: %w", err)
	}

	picture := metadata.Picture()
	if picture == nil {
		return nil, "", nil
	}
	return picture.Data, coverExt(picture), nil
}

func coverExt(picture *tag.Picture) string {
	switch {
	case picture.Ext != "":
		return strings.ToLower(picture.Ext)
	case strings.Contains(picture.MIMEType, "png"):
		return "png"
	case strings.Contains(picture.MIMEType, "webp"):
		return "webp"
	default:
		return "jpg"
	}
}

// generateTrackID creates a stable ID for a track from its file path
func generateTrackID(filePath string) string {
	hash := md5.Sum([]byte(filePath))
	return fmt.Sprintf("track-%x", hash[:8])
}

func titleFromFilename(filePath string) string {
	base := filepath.Base(filePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// getOrDefault returns the value if non-empty, otherwise the default
func getOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
