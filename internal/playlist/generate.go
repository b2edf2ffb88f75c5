package playlist

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sanaanm/webdesk/api"
	"github.com/sanaanm/webdesk/internal/audio"
)

// Generator scans an audio directory and produces the playlist.json
// and extracted cover art that the music players consume as static
// assets.
type Generator struct {
	// AudioDir is the directory scanned for audio files.
	AudioDir string
	// CoversDir receives extracted cover art. Defaults to
	// AudioDir/covers.
	CoversDir string
	// BaseURL is the public prefix tracks are served under, e.g.
	// "/audio".
	BaseURL string

	meta *MetadataReader
}

// NewGenerator creates a generator for the given audio directory.
func NewGenerator(audioDir, coversDir, baseURL string) *Generator {
	if coversDir == "" {
		coversDir = filepath.Join(audioDir, "covers")
	}
	if baseURL == "" {
		baseURL = "/audio"
	}
	return &Generator{
		AudioDir:  audioDir,
		CoversDir: coversDir,
		BaseURL:   baseURL,
		meta:      NewMetadataReader(),
	}
}

// Generate scans the audio directory, oldest file first, and returns
// the playlist in playback order. Cover art embedded in the files is
// written to CoversDir.
func (g *Generator) Generate() ([]api.Track, error) {
	entries, err := os.ReadDir(g.AudioDir)
	if err != nil {
		return nil, fmt.Errorf("read audio directory: %w", err)
	}

	type candidate struct {
		name  string
		mtime int64
	}
	var files []candidate
	for _, entry := range entries {
		if entry.IsDir() || !audio.IsSupported(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, candidate{name: entry.Name(), mtime: info.ModTime().UnixNano()})
	}

	// Oldest first: upload order becomes playback order.
	sort.Slice(files, func(i, j int) bool { return files[i].mtime < files[j].mtime })

	if err := os.MkdirAll(g.CoversDir, 0755); err != nil {
		return nil, fmt.Errorf("create covers directory: %w", err)
	}

	tracks := make([]api.Track, 0, len(files))
	for _, f := range files {
		filePath := filepath.Join(g.AudioDir, f.name)

		track, err := g.meta.Read(filePath)
		if err != nil {
			return nil, err
		}
		track.Src = path.Join(g.BaseURL, f.name)

		coverName, err := g.writeCover(filePath, f.name)
		if err != nil {
			return nil, err
		}
		if coverName != "" {
			track.Cover = path.Join(g.BaseURL, "covers", coverName)
		}

		tracks = append(tracks, track)
	}
	return tracks, nil
}

// WritePlaylist saves the playlist as indented JSON.
func (g *Generator) WritePlaylist(tracks []api.Track, outPath string) error {
	data, err := json.MarshalIndent(tracks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal playlist: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("write playlist file: %w", err)
	}
	return nil
}

// writeCover extracts embedded art to CoversDir and returns the
// written filename, or "" when the file carries none.
func (g *Generator) writeCover(filePath, fileName string) (string, error) {
	data, ext, err := g.meta.ReadCoverArt(filePath)
	if err != nil || data == nil {
		// No tags or no picture: the track simply has no cover.
		return "", nil
	}

	coverName := coverSlug(fileName) + "." + ext
	if err := os.WriteFile(filepath.Join(g.CoversDir, coverName), data, 0644); err != nil {
		return "", fmt.Errorf("write cover art: %w", err)
	}
	return coverName, nil
}

// coverSlug turns "My Song (Live).mp3" into "my_song_live" for cover
// filenames.
func coverSlug(fileName string) string {
	name := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(name) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if alnum {
			b.WriteRune(r)
			lastUnderscore = false
		} else if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}
