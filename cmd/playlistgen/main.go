package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/sanaanm/webdesk/internal/playlist"
)

func main() {
	dir := flag.String("dir", "public/audio", "directory of audio files to scan")
	out := flag.String("out", "playlist.json", "output playlist path")
	covers := flag.String("covers", "", "cover output directory (default <dir>/covers)")
	base := flag.String("base", "/audio", "public base URL prefixed to track sources")
	flag.Parse()

	gen := playlist.NewGenerator(*dir, *covers, *base)
	tracks, err := gen.Generate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := gen.WritePlaylist(tracks, *out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log.Printf("playlistgen: wrote %d tracks to %s", len(tracks), *out)
}
