package audio

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"

	playerrors "github.com/sanaanm/webdesk/pkg/errors"
)

// SupportedFormats returns list of supported audio formats
func SupportedFormats() []string {
	return []string{".mp3", ".wav", ".flac"}
}

// IsSupported checks if a source's format is supported
func IsSupported(src string) bool {
	ext := extOf(src)
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

// DecodeAudio decodes an audio stream based on the source's extension
func DecodeAudio(r io.ReadSeekCloser, src string) (beep.StreamSeekCloser, beep.Format, error) {
	switch extOf(src) {
	case ".mp3":
		return mp3.Decode(r)
	case ".wav":
		return wav.Decode(r)
	case ".flac":
		return flac.Decode(r)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %s", playerrors.ErrInvalidFormat, extOf(src))
	}
}

// extOf returns the lower-cased extension of a path or URL, with any
// query string stripped.
func extOf(src string) string {
	if i := strings.IndexByte(src, '?'); i >= 0 {
		src = src[:i]
	}
	return strings.ToLower(filepath.Ext(src))
}
