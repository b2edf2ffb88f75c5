package audio

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"

	playerrors "github.com/sanaanm/webdesk/pkg/errors"
)

// Callbacks mirror the events a playback device emits: track end,
// metadata availability, and position progress. Devices invoke them
// from their own goroutines, never from inside a command call, so the
// engine can hold its lock while issuing commands.
type Callbacks struct {
	OnEnded          func()
	OnMetadataLoaded func(duration time.Duration)
	OnTimeUpdate     func(position time.Duration)
}

// Device is the single process-wide playback handle. Exactly one
// instance exists; the engine owns it and never hands it to UI code.
type Device interface {
	// Load replaces the current source and resets the position to
	// zero. A later Load supersedes any in-flight one.
	Load(src string)
	// Play starts or resumes output. It may be rejected by the host
	// (missing source, decode failure); callers absorb the error.
	Play() error
	Pause()
	SetPosition(pos time.Duration)
	Position() time.Duration
	Duration() time.Duration
	SetCallbacks(cb Callbacks)
	Close() error
}

// Ensure both implementations satisfy the interface at compile time
var (
	_ Device = (*SpeakerDevice)(nil)
	_ Device = (*VirtualDevice)(nil)
)

// SpeakerDevice renders audio on the local speaker via beep. Sources
// are local file paths or http(s) URLs; remote sources are fetched to
// a temp file before decoding.
type SpeakerDevice struct {
	mu         sync.Mutex
	cb         Callbacks
	streamer   beep.StreamSeekCloser
	format     beep.Format
	sampleRate beep.SampleRate
	ctrl       *beep.Ctrl
	playing    bool
	drained    bool
	loadErr    error
	tmpPath    string
	done       chan struct{}
	closeOnce  sync.Once
}

// NewSpeakerDevice creates a speaker-backed device and starts its
// position ticker.
func NewSpeakerDevice() *SpeakerDevice {
	d := &SpeakerDevice{done: make(chan struct{})}
	go d.trackPosition()
	return d
}

// SetCallbacks registers the engine's event handlers.
func (d *SpeakerDevice) SetCallbacks(cb Callbacks) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cb = cb
}

// Load decodes the source and queues it on the speaker, paused. Decode
// failures are remembered and surface on the next Play call, the way a
// bad source on a media element rejects play() rather than load.
func (d *SpeakerDevice) Load(src string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dropStreamerLocked()
	d.playing = false
	d.loadErr = nil

	file, path, err := d.openSource(src)
	if err != nil {
		d.loadErr = playerrors.NewPlaybackError("open", src, err)
		return
	}

	streamer, format, err := DecodeAudio(file, path)
	if err != nil {
		file.Close()
		d.loadErr = playerrors.NewPlaybackError("decode", src, err)
		return
	}

	d.streamer = streamer
	d.format = format
	d.sampleRate = format.SampleRate

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		d.loadErr = playerrors.NewPlaybackError("speaker_init", src, err)
		d.dropStreamerLocked()
		return
	}

	cb := d.cb
	duration := d.sampleRate.D(streamer.Len())
	d.enqueueLocked(true)

	if cb.OnMetadataLoaded != nil {
		go cb.OnMetadataLoaded(duration)
	}
}

// enqueueLocked wraps the current streamer in a fresh Ctrl and hands
// the sequence to the speaker.
func (d *SpeakerDevice) enqueueLocked(paused bool) {
	d.ctrl = &beep.Ctrl{Streamer: d.streamer, Paused: paused}
	d.drained = false
	// The callback runs on the speaker's mixer goroutine with its lock
	// held; dispatch asynchronously so it never contends with commands
	// that hold the device mutex while locking the speaker.
	speaker.Play(beep.Seq(d.ctrl, beep.Callback(func() {
		go d.handleEnded()
	})))
}

// openSource opens a local path directly and stages http(s) sources in
// a temp file so the decoder can seek.
func (d *SpeakerDevice) openSource(src string) (io.ReadSeekCloser, string, error) {
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		f, err := os.Open(src)
		return f, src, err
	}

	resp, err := http.Get(src)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch source: status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "webdesk-audio-*"+extOf(src))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, "", err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, "", err
	}

	d.removeTempLocked()
	d.tmpPath = tmp.Name()
	return tmp, tmp.Name(), nil
}

func (d *SpeakerDevice) Play() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.loadErr != nil {
		return d.loadErr
	}
	if d.ctrl == nil {
		return playerrors.ErrNoSource
	}
	if d.drained {
		// The mixer discards a sequence once it drains, so unpausing
		// the old Ctrl would feed nothing. Rewind and enqueue afresh.
		speaker.Lock()
		_ = d.streamer.Seek(0)
		speaker.Unlock()
		d.enqueueLocked(false)
		d.playing = true
		return nil
	}
	speaker.Lock()
	d.ctrl.Paused = false
	speaker.Unlock()
	d.playing = true
	return nil
}

func (d *SpeakerDevice) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ctrl == nil {
		return
	}
	speaker.Lock()
	d.ctrl.Paused = true
	speaker.Unlock()
	d.playing = false
}

func (d *SpeakerDevice) SetPosition(pos time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.streamer == nil {
		return
	}
	speaker.Lock()
	_ = d.streamer.Seek(d.sampleRate.N(pos))
	speaker.Unlock()
}

func (d *SpeakerDevice) Position() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.streamer == nil {
		return 0
	}
	return d.sampleRate.D(d.streamer.Position())
}

func (d *SpeakerDevice) Duration() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.streamer == nil {
		return 0
	}
	return d.sampleRate.D(d.streamer.Len())
}

// Close stops playback and releases the decoder and any staged temp
// file.
func (d *SpeakerDevice) Close() error {
	d.closeOnce.Do(func() { close(d.done) })

	d.mu.Lock()
	defer d.mu.Unlock()
	d.dropStreamerLocked()
	d.removeTempLocked()
	return nil
}

func (d *SpeakerDevice) handleEnded() {
	d.mu.Lock()
	d.playing = false
	d.drained = true
	ended := d.cb.OnEnded
	d.mu.Unlock()
	if ended != nil {
		ended()
	}
}

// trackPosition reports playback progress twice a second while output
// is active.
func (d *SpeakerDevice) trackPosition() {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-d.done:
			return
		case <-ticker.C:
			d.mu.Lock()
			var pos time.Duration
			notify := d.playing && d.streamer != nil
			if notify {
				pos = d.sampleRate.D(d.streamer.Position())
			}
			update := d.cb.OnTimeUpdate
			d.mu.Unlock()

			if notify && update != nil {
				update(pos)
			}
		}
	}
}

func (d *SpeakerDevice) dropStreamerLocked() {
	speaker.Clear()
	if d.streamer != nil {
		d.streamer.Close()
		d.streamer = nil
	}
	d.ctrl = nil
	d.drained = false
}

func (d *SpeakerDevice) removeTempLocked() {
	if d.tmpPath != "" {
		os.Remove(d.tmpPath)
		d.tmpPath = ""
	}
}
