package audio

import (
	"sync"
	"time"

	playerrors "github.com/sanaanm/webdesk/pkg/errors"
)

const defaultVirtualTrackLength = 3 * time.Minute

// VirtualDevice tracks playback state on a wall clock without
// producing sound. It backs headless deployments where the browser
// renders the audio and the daemon only mirrors transport state.
type VirtualDevice struct {
	mu          sync.Mutex
	cb          Callbacks
	src         string
	position    time.Duration
	duration    time.Duration
	trackLength time.Duration
	playing     bool
	done        chan struct{}
	closeOnce   sync.Once
}

// NewVirtualDevice creates a clock-driven device. trackLength is the
// assumed length of every loaded source; zero means the default.
func NewVirtualDevice(trackLength time.Duration) *VirtualDevice {
	if trackLength <= 0 {
		trackLength = defaultVirtualTrackLength
	}
	d := &VirtualDevice{
		trackLength: trackLength,
		done:        make(chan struct{}),
	}
	go d.run()
	return d
}

// SetCallbacks registers the engine's event handlers.
func (d *VirtualDevice) SetCallbacks(cb Callbacks) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cb = cb
}

// Load resets the clock for a new source and reports its metadata.
func (d *VirtualDevice) Load(src string) {
	d.mu.Lock()
	d.src = src
	d.position = 0
	d.duration = d.trackLength
	d.playing = false
	loaded := d.cb.OnMetadataLoaded
	duration := d.duration
	d.mu.Unlock()

	if loaded != nil {
		go loaded(duration)
	}
}

// Play starts the clock. Like a media element with no src, it rejects
// when nothing was loaded.
func (d *VirtualDevice) Play() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.src == "" {
		return playerrors.ErrNoSource
	}
	d.playing = true
	return nil
}

func (d *VirtualDevice) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.playing = false
}

func (d *VirtualDevice) SetPosition(pos time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if pos < 0 {
		pos = 0
	}
	if d.duration > 0 && pos > d.duration {
		pos = d.duration
	}
	d.position = pos
}

func (d *VirtualDevice) Position() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.position
}

func (d *VirtualDevice) Duration() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.duration
}

func (d *VirtualDevice) Close() error {
	d.closeOnce.Do(func() { close(d.done) })
	return nil
}

// run advances the clock while playing and fires ended when the track
// length is reached.
func (d *VirtualDevice) run() {
	const step = 500 * time.Millisecond

	ticker := time.NewTicker(step)
	defer ticker.Stop()

	for {
		select {
		case <-d.done:
			return
		case <-ticker.C:
			d.mu.Lock()
			if !d.playing || d.src == "" {
				d.mu.Unlock()
				continue
			}
			d.position += step
			update := d.cb.OnTimeUpdate
			pos := d.position

			var ended func()
			if d.duration > 0 && d.position >= d.duration {
				d.position = d.duration
				d.playing = false
				ended = d.cb.OnEnded
			}
			d.mu.Unlock()

			if update != nil {
				update(pos)
			}
			if ended != nil {
				ended()
			}
		}
	}
}
