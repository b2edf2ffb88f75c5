package audio

import (
	"errors"
	"testing"

	"github.com/faiface/beep"

	playerrors "github.com/sanaanm/webdesk/pkg/errors"
)

// fakeStreamer stands in for a decoded track so speaker-path
// bookkeeping can be exercised without an audio output.
type fakeStreamer struct {
	length int
	pos    int
	seeks  []int
	closed bool
}

func (f *fakeStreamer) Stream(samples [][2]float64) (int, bool) { return 0, false }

func (f *fakeStreamer) Err() error { return nil }

func (f *fakeStreamer) Len() int { return f.length }

func (f *fakeStreamer) Position() int { return f.pos }

func (f *fakeStreamer) Seek(p int) error {
	f.pos = p
	f.seeks = append(f.seeks, p)
	return nil
}

func (f *fakeStreamer) Close() error {
	f.closed = true
	return nil
}

func TestSpeakerDevice_PlayWithoutSource(t *testing.T) {
	d := NewSpeakerDevice()
	defer d.Close()

	if err := d.Play(); !errors.Is(err, playerrors.ErrNoSource) {
		t.Errorf("Play() error = %v, want ErrNoSource", err)
	}
}

func TestSpeakerDevice_LoadFailureSurfacesOnPlay(t *testing.T) {
	d := NewSpeakerDevice()
	defer d.Close()

	d.Load("/no/such/track.mp3")

	err := d.Play()
	if err == nil {
		t.Fatal("Play() expected error after failed load")
	}
	var pbErr *playerrors.PlaybackError
	if !errors.As(err, &pbErr) {
		t.Errorf("Play() error = %v, want *PlaybackError", err)
	}
}

func TestSpeakerDevice_PlayAfterDrainRewindsAndReenqueues(t *testing.T) {
	d := NewSpeakerDevice()
	defer d.Close()

	fs := &fakeStreamer{length: 44100, pos: 44100}
	d.mu.Lock()
	d.streamer = fs
	d.sampleRate = beep.SampleRate(44100)
	d.ctrl = &beep.Ctrl{Streamer: fs, Paused: false}
	d.playing = true
	d.mu.Unlock()

	// The mixer drops the sequence once it drains and fires the end
	// callback; a later Play must not unpause the dead Ctrl.
	d.handleEnded()

	oldCtrl := d.ctrl
	if err := d.Play(); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	d.mu.Lock()
	playing, drained, ctrl := d.playing, d.drained, d.ctrl
	d.mu.Unlock()

	if !playing {
		t.Error("expected device to report playing after restart")
	}
	if drained {
		t.Error("expected drained flag to clear after restart")
	}
	if ctrl == oldCtrl {
		t.Error("expected a fresh Ctrl to be enqueued, not the drained one")
	}
	if len(fs.seeks) == 0 || fs.seeks[len(fs.seeks)-1] != 0 {
		t.Errorf("expected streamer rewind to 0, seeks = %v", fs.seeks)
	}
}

func TestSpeakerDevice_PauseBeforeLoadIsNoOp(t *testing.T) {
	d := NewSpeakerDevice()
	defer d.Close()

	d.Pause()

	if d.Position() != 0 || d.Duration() != 0 {
		t.Error("expected zero position and duration with nothing loaded")
	}
}
