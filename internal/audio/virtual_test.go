package audio

import (
	"errors"
	"testing"
	"time"

	playerrors "github.com/sanaanm/webdesk/pkg/errors"
)

func TestVirtualDevice_PlayWithoutSource(t *testing.T) {
	d := NewVirtualDevice(time.Minute)
	defer d.Close()

	if err := d.Play(); !errors.Is(err, playerrors.ErrNoSource) {
		t.Errorf("Play() error = %v, want ErrNoSource", err)
	}
	if d.Position() != 0 {
		t.Error("rejected play must not start the clock")
	}
}

func TestVirtualDevice_PlayAfterLoad(t *testing.T) {
	d := NewVirtualDevice(time.Minute)
	defer d.Close()

	d.Load("/audio/track.mp3")

	if err := d.Play(); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if d.Duration() != time.Minute {
		t.Errorf("Duration() = %v, want %v", d.Duration(), time.Minute)
	}
}

func TestVirtualDevice_SetPositionClamps(t *testing.T) {
	d := NewVirtualDevice(time.Minute)
	defer d.Close()
	d.Load("/audio/track.mp3")

	d.SetPosition(-5 * time.Second)
	if d.Position() != 0 {
		t.Errorf("Position() = %v, want 0", d.Position())
	}

	d.SetPosition(2 * time.Minute)
	if d.Position() != time.Minute {
		t.Errorf("Position() = %v, want %v", d.Position(), time.Minute)
	}
}
