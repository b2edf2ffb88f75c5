package audio

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/sanaanm/webdesk/api"
	"github.com/sanaanm/webdesk/pkg/events"
)

// Engine manages the one playback session shared by every UI surface:
// track selection, transport, shuffle/repeat policy, and seek
// arbitration. All commands are synchronous and atomic; device-level
// failures are absorbed here and published as player.error events,
// never returned to callers.
type Engine struct {
	mu     sync.Mutex
	device Device
	bus    *events.Bus
	rng    *rand.Rand

	playlist []api.Track
	current  int
	playing  bool
	position time.Duration
	duration time.Duration
	shuffle  bool
	repeat   api.RepeatMode

	seeking              bool
	wasPlayingBeforeSeek bool
}

// NewEngine creates the engine around the process's single playback
// device and registers for its hardware events.
func NewEngine(device Device, bus *events.Bus) *Engine {
	e := &Engine{
		device: device,
		bus:    bus,
		repeat: api.RepeatOff,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	device.SetCallbacks(Callbacks{
		OnEnded:          e.handleTrackEnded,
		OnMetadataLoaded: e.handleMetadataLoaded,
		OnTimeUpdate:     e.handleTimeUpdate,
	})
	return e
}

// SetPlaylist replaces the playlist. Playback is not started; the
// current index is reset only if it no longer fits.
func (e *Engine) SetPlaylist(tracks []api.Track) {
	e.mu.Lock()
	e.playlist = make([]api.Track, len(tracks))
	copy(e.playlist, tracks)
	if e.current >= len(e.playlist) {
		e.current = 0
	}
	info := e.snapshotLocked()
	e.mu.Unlock()

	e.publishState(info)
}

// CurrentTrack returns the active track, or a zero Track when the
// playlist is empty.
func (e *Engine) CurrentTrack() api.Track {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentTrackLocked()
}

// Playlist returns a copy of the loaded playlist in playback order.
func (e *Engine) Playlist() []api.Track {
	e.mu.Lock()
	defer e.mu.Unlock()

	tracks := make([]api.Track, len(e.playlist))
	copy(tracks, e.playlist)
	return tracks
}

// LoadTrack loads the current track into the device, resetting
// position and duration. With autoPlay it also attempts playback.
func (e *Engine) LoadTrack(autoPlay bool) {
	e.mu.Lock()
	track := e.currentTrackLocked()
	if track.Src == "" {
		e.mu.Unlock()
		return
	}
	e.device.Load(track.Src)
	e.position = 0
	e.duration = 0

	var playErr error
	if autoPlay {
		playErr = e.device.Play()
		e.playing = playErr == nil
	}
	info := e.snapshotLocked()
	e.mu.Unlock()

	e.reportPlayError(playErr)
	e.publish(api.Event{Type: api.EventTrackChanged, Payload: info})
	e.publishState(info)
}

// Play attempts to start playback. Rejections reduce to a paused state.
func (e *Engine) Play() {
	e.mu.Lock()
	err := e.device.Play()
	e.playing = err == nil
	info := e.snapshotLocked()
	e.mu.Unlock()

	e.reportPlayError(err)
	e.publishState(info)
}

// Pause pauses playback.
func (e *Engine) Pause() {
	e.mu.Lock()
	e.device.Pause()
	e.playing = false
	info := e.snapshotLocked()
	e.mu.Unlock()

	e.publishState(info)
}

// TogglePlay flips between playing and paused. The read and the flip
// share one critical section so concurrent toggles strictly alternate.
func (e *Engine) TogglePlay() {
	e.mu.Lock()
	var playErr error
	if e.playing {
		e.device.Pause()
		e.playing = false
	} else {
		playErr = e.device.Play()
		e.playing = playErr == nil
	}
	info := e.snapshotLocked()
	e.mu.Unlock()

	e.reportPlayError(playErr)
	e.publishState(info)
}

// NextTrack advances the playlist. Shuffle picks a uniformly random
// track other than the current one; sequential mode stops at the last
// track (wraparound is exclusively the ended handler's business).
func (e *Engine) NextTrack() {
	e.mu.Lock()
	if len(e.playlist) == 0 {
		e.mu.Unlock()
		return
	}

	next := e.current
	if e.shuffle {
		next = e.randomIndexLocked()
	} else if e.current < len(e.playlist)-1 {
		next = e.current + 1
	} else {
		e.mu.Unlock()
		return
	}
	e.finishJump(e.jumpLocked(next))
}

// PrevTrack steps back sequentially; shuffle does not apply.
func (e *Engine) PrevTrack() {
	e.mu.Lock()
	if len(e.playlist) == 0 || e.current == 0 {
		e.mu.Unlock()
		return
	}
	e.finishJump(e.jumpLocked(e.current - 1))
}

// SetTrack jumps to an explicit index; out-of-range indices are a
// no-op.
func (e *Engine) SetTrack(index int) {
	e.mu.Lock()
	if index < 0 || index >= len(e.playlist) {
		e.mu.Unlock()
		return
	}
	e.finishJump(e.jumpLocked(index))
}

// StartSeek enters the seek phase: remembers whether playback was
// active and silences the device so its time updates stop fighting
// the scrub position.
func (e *Engine) StartSeek() {
	e.mu.Lock()
	e.seeking = true
	e.wasPlayingBeforeSeek = e.playing
	if e.playing {
		e.device.Pause()
	}
	info := e.snapshotLocked()
	e.mu.Unlock()

	e.publishState(info)
}

// Seek updates the displayed position during a scrub. The device is
// not touched until EndSeek commits.
func (e *Engine) Seek(pos time.Duration) {
	e.mu.Lock()
	e.position = clampPosition(pos, e.duration)
	info := e.snapshotLocked()
	e.mu.Unlock()

	e.publishState(info)
}

// EndSeek commits the final position to the device and resumes
// playback only if it was active when the seek began.
func (e *Engine) EndSeek(pos time.Duration) {
	e.mu.Lock()
	pos = clampPosition(pos, e.duration)
	e.device.SetPosition(pos)
	e.position = pos
	e.seeking = false

	var playErr error
	if e.wasPlayingBeforeSeek {
		playErr = e.device.Play()
		e.playing = playErr == nil
	}
	e.wasPlayingBeforeSeek = false
	info := e.snapshotLocked()
	e.mu.Unlock()

	e.reportPlayError(playErr)
	e.publishState(info)
}

// ToggleShuffle flips shuffle mode. Enabling it while repeat-one is
// active forces repeat-all, since repeat-one would make shuffle
// unobservable.
func (e *Engine) ToggleShuffle() {
	e.mu.Lock()
	if !e.shuffle && e.repeat == api.RepeatOne {
		e.shuffle = true
		e.repeat = api.RepeatAll
	} else {
		e.shuffle = !e.shuffle
	}
	info := e.snapshotLocked()
	e.mu.Unlock()

	e.publishState(info)
}

// CycleRepeatMode steps off -> all -> one -> off. Entering repeat-one
// disables shuffle.
func (e *Engine) CycleRepeatMode() {
	e.mu.Lock()
	switch e.repeat {
	case api.RepeatOff:
		e.repeat = api.RepeatAll
	case api.RepeatAll:
		e.repeat = api.RepeatOne
		e.shuffle = false
	default:
		e.repeat = api.RepeatOff
	}
	info := e.snapshotLocked()
	e.mu.Unlock()

	e.publishState(info)
}

// Snapshot returns the current playback state.
func (e *Engine) Snapshot() api.PlaybackInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// handleTrackEnded drives auto-advance when the device reports the end
// of a track: repeat-one restarts in place, shuffle jumps to a random
// other track, sequential playback advances, repeat-all wraps to the
// first track, and otherwise playback stops at position zero.
func (e *Engine) handleTrackEnded() {
	e.mu.Lock()
	if len(e.playlist) == 0 {
		e.mu.Unlock()
		return
	}

	if e.repeat == api.RepeatOne {
		e.device.SetPosition(0)
		e.position = 0
		err := e.device.Play()
		e.playing = err == nil
		info := e.snapshotLocked()
		e.mu.Unlock()

		e.reportPlayError(err)
		e.publishState(info)
		return
	}

	if e.shuffle {
		e.playing = true
		e.finishJump(e.jumpLocked(e.randomIndexLocked()))
		return
	}

	if e.current < len(e.playlist)-1 {
		e.playing = true
		e.finishJump(e.jumpLocked(e.current + 1))
		return
	}

	if e.repeat == api.RepeatAll {
		e.playing = true
		e.finishJump(e.jumpLocked(0))
		return
	}

	e.playing = false
	e.position = 0
	info := e.snapshotLocked()
	e.mu.Unlock()

	e.publishState(info)
}

// handleMetadataLoaded records the decoded track duration.
func (e *Engine) handleMetadataLoaded(duration time.Duration) {
	e.mu.Lock()
	e.duration = duration
	info := e.snapshotLocked()
	e.mu.Unlock()

	e.publishState(info)
}

// handleTimeUpdate mirrors device progress. Updates are dropped while
// a seek is in flight so the scrub position wins.
func (e *Engine) handleTimeUpdate(position time.Duration) {
	e.mu.Lock()
	if e.seeking {
		e.mu.Unlock()
		return
	}
	e.position = position
	info := e.snapshotLocked()
	e.mu.Unlock()

	e.publishState(info)
}

// jumpLocked moves to index, loads it into the device, and preserves
// the playing intent. Caller holds the lock; the returned snapshot and
// error are handed to finishJump after unlocking.
func (e *Engine) jumpLocked(index int) (api.PlaybackInfo, error) {
	e.current = index
	e.position = 0
	e.duration = 0

	track := e.playlist[index]
	if track.Src != "" {
		e.device.Load(track.Src)
	}

	var playErr error
	if e.playing {
		playErr = e.device.Play()
		e.playing = playErr == nil
	}
	return e.snapshotLocked(), playErr
}

// finishJump releases the lock and publishes the outcome of a track
// jump.
func (e *Engine) finishJump(info api.PlaybackInfo, playErr error) {
	e.mu.Unlock()

	e.reportPlayError(playErr)
	e.publish(api.Event{Type: api.EventTrackChanged, Payload: info})
	e.publishState(info)
}

// randomIndexLocked picks a uniformly random index different from the
// current one. A playlist of one track always yields index zero.
func (e *Engine) randomIndexLocked() int {
	if len(e.playlist) <= 1 {
		return 0
	}
	for {
		index := e.rng.Intn(len(e.playlist))
		if index != e.current {
			return index
		}
	}
}

func (e *Engine) currentTrackLocked() api.Track {
	if e.current < 0 || e.current >= len(e.playlist) {
		return api.Track{}
	}
	return e.playlist[e.current]
}

func (e *Engine) snapshotLocked() api.PlaybackInfo {
	return api.PlaybackInfo{
		Track:        e.currentTrackLocked(),
		TrackIndex:   e.current,
		IsPlaying:    e.playing,
		CurrentTime:  e.position.Seconds(),
		Duration:     e.duration.Seconds(),
		Shuffle:      e.shuffle,
		RepeatMode:   e.repeat,
		IsSeeking:    e.seeking,
		PlaylistSize: len(e.playlist),
	}
}

func (e *Engine) publishState(info api.PlaybackInfo) {
	e.publish(api.Event{Type: api.EventPlayerState, Payload: info})
}

func (e *Engine) publish(ev api.Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}

// reportPlayError logs and publishes an absorbed playback rejection.
func (e *Engine) reportPlayError(err error) {
	if err == nil {
		return
	}
	log.Printf("webdeskd: playback failed: %v", err)
	e.publish(api.Event{Type: api.EventPlayerError, Payload: err.Error()})
}

func clampPosition(pos, duration time.Duration) time.Duration {
	if pos < 0 {
		return 0
	}
	if duration > 0 && pos > duration {
		return duration
	}
	return pos
}
