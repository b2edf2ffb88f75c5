package api

import "encoding/json"

// Track is one entry of the playlist. Tracks are immutable once loaded;
// the field set mirrors the playlist.json descriptor consumed by the UI.
type Track struct {
	ID     string `json:"id,omitempty"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
	Src    string `json:"src"`
	Cover  string `json:"cover"`
}

// RepeatMode controls looping when a track or the playlist ends.
type RepeatMode string

const (
	RepeatOff RepeatMode = "off"
	RepeatAll RepeatMode = "all"
	RepeatOne RepeatMode = "one"
)

// PlaybackInfo is a point-in-time snapshot of the audio engine.
// Times are in seconds to match what players render.
type PlaybackInfo struct {
	Track        Track      `json:"track"`
	TrackIndex   int        `json:"trackIndex"`
	IsPlaying    bool       `json:"isPlaying"`
	CurrentTime  float64    `json:"currentTime"`
	Duration     float64    `json:"duration"`
	Shuffle      bool       `json:"shuffleEnabled"`
	RepeatMode   RepeatMode `json:"repeatMode"`
	IsSeeking    bool       `json:"isSeeking"`
	PlaylistSize int        `json:"playlistSize"`
}

// WindowInfo is a point-in-time snapshot of one window slot.
// Data is opaque cargo: the registry never inspects it.
type WindowInfo struct {
	Key          string          `json:"key"`
	IsOpen       bool            `json:"isOpen"`
	ZIndex       int             `json:"zIndex"`
	IsFullscreen bool            `json:"isFullscreen"`
	Data         json.RawMessage `json:"data,omitempty"`
}

// EventType identifies a state-change notification on the bus.
type EventType string

const (
	EventWindowUpdated EventType = "window.updated"
	EventPlayerState   EventType = "player.state_changed"
	EventTrackChanged  EventType = "player.track_changed"
	EventPlayerError   EventType = "player.error"
)

// Event is published on the bus whenever a store mutates. UI surfaces
// subscribe (directly or through the websocket hub) and re-render.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}
