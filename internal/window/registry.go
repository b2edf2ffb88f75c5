package window

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/sanaanm/webdesk/api"
	"github.com/sanaanm/webdesk/pkg/events"
)

// initialZIndex is the stacking level every slot starts at. The shared
// counter starts one above it so the first opened window already sits
// in front of the idle slots.
const initialZIndex = 1000

// DefaultKeys lists every window slot of the desktop shell. Slots are
// created once at startup and never destroyed; unknown keys are ignored
// by every command.
func DefaultKeys() []string {
	return []string{
		"finder",
		"contact",
		"resume",
		"safari",
		"gallery",
		"terminal",
		"txtfile",
		"imgfile",
		"controlcenter",
		"music",
		"mobilemusic",
		"about",
		"mobileabout",
	}
}

type slot struct {
	isOpen       bool
	zIndex       int
	isFullscreen bool
	data         json.RawMessage
}

// Registry is the single source of truth for which windows are open,
// their stacking order, and per-window transient payload. All commands
// are silent no-ops for unknown keys so stale references from UI code
// can never fault.
type Registry struct {
	mu         sync.RWMutex
	windows    map[string]*slot
	nextZIndex int
	bus        *events.Bus

	// refreshPayload makes Open with a nil payload clear the previous
	// payload instead of preserving it.
	refreshPayload bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithPayloadRefresh switches Open's nil-payload handling from
// "preserve previous payload" to "clear it".
func WithPayloadRefresh() Option {
	return func(r *Registry) { r.refreshPayload = true }
}

// NewRegistry creates a registry with one closed slot per key. A nil
// key list means DefaultKeys; a nil bus disables notifications.
func NewRegistry(bus *events.Bus, keys []string, opts ...Option) *Registry {
	if keys == nil {
		keys = DefaultKeys()
	}
	r := &Registry{
		windows:    make(map[string]*slot, len(keys)),
		nextZIndex: initialZIndex + 1,
		bus:        bus,
	}
	for _, key := range keys {
		r.windows[key] = &slot{zIndex: initialZIndex}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open opens a window and brings it to the front. A non-nil payload
// replaces the slot's data; a nil payload keeps whatever was there
// unless the registry was built with WithPayloadRefresh.
func (r *Registry) Open(key string, data json.RawMessage) {
	r.mu.Lock()
	win, ok := r.windows[key]
	if ok {
		win.isOpen = true
		win.zIndex = r.nextZIndex
		r.nextZIndex++
		if data != nil {
			win.data = data
		} else if r.refreshPayload {
			win.data = nil
		}
	}
	r.mu.Unlock()
	if ok {
		r.notify(key)
	}
}

// Close closes a window and clears fullscreen. The payload is NOT
// cleared here: the UI transition layer calls SettleClose once its
// exit animation finishes. The shared counter ticks even for unknown
// or already-closed keys, matching the shell this registry replaces.
func (r *Registry) Close(key string) {
	r.mu.Lock()
	win, ok := r.windows[key]
	if ok {
		win.isOpen = false
		win.isFullscreen = false
	}
	r.nextZIndex++
	r.mu.Unlock()
	if ok {
		r.notify(key)
	}
}

// ToggleFullscreen flips the fullscreen flag of a window.
func (r *Registry) ToggleFullscreen(key string) {
	r.mu.Lock()
	win, ok := r.windows[key]
	if ok {
		win.isFullscreen = !win.isFullscreen
	}
	r.mu.Unlock()
	if ok {
		r.notify(key)
	}
}

// Focus brings an already-open window to the front without changing
// its open state.
func (r *Registry) Focus(key string) {
	r.mu.Lock()
	win, ok := r.windows[key]
	if ok {
		win.zIndex = r.nextZIndex
		r.nextZIndex++
	}
	r.mu.Unlock()
	if ok {
		r.notify(key)
	}
}

// SettleClose clears a closed window's payload. The UI layer invokes it
// when the close transition completes; a reopen in the meantime
// supersedes the pending settle, so an open slot keeps its payload.
func (r *Registry) SettleClose(key string) {
	r.mu.Lock()
	win, ok := r.windows[key]
	cleared := ok && !win.isOpen && win.data != nil
	if cleared {
		win.data = nil
	}
	r.mu.Unlock()
	if cleared {
		r.notify(key)
	}
}

// Get returns a snapshot of one window slot.
func (r *Registry) Get(key string) (api.WindowInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	win, ok := r.windows[key]
	if !ok {
		return api.WindowInfo{}, false
	}
	return r.infoLocked(key, win), true
}

// Snapshot returns every slot, ordered by key for stable output.
func (r *Registry) Snapshot() []api.WindowInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]api.WindowInfo, 0, len(r.windows))
	for key, win := range r.windows {
		infos = append(infos, r.infoLocked(key, win))
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos
}

func (r *Registry) infoLocked(key string, win *slot) api.WindowInfo {
	return api.WindowInfo{
		Key:          key,
		IsOpen:       win.isOpen,
		ZIndex:       win.zIndex,
		IsFullscreen: win.isFullscreen,
		Data:         win.data,
	}
}

func (r *Registry) notify(key string) {
	if r.bus == nil {
		return
	}
	if info, ok := r.Get(key); ok {
		r.bus.Publish(api.Event{Type: api.EventWindowUpdated, Payload: info})
	}
}
