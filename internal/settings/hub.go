package settings

import (
	"sync"

	"github.com/angelmondragon/its27-backend/pkg/enums"
)

// Listener receives the new value of a setting after it changes.
type Listener func(Setting)

// hub fans setting changes out to in-process subscribers.
type hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[enums.SettingKey]map[int]Listener
}

func newHub() *hub {
	return &hub{subs: map[enums.SettingKey]map[int]Listener{}}
}

func (h *hub) subscribe(key enums.SettingKey, fn Listener) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	if h.subs[key] == nil {
		h.subs[key] = map[int]Listener{}
	}
	h.subs[key][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[key], id)
		})
	}
}

func (h *hub) notify(s Setting) {
	h.mu.RLock()
	listeners := make([]Listener, 0, len(h.subs[s.Key]))
	for _, fn := range h.subs[s.Key] {
		listeners = append(listeners, fn)
	}
	h.mu.RUnlock()
	for _, fn := range listeners {
		fn(s)
	}
}

func (h *hub) count(key enums.SettingKey) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[key])
}
