package controllers

import (
	"sync"

	"github.com/hargunmujral/3brown1blue/domain"
)

// EventHub hands a running video's event channel to the SSE endpoint. One
// stream per video; the pipeline closes the channel when the run ends.
type EventHub struct {
	mu      sync.Mutex
	streams map[string]chan domain.SceneEvent
}

func NewEventHub() *EventHub {
	return &EventHub{
		streams: make(map[string]chan domain.SceneEvent),
	}
}

func (h *EventHub) Register(videoID string, buffer int) chan domain.SceneEvent {
	ch := make(chan domain.SceneEvent, buffer)
	h.mu.Lock()
	h.streams[videoID] = ch
	h.mu.Unlock()
	return ch
}

func (h *EventHub) Lookup(videoID string) (chan domain.SceneEvent, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch, ok := h.streams[videoID]
	return ch, ok
}

func (h *EventHub) Remove(videoID string) {
	h.mu.Lock()
	delete(h.streams, videoID)
	h.mu.Unlock()
}
