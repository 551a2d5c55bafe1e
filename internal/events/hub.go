package events

import (
	"context"
	"sync"
)

// Hub is an in-process publish/subscribe recorder for live viewers.
// Publishing never blocks: a subscriber whose buffer is full misses the event.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan Event]struct{} // game id → subscribers
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan Event]struct{})}
}

// Subscribe returns a channel of events for gameID and a cancel func that
// must be called to release it.
func (h *Hub) Subscribe(gameID string, buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)
	h.mu.Lock()
	if h.subs[gameID] == nil {
		h.subs[gameID] = make(map[chan Event]struct{})
	}
	h.subs[gameID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if set, ok := h.subs[gameID]; ok {
				if _, ok := set[ch]; ok {
					delete(set, ch)
					close(ch)
				}
				if len(set) == 0 {
					delete(h.subs, gameID)
				}
			}
		})
	}
}

// Record delivers e to the subscribers of e.GameID. After a final GameOver the
// subscriber channels are closed; a suspended game keeps its subscribers so a
// resumed run streams to them.
func (h *Hub) Record(_ context.Context, e Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.subs[e.GameID]
	for ch := range set {
		select {
		case ch <- e:
		default:
		}
	}
	if e.Kind == GameOver && e.Final {
		for ch := range set {
			close(ch)
		}
		delete(h.subs, e.GameID)
	}
	return nil
}

// Subscribers returns the number of live subscribers for gameID.
func (h *Hub) Subscribers(gameID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[gameID])
}
