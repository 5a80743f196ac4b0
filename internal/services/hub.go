package services

import "sync"

// Topic builders for the three realtime views.
func RequestsTopic(donorID string) string     { return "requests:" + donorID }
func ChatTopic(threadID string) string        { return "chat:" + threadID }
func NotificationsTopic(userID string) string { return "notifications:" + userID }

// Event is a state change pushed to realtime subscribers.
type Event struct {
	Topic string      `json:"topic"`
	Kind  string      `json:"kind"`
	Data  interface{} `json:"data"`
}

// Subscription is a cancellable handle on a topic stream. The owner of a view
// must hold exactly one handle per logical view instance and call Cancel before
// opening a replacement, otherwise stale handlers pile up.
type Subscription struct {
	C      <-chan Event
	cancel func()
	once   sync.Once
}

// Cancel tears the subscription down and closes C. Safe to call twice.
func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

// Hub fans events out to per-topic subscribers. Publishing never blocks: a
// subscriber that stops draining its channel loses events rather than stalling
// the writer.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[int]chan Event
	next int
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[int]chan Event),
	}
}

func (h *Hub) Subscribe(topic string) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++

	ch := make(chan Event, 16)
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[int]chan Event)
	}
	h.subs[topic][id] = ch

	return &Subscription{
		C: ch,
		cancel: func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if subs, ok := h.subs[topic]; ok {
				if c, ok := subs[id]; ok {
					delete(subs, id)
					close(c)
				}
				if len(subs) == 0 {
					delete(h.subs, topic)
				}
			}
		},
	}
}

func (h *Hub) Publish(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs[e.Topic] {
		select {
		case ch <- e:
		default:
			// Slow subscriber; drop instead of blocking the writer.
		}
	}
}
