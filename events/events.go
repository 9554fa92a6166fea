package events

import "sync"

// Hub fans every broadcast out to all subscribers. Sends never block: a subscriber whose buffer is full misses the
// event.
type Hub[T any] struct {
	mu         sync.Mutex
	subs       map[int]chan T
	next       int
	size       int
	replayLast bool
	last       T
	hasLast    bool
	closed     bool
}

// NewHub creates a hub whose subscriptions buffer size events. With replayLast a new subscriber starts with the most
// recent event.
func NewHub[T any](size int, replayLast bool) *Hub[T] {
	return &Hub[T]{subs: map[int]chan T{}, size: size, replayLast: replayLast}
}

func (h *Hub[T]) Subscribe() (int, <-chan T, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan T, h.size)
	if h.closed {
		close(ch)
		return id, ch, func() {}
	}
	if h.replayLast && h.hasLast {
		ch <- h.last
	}
	h.subs[id] = ch
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if c, ok := h.subs[id]; ok {
			close(c)
			delete(h.subs, id)
		}
	}
	return id, ch, cancel
}

func (h *Hub[T]) Broadcast(event T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.last = event
	h.hasLast = true
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Close ends every subscription; subscribers see their channel closed once drained.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		close(ch)
		delete(h.subs, id)
	}
}

func (h *Hub[T]) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
