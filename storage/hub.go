package storage

import "sync"

type set map[*subscription]struct{}

// Hub keeps track of the live subscriptions of each collection.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]set
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]set)}
}

func (h *Hub) Register(collection string, sub *subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subscribers[collection]; !ok {
		h.subscribers[collection] = make(set)
	}
	h.subscribers[collection][sub] = struct{}{}
}

// Unregister removes the subscription and drops the collection entry once empty.
func (h *Hub) Unregister(collection string, sub *subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.subscribers[collection]; ok {
		delete(members, sub)
		if len(members) == 0 {
			delete(h.subscribers, collection)
		}
	}
}

// Notify wakes every subscriber of the collection without blocking the writer.
func (h *Hub) Notify(collection string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subscribers[collection] {
		sub.notify()
	}
}

func (h *Hub) Count(collection string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[collection])
}

func (h *Hub) CloseAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, members := range h.subscribers {
		for sub := range members {
			sub.cancel()
		}
	}
}
