// Package sync carries sync payloads from authoritative nodes to observers.
package sync

import (
	stdsync "sync"
)

// subscriberBuffer is the number of payloads queued per subscriber before
// new ones are dropped.
const subscriberBuffer = 16

// Hub fans sync payloads out to the observers of each node. It remembers
// the last payload per node so late subscribers start from current state.
type Hub struct {
	mu   stdsync.RWMutex
	subs map[string]map[int]chan []byte
	last map[string][]byte
	next int
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[int]chan []byte),
		last: make(map[string][]byte),
	}
}

// Publish sends payload to every subscriber of nodeID. Subscribers that are
// not keeping up miss the payload; the next one supersedes it anyway.
func (h *Hub) Publish(nodeID string, payload []byte) {
	msg := append([]byte(nil), payload...)

	h.mu.Lock()
	h.last[nodeID] = msg
	h.mu.Unlock()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs[nodeID] {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Last returns the most recent payload published for nodeID, or nil.
func (h *Hub) Last(nodeID string) []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last[nodeID]
}

// Subscribe registers a subscriber for nodeID. The returned function
// removes it and closes the channel; calling it more than once is safe.
func (h *Hub) Subscribe(nodeID string) (<-chan []byte, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan []byte, subscriberBuffer)
	id := h.next
	h.next++
	if h.subs[nodeID] == nil {
		h.subs[nodeID] = make(map[int]chan []byte)
	}
	h.subs[nodeID][id] = ch

	var once stdsync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[nodeID], id)
			if len(h.subs[nodeID]) == 0 {
				delete(h.subs, nodeID)
			}
			close(ch)
		})
	}
	return ch, cancel
}

// Subscribers returns the number of live subscribers for nodeID.
func (h *Hub) Subscribers(nodeID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[nodeID])
}
