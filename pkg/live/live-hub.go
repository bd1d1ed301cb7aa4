// Package live fans out full-snapshot notifications of artwork tallies to websocket
// subscribers, so viewing surfaces can refresh their like and comment counts without
// polling.
package live

import (
	"sync"

	"github.com/artistry/webapi/pkg/ntime"
)

// Snapshot carries the complete current tallies of one artwork. Every notification is
// self-consistent and replaces the previous one wholesale, so out of order delivery
// is immaterial.
type Snapshot struct {
	ArtworkId string
	Likes     int
	Comments  int
	Date      ntime.NTime
}

// Hub is an in-memory fan-out dispatcher keyed by artwork. Each subscriber receives
// snapshots via its own buffered channel; when a subscriber's buffer is full the
// snapshot is dropped for that subscriber only, so a slow reader never backpressures
// the request path. A dropped snapshot is made up for by the next one.
//
// The hub is concurrency safe.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[uint64]chan Snapshot
	nextId      uint64
	bufSize     int
}

// NewHub constructs a hub with the given per-subscriber buffer size.
// If bufSize <= 0, a default of 16 is used.
func NewHub(bufSize int) *Hub {
	if bufSize <= 0 {
		bufSize = 16
	}
	return &Hub{
		subscribers: make(map[string]map[uint64]chan Snapshot),
		bufSize:     bufSize,
	}
}

// Register subscribes to one artwork's snapshots and returns the subscription id along
// with the receiving channel. Callers must Unregister the id to release resources.
func (h *Hub) Register(artworkId string) (uint64, <-chan Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var id = h.nextId
	h.nextId++

	var ch = make(chan Snapshot, h.bufSize)
	if h.subscribers[artworkId] == nil {
		h.subscribers[artworkId] = make(map[uint64]chan Snapshot)
	}
	h.subscribers[artworkId][id] = ch
	return id, ch
}

// Unregister removes the subscription and closes its channel. It is safe to call
// multiple times; unknown ids are ignored.
func (h *Hub) Unregister(artworkId string, id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subscribers, found := h.subscribers[artworkId]; found {
		if ch, ok := subscribers[id]; ok {
			delete(subscribers, id)
			close(ch)
		}
		if len(subscribers) == 0 {
			delete(h.subscribers, artworkId)
		}
	}
}

// Broadcast delivers the snapshot to the artwork's subscribers, best effort.
func (h *Hub) Broadcast(snapshot Snapshot) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subscribers[snapshot.ArtworkId] {
		select {
		case ch <- snapshot:
		default:
			// drop for the slow subscriber
		}
	}
}

// Size returns the number of active subscriptions for one artwork.
func (h *Hub) Size(artworkId string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[artworkId])
}
