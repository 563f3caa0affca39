// Package registry keeps the table of active chat connections.
//
// Registry is not safe for concurrent use: it is owned and mutated by a single
// event loop goroutine.
package registry

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/wtask/relay/internal/chat/peer"
)

// Connection - registered peer.
type Connection struct {
	// ID - permanent client id, never reused within one Registry.
	ID int
	// Slot - registry position, reused after removal.
	Slot int
	// Session - correlation id for logs.
	Session  uuid.UUID
	Peer     peer.Address
	Handle   Handle
	JoinedAt time.Time
}

// PeerString - printable peer address, "unknown" when address is not an IP.
func (c Connection) PeerString() string {
	if c.Peer == nil {
		return "unknown"
	}
	return c.Peer.String()
}

// Registry - fixed capacity table of connections.
type Registry struct {
	capacity int
	nextID   int
	slots    []*Connection
	index    map[Handle]int
	active   int
	now      func() time.Time
}

// New - builds registry with given capacity. Client ids start from 1.
func New(capacity int) (*Registry, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w (%d)", ErrCapacity, capacity)
	}
	return &Registry{
		capacity: capacity,
		nextID:   1,
		slots:    make([]*Connection, 0, min(capacity, 64)),
		index:    make(map[Handle]int),
		now:      time.Now,
	}, nil
}

// Cap - max number of active connections.
func (r *Registry) Cap() int { return r.capacity }

// Len - number of active connections.
func (r *Registry) Len() int { return r.active }

// Full - reports whether admission would fail with ErrFull.
func (r *Registry) Full() bool { return r.active >= r.capacity }

// NextID - id which will be assigned by next successful Admit.
func (r *Registry) NextID() int { return r.nextID }

// Admit - registers handle in the lowest free slot and assigns next client id.
// The id counter is not touched on failure.
func (r *Registry) Admit(h Handle, addr peer.Address) (Connection, error) {
	if _, ok := r.index[h]; ok {
		return Connection{}, ErrHandleKept
	}
	slot := r.freeSlot()
	if slot < 0 {
		return Connection{}, ErrFull
	}
	c := &Connection{
		ID:       r.nextID,
		Slot:     slot,
		Session:  uuid.New(),
		Peer:     addr,
		Handle:   h,
		JoinedAt: r.now(),
	}
	r.nextID++
	if slot == len(r.slots) {
		r.slots = append(r.slots, c)
	} else {
		r.slots[slot] = c
	}
	r.index[h] = slot
	r.active++
	return *c, nil
}

// Remove - frees slot of handle. Second removal of the same handle reports false.
func (r *Registry) Remove(h Handle) (Connection, bool) {
	slot, ok := r.index[h]
	if !ok {
		return Connection{}, false
	}
	c := r.slots[slot]
	r.slots[slot] = nil
	delete(r.index, h)
	r.active--
	return *c, true
}

// Lookup - finds active connection by handle.
func (r *Registry) Lookup(h Handle) (Connection, bool) {
	slot, ok := r.index[h]
	if !ok {
		return Connection{}, false
	}
	return *r.slots[slot], true
}

// Active - snapshot of active connections in slot order.
func (r *Registry) Active() []Connection {
	return lo.FilterMap(r.slots, func(c *Connection, _ int) (Connection, bool) {
		if c == nil {
			return Connection{}, false
		}
		return *c, true
	})
}

func (r *Registry) freeSlot() int {
	if r.active >= r.capacity {
		return -1
	}
	for i, c := range r.slots {
		if c == nil {
			return i
		}
	}
	return len(r.slots)
}
