package kvstore

import "sync"

// Bus fans key-change notifications out to every store attached to the same
// substrate. It stands in for the browser's cross-tab "storage" event: after
// a physical write, the writing store publishes its key and every sibling
// store re-reads the substrate and decides locally whether anything changed.
//
// Delivery is synchronous and in-process. A store never receives its own
// publications; the origin id assigned at attach time filters them out.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]func(origin uint64, key string)
}

// NewBus returns an empty notification bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]func(origin uint64, key string))}
}

// attach registers fn and returns the origin id the subscriber must use
// when publishing its own writes.
func (b *Bus) attach(fn func(origin uint64, key string)) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs[id] = fn
	return id
}

// detach removes a subscriber. Detaching an unknown id is a no-op.
func (b *Bus) detach(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}

// publish notifies every subscriber except the origin that key changed.
func (b *Bus) publish(origin uint64, key string) {
	b.mu.RLock()
	fns := make([]func(uint64, string), 0, len(b.subs))
	for id, fn := range b.subs {
		if id == origin {
			continue
		}
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(origin, key)
	}
}
