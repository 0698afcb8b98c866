package kvstore

import (
	"context"
	"encoding/json"
	"reflect"
	"sync"
	"time"

	"github.com/LautaroLeall/Routine-Calendary/internal/logging"
)

// Options configures a Store.
type Options[T any] struct {
	// Default produces the initial value. It is evaluated lazily, on the
	// first read miss or decode failure, never eagerly. A nil Default
	// yields the zero value of T.
	Default func() T

	// Encode and Decode form the serialization pair. When nil, a
	// structural JSON codec is used. Decode failures degrade to Default
	// and are logged; they never propagate to callers.
	Encode func(T) ([]byte, error)
	Decode func([]byte) (T, error)

	// Debounce delays physical writes: repeated Sets within the window
	// coalesce into one write carrying the latest value, and the timer
	// resets on each Set. Zero writes synchronously.
	Debounce time.Duration

	// Logger receives diagnostics for degraded reads and failed writes.
	Logger logging.Logger
}

// Store is a typed view over one substrate key. Reads never fail: decode or
// substrate errors degrade to the configured default. Writes never fail from
// the caller's perspective: substrate errors are logged and swallowed, and
// the in-memory value stays authoritative for this context.
//
// Stores sharing a Bus observe each other's writes eventually; a change
// handler fires only when the re-read value structurally differs from the
// one currently held.
type Store[T any] struct {
	substrate Substrate
	bus       *Bus
	key       string
	opts      Options[T]
	log       logging.Logger

	mu       sync.Mutex
	loaded   bool
	dirty    bool
	value    T
	timer    *time.Timer
	closed   bool
	busID    uint64
	handlers map[int]func(T)
	nextH    int
}

// New builds a Store over key. bus may be nil for a store that neither
// publishes nor receives cross-context notifications.
func New[T any](substrate Substrate, bus *Bus, key string, opts Options[T]) *Store[T] {
	log := opts.Logger
	if log == nil {
		log = logging.NewNop()
	}
	s := &Store[T]{
		substrate: substrate,
		bus:       bus,
		key:       key,
		opts:      opts,
		log:       log.With("key", key),
		handlers:  make(map[int]func(T)),
	}
	if bus != nil {
		s.busID = bus.attach(s.onRemoteChange)
	}
	return s
}

// Key returns the substrate key this store is bound to.
func (s *Store[T]) Key() string { return s.key }

// Get returns the current value, reading and decoding from the substrate on
// first use. It always returns a valid value.
func (s *Store[T]) Get(ctx context.Context) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

// Set replaces the value. With a debounce window configured the physical
// write is deferred and coalesced; otherwise it happens before Set returns.
func (s *Store[T]) Set(ctx context.Context, v T) {
	s.mu.Lock()
	wrote := s.setLocked(ctx, v)
	s.mu.Unlock()
	if wrote {
		s.publish()
	}
}

// Update applies fn to the current value and stores the result as one
// read-modify-write step, so two logical mutations in the same context
// cannot clobber each other. The updated value is returned.
func (s *Store[T]) Update(ctx context.Context, fn func(T) T) T {
	s.mu.Lock()
	next := fn(s.loadLocked(ctx))
	wrote := s.setLocked(ctx, next)
	s.mu.Unlock()
	if wrote {
		s.publish()
	}
	return next
}

// Subscribe registers h to run when a sibling context changes this key.
// The returned function unsubscribes.
func (s *Store[T]) Subscribe(h func(T)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextH++
	id := s.nextH
	s.handlers[id] = h
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.handlers, id)
	}
}

// Flush forces any pending debounced write out immediately.
func (s *Store[T]) Flush(ctx context.Context) {
	s.mu.Lock()
	s.stopTimerLocked()
	wrote := s.flushLocked(ctx)
	s.mu.Unlock()
	if wrote {
		s.publish()
	}
}

// Close flushes pending state and detaches the store from the bus.
func (s *Store[T]) Close(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopTimerLocked()
	wrote := s.flushLocked(ctx)
	s.mu.Unlock()
	if wrote {
		s.publish()
	}

	if s.bus != nil {
		s.bus.detach(s.busID)
	}
}

func (s *Store[T]) defaultValue() T {
	if s.opts.Default != nil {
		return s.opts.Default()
	}
	var zero T
	return zero
}

func (s *Store[T]) encode(v T) ([]byte, error) {
	if s.opts.Encode != nil {
		return s.opts.Encode(v)
	}
	return json.Marshal(v)
}

func (s *Store[T]) decode(raw []byte) (T, error) {
	if s.opts.Decode != nil {
		return s.opts.Decode(raw)
	}
	var v T
	err := json.Unmarshal(raw, &v)
	return v, err
}

func (s *Store[T]) loadLocked(ctx context.Context) T {
	if s.loaded {
		return s.value
	}
	raw, ok, err := s.substrate.Get(ctx, s.key)
	switch {
	case err != nil:
		s.log.Warn(ctx, "substrate read failed, using default", "error", err)
		s.value = s.defaultValue()
	case !ok:
		s.value = s.defaultValue()
	default:
		v, err := s.decode(raw)
		if err != nil {
			s.log.Warn(ctx, "stored value is not decodable, using default", "error", err)
			s.value = s.defaultValue()
		} else {
			s.value = v
		}
	}
	s.loaded = true
	return s.value
}

// setLocked reports whether a physical write happened; with a debounce
// window configured it only arms the timer.
func (s *Store[T]) setLocked(ctx context.Context, v T) bool {
	s.value = v
	s.loaded = true
	s.dirty = true

	if s.opts.Debounce > 0 {
		s.stopTimerLocked()
		s.timer = time.AfterFunc(s.opts.Debounce, func() {
			s.Flush(context.Background())
		})
		return false
	}
	return s.flushLocked(ctx)
}

func (s *Store[T]) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// flushLocked writes the held value out and reports whether it did. The
// caller publishes the change after releasing the lock; publishing under
// the lock would invert lock order against a sibling store flushing the
// same key.
func (s *Store[T]) flushLocked(ctx context.Context) bool {
	if !s.dirty {
		return false
	}
	s.dirty = false
	raw, err := s.encode(s.value)
	if err != nil {
		s.log.Error(ctx, "encode failed, value not persisted", "error", err)
		return false
	}
	if err := s.substrate.Set(ctx, s.key, raw); err != nil {
		s.log.Error(ctx, "substrate write failed", "error", err)
		return false
	}
	return true
}

func (s *Store[T]) publish() {
	if s.bus != nil {
		s.bus.publish(s.busID, s.key)
	}
}

// onRemoteChange re-reads the substrate after another context announced a
// write. Local state and handlers are only touched when the incoming value
// structurally differs from the held one, which breaks propagation loops.
func (s *Store[T]) onRemoteChange(_ uint64, key string) {
	if key != s.key {
		return
	}
	ctx := context.Background()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	raw, ok, err := s.substrate.Get(ctx, s.key)
	if err != nil {
		s.log.Warn(ctx, "substrate re-read failed after remote change", "error", err)
		s.mu.Unlock()
		return
	}
	var incoming T
	if !ok {
		incoming = s.defaultValue()
	} else {
		incoming, err = s.decode(raw)
		if err != nil {
			s.log.Warn(ctx, "remote value is not decodable, keeping local state", "error", err)
			s.mu.Unlock()
			return
		}
	}
	if s.loaded && reflect.DeepEqual(incoming, s.value) {
		s.mu.Unlock()
		return
	}
	s.value = incoming
	s.loaded = true
	handlers := make([]func(T), 0, len(s.handlers))
	for _, h := range s.handlers {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()

	for _, h := range handlers {
		h(incoming)
	}
}
