// Package kvstore implements the persistence primitive of the
// Routine-Calendary core: a shared key-value substrate plus typed,
// per-key stores with lazy defaults, pluggable codecs, debounced
// writes, and cross-context change notification.
package kvstore

import "context"

// Substrate is the raw storage shared by every open context of the
// application. Implementations must serialize individual key writes
// atomically; they carry no domain knowledge.
type Substrate interface {
	// Get returns the stored bytes for key. The boolean reports whether
	// the key exists; a missing key is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is a no-op.
	Delete(ctx context.Context, key string) error
}
