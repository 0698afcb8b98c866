package appdata

import (
	"context"
	"time"

	"github.com/LautaroLeall/Routine-Calendary/internal/kvstore"
	"github.com/LautaroLeall/Routine-Calendary/internal/logging"
)

// StorageKey is the substrate key holding the user-id → Document map.
const StorageKey = "appData"

// Store is the per-user document store. It owns the map from user id to
// Document; documents are keyed by the credential record's id, which is
// stable, rather than by email, which a profile update can change.
//
// All operations degrade rather than fail: the underlying key-value store
// logs persistence problems and keeps serving the in-memory state.
type Store struct {
	docs *kvstore.Store[map[string]Document]
}

// NewStore builds the document store over the shared substrate. A non-zero
// debounce coalesces rapid document writes into one physical write.
func NewStore(substrate kvstore.Substrate, bus *kvstore.Bus, debounce time.Duration, log logging.Logger) *Store {
	return &Store{
		docs: kvstore.New(substrate, bus, StorageKey, kvstore.Options[map[string]Document]{
			Default:  func() map[string]Document { return make(map[string]Document) },
			Debounce: debounce,
			Logger:   log,
		}),
	}
}

// Document returns the stored document for userID, or the canonical empty
// document when none exists yet. It never returns nil collections.
func (s *Store) Document(ctx context.Context, userID string) Document {
	if doc, ok := s.docs.Get(ctx)[userID]; ok {
		return doc.normalized().clone()
	}
	return EmptyDocument()
}

// SetDocument replaces the document stored for userID.
func (s *Store) SetDocument(ctx context.Context, userID string, doc Document) {
	s.docs.Update(ctx, func(all map[string]Document) map[string]Document {
		next := cloneDocMap(all)
		next[userID] = doc.normalized().clone()
		return next
	})
}

// UpdateDocument applies fn to the current document for userID as one
// read-modify-write step, so concurrent logical mutations within this
// context cannot lose updates.
func (s *Store) UpdateDocument(ctx context.Context, userID string, fn func(Document) Document) Document {
	var result Document
	s.docs.Update(ctx, func(all map[string]Document) map[string]Document {
		cur, ok := all[userID]
		if !ok {
			cur = EmptyDocument()
		}
		// fn gets an isolated copy; the stored value is another copy, so
		// neither the caller nor fn can alias stored state afterwards.
		result = fn(cur.normalized().clone()).normalized()
		next := cloneDocMap(all)
		next[userID] = result.clone()
		return next
	})
	return result
}

// AppendLog atomically appends entry to the user's log stream.
func (s *Store) AppendLog(ctx context.Context, userID string, entry LogEntry) {
	s.UpdateDocument(ctx, userID, func(doc Document) Document {
		doc.Logs = append(append([]LogEntry(nil), doc.Logs...), entry)
		return doc
	})
}

// ClearLogs atomically resets the user's log stream to empty.
func (s *Store) ClearLogs(ctx context.Context, userID string) {
	s.UpdateDocument(ctx, userID, func(doc Document) Document {
		doc.Logs = []LogEntry{}
		return doc
	})
}

// Rekey moves a document from oldKey to newKey, for index migrations such
// as the email → id switch. A missing oldKey is a no-op.
func (s *Store) Rekey(ctx context.Context, oldKey, newKey string) {
	if oldKey == newKey {
		return
	}
	s.docs.Update(ctx, func(all map[string]Document) map[string]Document {
		doc, ok := all[oldKey]
		if !ok {
			return all
		}
		next := cloneDocMap(all)
		next[newKey] = doc
		delete(next, oldKey)
		return next
	})
}

// Delete removes the document for userID entirely. The credential layer
// calls this when an account is deleted.
func (s *Store) Delete(ctx context.Context, userID string) {
	s.docs.Update(ctx, func(all map[string]Document) map[string]Document {
		if _, ok := all[userID]; !ok {
			return all
		}
		next := cloneDocMap(all)
		delete(next, userID)
		return next
	})
}

// Subscribe registers h to run when another context changes the document
// map. The returned function unsubscribes.
func (s *Store) Subscribe(h func(map[string]Document)) func() {
	return s.docs.Subscribe(h)
}

// Flush forces out any pending debounced write.
func (s *Store) Flush(ctx context.Context) {
	s.docs.Flush(ctx)
}

// Close flushes and detaches the store from the notification bus.
func (s *Store) Close(ctx context.Context) {
	s.docs.Close(ctx)
}

func cloneDocMap(all map[string]Document) map[string]Document {
	next := make(map[string]Document, len(all)+1)
	for k, v := range all {
		next[k] = v
	}
	return next
}
