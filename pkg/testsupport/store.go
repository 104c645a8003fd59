package testsupport

import (
	"context"
	"sort"
	"sync"

	"github.com/goliatone/go-typed-content/cache"
)

// StoreCall is a single operation recorded by RecordingStore.
type StoreCall struct {
	Op         string
	Key        string
	Value      any
	Deps       cache.Dependencies
	Expiration cache.Expiration
}

// RecordingStore is an in-memory cache.Store that records every call.
// Removing a key also removes the entries depending on it. Expiration is
// recorded but not evaluated.
type RecordingStore struct {
	mu      sync.Mutex
	calls   []StoreCall
	entries map[string]StoreCall

	// GetErr, InsertErr and RemoveErr are returned by the matching operation
	// when set.
	GetErr    error
	InsertErr error
	RemoveErr error
}

var _ cache.Store = (*RecordingStore)(nil)

// NewRecordingStore creates an empty RecordingStore.
func NewRecordingStore() *RecordingStore {
	return &RecordingStore{entries: make(map[string]StoreCall)}
}

// Get implements cache.Store.
func (s *RecordingStore) Get(ctx context.Context, key string) (any, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, StoreCall{Op: "Get", Key: key})
	if s.GetErr != nil {
		return nil, false, s.GetErr
	}
	e, ok := s.entries[key]
	return e.Value, ok, nil
}

// Insert implements cache.Store.
func (s *RecordingStore) Insert(ctx context.Context, key string, value any, deps cache.Dependencies, exp cache.Expiration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	call := StoreCall{Op: "Insert", Key: key, Value: value, Deps: deps, Expiration: exp}
	s.calls = append(s.calls, call)
	if s.InsertErr != nil {
		return s.InsertErr
	}
	s.entries[key] = call
	return nil
}

// RemoveLocal implements cache.Store.
func (s *RecordingStore) RemoveLocal(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, StoreCall{Op: "RemoveLocal", Key: key})
	if s.RemoveErr != nil {
		return s.RemoveErr
	}
	s.removeLocked(key)
	return nil
}

func (s *RecordingStore) removeLocked(token string) {
	delete(s.entries, token)
	for key, e := range s.entries {
		for _, dep := range e.Deps.Tokens() {
			if dep == token {
				s.removeLocked(key)
				break
			}
		}
	}
}

// Put seeds an entry without recording a call.
func (s *RecordingStore) Put(key string, value any, deps cache.Dependencies) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = StoreCall{Op: "Insert", Key: key, Value: value, Deps: deps}
}

// Entry returns the insert call currently stored under key.
func (s *RecordingStore) Entry(key string) (StoreCall, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	return e, ok
}

// Keys returns the stored keys in order.
func (s *RecordingStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Calls returns the recorded calls, optionally filtered by operation.
func (s *RecordingStore) Calls(ops ...string) []StoreCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(ops) == 0 {
		return append([]StoreCall(nil), s.calls...)
	}
	var out []StoreCall
	for _, c := range s.calls {
		for _, op := range ops {
			if c.Op == op {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// Reset clears recorded calls but keeps stored entries.
func (s *RecordingStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}
