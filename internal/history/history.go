// Package history stores the chat assistant's conversation turns.
package history

import (
	"context"
	"sync"
	"time"
)

// Entry is one user message and the raw assistant reply.
type Entry struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Assistant string    `json:"assistant"`
	Timestamp time.Time `json:"timestamp"`
}

// Store persists conversation entries in insertion order.
type Store interface {
	Add(ctx context.Context, e Entry) error
	List(ctx context.Context) ([]Entry, error)
	Close() error
}

// MemoryPath selects the in-memory store in Open.
const MemoryPath = ":memory:"

// Open returns the in-memory store for "" or MemoryPath and a SQLite store
// otherwise.
func Open(path string) (Store, error) {
	if path == "" || path == MemoryPath {
		return NewMemoryStore(), nil
	}
	return NewSQLiteStore(path)
}

// MemoryStore keeps entries for the lifetime of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Add(ctx context.Context, e Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
