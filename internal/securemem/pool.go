package securemem

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/awnumar/memguard"
)

// Pool maps names (provider IDs) to secrets.
type Pool struct {
	mu    sync.RWMutex
	items map[string]*String
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{
		items: make(map[string]*String),
	}
}

// Set stores value under key, destroying any previous value.
func (p *Pool) Set(key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if existing, ok := p.items[key]; ok {
		existing.Destroy()
	}
	p.items[key] = NewString(value)
}

// GetString returns a plaintext copy of the value for key, or "".
func (p *Pool) GetString(key string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if s, ok := p.items[key]; ok {
		return s.String()
	}
	return ""
}

// Has reports whether key holds a non-empty secret.
func (p *Pool) Has(key string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.items[key]
	return ok && !s.IsEmpty()
}

// Delete wipes and removes key.
func (p *Pool) Delete(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s, ok := p.items[key]; ok {
		s.Destroy()
		delete(p.items, key)
	}
}

// Clear wipes every secret in the pool.
func (p *Pool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for key, s := range p.items {
		s.Destroy()
		delete(p.items, key)
	}
}

// Keys returns the sorted key names.
func (p *Pool) Keys() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	keys := make([]string, 0, len(p.items))
	for key := range p.items {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// String lists the keys only, so a pool is safe to log.
func (p *Pool) String() string {
	return fmt.Sprintf("SecurePool{%s}", strings.Join(p.Keys(), ", "))
}

// Cleanup purges all memguard buffers. Call before exit.
func Cleanup() {
	memguard.Purge()
}
