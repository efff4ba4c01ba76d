package kvstore

import (
	"fmt"
	"sync"
)

// MemoryEngine keeps all namespaces in memory. Data survives Close and Open
// on the same instance, which makes it usable as a stand-in for a restart in
// tests.
type MemoryEngine struct {
	mu sync.Mutex

	data      map[string]map[string]string
	namespace string
	open      bool
	pending   staging
}

// NewMemoryEngine creates an empty in-memory engine.
func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{data: make(map[string]map[string]string)}
}

// Open selects namespace.
func (e *MemoryEngine) Open(namespace string) error {
	if !validKey(namespace) {
		return fmt.Errorf("%w: namespace %q", ErrInvalidKey, namespace)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.data[namespace] == nil {
		e.data[namespace] = make(map[string]string)
	}
	e.namespace = namespace
	e.open = true
	e.pending = make(staging)
	return nil
}

// Erase wipes every namespace.
func (e *MemoryEngine) Erase() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.data = make(map[string]map[string]string)
	e.open = false
	e.pending = nil
	return nil
}

// GetString returns the value for key.
func (e *MemoryEngine) GetString(key string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.open {
		return "", ErrNotOpen
	}
	if v, ok, staged := e.pending.lookup(key); staged {
		if !ok {
			return "", ErrNotFound
		}
		return v, nil
	}
	v, ok := e.data[e.namespace][key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// SetString stages value for key.
func (e *MemoryEngine) SetString(key, value string) error {
	if !validKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.open {
		return ErrNotOpen
	}
	e.pending.set(key, value)
	return nil
}

// EraseKey stages removal of key.
func (e *MemoryEngine) EraseKey(key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.open {
		return ErrNotOpen
	}
	e.pending.erase(key)
	return nil
}

// Commit applies staged changes.
func (e *MemoryEngine) Commit() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.open {
		return ErrNotOpen
	}
	e.pending.apply(e.data[e.namespace])
	e.pending = make(staging)
	return nil
}

// Discard drops staged changes.
func (e *MemoryEngine) Discard() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.open {
		return ErrNotOpen
	}
	e.pending = make(staging)
	return nil
}

// Close discards uncommitted changes.
func (e *MemoryEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.open = false
	e.pending = nil
	return nil
}

// Compile-time interface satisfaction check.
var _ Engine = (*MemoryEngine)(nil)
