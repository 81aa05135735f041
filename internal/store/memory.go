package store

import "sync"

// MemoryStore is an in-memory implementation of [Store].
//
// MemoryStore keeps the last saved list in process memory. It is used by
// tests and by monitors that run without a data directory.
type MemoryStore struct {
	hub

	mu      sync.RWMutex
	targets []Target
	saved   bool
}

// NewMemoryStore creates an empty, uninitialised [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{hub: newHub()}
}

// Load returns a copy of the last saved list.
func (m *MemoryStore) Load() []Target {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyTargets(m.targets)
}

// Save stores a copy of targets and notifies subscribers.
func (m *MemoryStore) Save(targets []Target) error {
	m.mu.Lock()
	m.targets = copyTargets(targets)
	m.saved = true
	m.mu.Unlock()

	m.publish(targets)
	return nil
}

// Update implements [Store]. A nil result from fn skips the write.
func (m *MemoryStore) Update(fn func([]Target) []Target) ([]Target, error) {
	m.mu.Lock()
	targets := fn(copyTargets(m.targets))
	if targets == nil {
		m.mu.Unlock()
		return nil, nil
	}
	m.targets = copyTargets(targets)
	m.saved = true
	m.mu.Unlock()

	m.publish(targets)
	return targets, nil
}

// Initialized reports whether Save has been called.
func (m *MemoryStore) Initialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saved
}
