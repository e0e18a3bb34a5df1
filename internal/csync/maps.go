package csync

import (
	"iter"
	"maps"
	"sync"
)

// Map is a concurrency-safe generic map.
type Map[K comparable, V any] struct {
	mu    sync.RWMutex
	inner map[K]V
}

// NewMap creates an empty Map.
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{inner: make(map[K]V)}
}

// Get returns the value stored for key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.inner[key]
	return v, ok
}

// Set stores value under key.
func (m *Map[K, V]) Set(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inner[key] = value
}

// Del removes key.
func (m *Map[K, V]) Del(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inner, key)
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.inner)
}

// Reset removes every entry.
func (m *Map[K, V]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.inner)
}

// DeleteFunc removes every entry for which del returns true and reports how
// many were removed.
func (m *Map[K, V]) DeleteFunc(del func(K, V) bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.inner)
	maps.DeleteFunc(m.inner, del)
	return n - len(m.inner)
}

// Seq2 iterates over a snapshot of the map.
func (m *Map[K, V]) Seq2() iter.Seq2[K, V] {
	m.mu.RLock()
	snapshot := maps.Clone(m.inner)
	m.mu.RUnlock()
	return maps.All(snapshot)
}
