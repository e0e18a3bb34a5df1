// Package csync provides small concurrency-safe containers.
package csync

import (
	"reflect"
	"sync"
)

// Value is a concurrency-safe holder of a value type. Reference types are
// rejected because callers could mutate them without holding the lock.
type Value[T any] struct {
	mu sync.RWMutex
	v  T
}

// NewValue creates a Value holding v. It panics when T is a pointer, slice
// or map.
func NewValue[T any](v T) *Value[T] {
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map:
		panic("csync: Value does not support reference types")
	}
	return &Value[T]{v: v}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.v
}

// Set replaces the current value.
func (v *Value[T]) Set(nv T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.v = nv
}

// Update replaces the current value with fn applied to it and returns the
// result.
func (v *Value[T]) Update(fn func(T) T) T {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.v = fn(v.v)
	return v.v
}
