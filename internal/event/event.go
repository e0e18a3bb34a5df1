// Package event provides a small synchronous listener registry used by the
// grid models to notify collaborators after a mutation has completed.
package event

// Emitter holds an ordered set of listeners for events of type T. The zero
// value is ready to use. Emitter is not safe for concurrent use; all grid
// models are mutated and observed from the UI goroutine.
type Emitter[T any] struct {
	nextID    int
	listeners []listener[T]
}

type listener[T any] struct {
	id int
	fn func(T)
}

// Subscribe registers fn and returns a function that removes it again.
// Calling the returned function more than once is a no-op.
func (e *Emitter[T]) Subscribe(fn func(T)) func() {
	e.nextID++
	id := e.nextID
	e.listeners = append(e.listeners, listener[T]{id: id, fn: fn})
	return func() {
		for i, l := range e.listeners {
			if l.id == id {
				e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

// Emit calls every listener in subscription order. Listeners that subscribe
// or unsubscribe while an event is being emitted take effect for the next
// event.
func (e *Emitter[T]) Emit(v T) {
	if len(e.listeners) == 0 {
		return
	}
	snapshot := e.listeners
	for _, l := range snapshot {
		l.fn(v)
	}
}

// Len returns the number of registered listeners.
func (e *Emitter[T]) Len() int {
	return len(e.listeners)
}

// Clear removes all listeners.
func (e *Emitter[T]) Clear() {
	e.listeners = nil
}
