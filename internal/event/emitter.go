// Package event provides a small typed multi-listener emitter. Listeners are
// invoked synchronously, in subscription order, on the goroutine that emits.
package event

import "sync"

// Emitter dispatches values of type T to subscribed listeners. The zero value
// is ready to use.
type Emitter[T any] struct {
	mu        sync.Mutex
	nextID    int
	order     []int
	listeners map[int]func(T)
}

// Subscribe registers fn and returns a handle that removes it. Unsubscribing
// twice is a no-op.
func (e *Emitter[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listeners == nil {
		e.listeners = make(map[int]func(T))
	}
	id := e.nextID
	e.nextID++
	e.listeners[id] = fn
	e.order = append(e.order, id)
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners, id)
	}
}

// Emit delivers v to every listener in subscription order. The listener set is
// snapshotted first, so handlers may subscribe or unsubscribe reentrantly.
func (e *Emitter[T]) Emit(v T) {
	e.mu.Lock()
	fns := make([]func(T), 0, len(e.listeners))
	kept := e.order[:0]
	for _, id := range e.order {
		if fn, ok := e.listeners[id]; ok {
			fns = append(fns, fn)
			kept = append(kept, id)
		}
	}
	e.order = kept
	e.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Len returns the number of active listeners.
func (e *Emitter[T]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners)
}
