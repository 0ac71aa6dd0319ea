package perantara

import "sync"

// Handler is one interceptor: a fulfillment step paired with an optional
// rejection step. OnFulfilled receives the current value on the success
// path; OnRejected receives the propagating error on the failure path and
// may recover by returning a value with a nil error. A nil OnRejected lets
// failures pass through unchanged.
type Handler[T any] struct {
	OnFulfilled func(T) (T, error)
	OnRejected  func(error) (T, error)
}

// Manager is an ordered, mutable registry of interceptor handlers. Each
// handler occupies a fixed slot; ejecting nulls the slot in place instead
// of compacting, so ids issued by Use stay valid forever. It is safe for
// concurrent use.
type Manager[T any] struct {
	mu    sync.RWMutex
	slots []*Handler[T]
}

// NewManager creates an empty manager.
func NewManager[T any]() *Manager[T] {
	return &Manager[T]{}
}

// Use appends a handler and returns its id: the slot's position at the time
// of insertion. Either callback may be nil.
func (m *Manager[T]) Use(onFulfilled func(T) (T, error), onRejected func(error) (T, error)) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots = append(m.slots, &Handler[T]{
		OnFulfilled: onFulfilled,
		OnRejected:  onRejected,
	})
	return len(m.slots) - 1
}

// Eject removes the handler registered under id. Removal is irreversible
// and leaves a gap; later handlers keep their positions and ids. Ejecting
// an already-ejected id is a no-op. An id never issued by Use returns
// ErrInvalidHandlerID.
func (m *Manager[T]) Eject(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id < 0 || id >= len(m.slots) {
		return ErrInvalidHandlerID
	}
	m.slots[id] = nil
	return nil
}

// Len returns the number of currently registered (non-ejected) handlers.
func (m *Manager[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, h := range m.slots {
		if h != nil {
			n++
		}
	}
	return n
}

// Each visits every registered handler in insertion order, skipping ejected
// slots. It iterates over a point-in-time snapshot, so mutations from visit
// or from other goroutines do not affect the ongoing traversal.
func (m *Manager[T]) Each(visit func(Handler[T])) {
	for _, h := range m.snapshot() {
		visit(h)
	}
}

// snapshot copies the live handlers in insertion order. Chain assembly in
// Client.Do reads exactly one snapshot per phase, which is the isolation
// boundary for concurrent Use/Eject calls.
func (m *Manager[T]) snapshot() []Handler[T] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Handler[T], 0, len(m.slots))
	for _, h := range m.slots {
		if h != nil {
			out = append(out, *h)
		}
	}
	return out
}
