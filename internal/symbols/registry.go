// Package symbols maintains the id/name table that trace records
// reference for class, method, and signature identifiers. Bindings
// arrive preassigned from the instrumentation side (NewSymbol events)
// or are interned locally; either way an id maps to exactly one name.
package symbols

import (
	"fmt"
	"sync"
)

// Registry is a thread-safe bidirectional symbol table.
type Registry struct {
	mu     sync.RWMutex
	byID   map[int32]string
	byName map[string]int32
	next   int32
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[int32]string),
		byName: make(map[string]int32),
		next:   1,
	}
}

// Register binds a preassigned id to name, as announced by a NewSymbol
// event. The first binding for an id wins; a conflicting rebind is
// ignored so replayed journals stay consistent.
func (r *Registry) Register(id int32, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; ok {
		return
	}
	r.byID[id] = name
	if _, ok := r.byName[name]; !ok {
		r.byName[name] = id
	}
	if id >= r.next {
		r.next = id + 1
	}
}

// Intern returns the id bound to name, assigning a fresh one if the
// name was not seen before.
func (r *Registry) Intern(name string) int32 {
	r.mu.RLock()
	id, ok := r.byName[name]
	r.mu.RUnlock()
	if ok {
		return id
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byName[name]; ok {
		return id
	}
	id = r.next
	r.next++
	r.byID[id] = name
	r.byName[name] = id
	return id
}

// Name returns the name bound to id.
func (r *Registry) Name(id int32) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.byID[id]
	return name, ok
}

// Resolve returns the name bound to id, or a placeholder for unknown
// ids so export never fails on a missing binding.
func (r *Registry) Resolve(id int32) string {
	if name, ok := r.Name(id); ok {
		return name
	}
	return fmt.Sprintf("#%d", id)
}

// Len returns the number of bindings.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// Snapshot returns a copy of all bindings.
func (r *Registry) Snapshot() map[int32]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[int32]string, len(r.byID))
	for id, name := range r.byID {
		out[id] = name
	}
	return out
}
