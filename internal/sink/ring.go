package sink

import (
	"sync"

	"github.com/GriffinCanCode/TraceForge/internal/export"
)

// Ring keeps the last N completed traces in memory for the admin API.
type Ring struct {
	mu       sync.RWMutex
	traces   []*export.Trace
	capacity int
	head     int
	full     bool
}

// NewRing creates a ring with the given capacity.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = 128
	}
	return &Ring{
		traces:   make([]*export.Trace, capacity),
		capacity: capacity,
	}
}

// Push stores one trace, overwriting the oldest when full.
func (r *Ring) Push(t *export.Trace) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.traces[r.head] = t
	r.head = (r.head + 1) % r.capacity
	if r.head == 0 {
		r.full = true
	}
}

// Snapshot returns the stored traces in arrival order, oldest first.
func (r *Ring) Snapshot() []*export.Trace {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.full {
		out := make([]*export.Trace, r.head)
		copy(out, r.traces[:r.head])
		return out
	}

	out := make([]*export.Trace, 0, r.capacity)
	out = append(out, r.traces[r.head:]...)
	out = append(out, r.traces[:r.head]...)
	return out
}

// Len returns how many traces are stored.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.full {
		return r.capacity
	}
	return r.head
}
