package trace

// defaultPoolCap bounds how many recycled records a builder retains.
const defaultPoolCap = 256

// pool is a per-builder free list of empty records. It is deliberately
// not a sync.Pool: the builder is single-writer by contract, so the
// free list needs no synchronization, and keeping it private to the
// builder keeps recycled records from migrating between contexts.
type pool struct {
	free []*Record
	cap  int
}

func newPool(capacity int) pool {
	if capacity <= 0 {
		capacity = defaultPoolCap
	}
	return pool{cap: capacity}
}

// get returns an empty record, recycling one when available.
func (p *pool) get() *Record {
	if n := len(p.free); n > 0 {
		rec := p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		return rec
	}
	return NewRecord(nil)
}

// put cleans rec and returns it to the free list, dropping it when the
// list is full.
func (p *pool) put(rec *Record) {
	rec.Clean()
	if len(p.free) < p.cap {
		p.free = append(p.free, rec)
	}
}
