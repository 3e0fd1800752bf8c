package trace

// Record flags.
const (
	// FlagTraceBegin marks the frame that opened a trace.
	FlagTraceBegin uint32 = 1 << iota
	// FlagOverflow marks a frame created past the trace's record budget.
	FlagOverflow
)

// recordState tags a record's position in its lifecycle. An explicit
// tag is used instead of overloading ClassID's zero value, so symbol
// id 0 stays a legal identifier.
type recordState uint8

const (
	// stateEmpty: freshly created or recycled, stands in for "nothing open".
	stateEmpty recordState = iota
	// stateOpen: populated by TraceEnter, not yet closed.
	stateOpen
)

// Record is one node in a call tree: the entry/exit of a single
// instrumented method invocation. Records are mutable and recyclable;
// a Record is only safe to read once the tree containing it has been
// handed to a sink.
type Record struct {
	classID     int32
	methodID    int32
	signatureID int32

	// timeNS holds the absolute start timestamp (ns) while the frame
	// is open, then the elapsed duration once it closes.
	timeNS int64

	calls  int64
	errors int64

	exception error
	attrs     map[int32]any

	flags  uint32
	state  recordState
	marker *Marker

	// parent is a non-owning back-reference used for stack unwinding
	// and flag propagation; ownership runs parent -> children.
	parent   *Record
	children []*Record
}

// NewRecord creates an empty record with the given parent frame.
func NewRecord(parent *Record) *Record {
	return &Record{parent: parent}
}

// ClassID returns the class symbol id.
func (r *Record) ClassID() int32 { return r.classID }

// MethodID returns the method symbol id.
func (r *Record) MethodID() int32 { return r.methodID }

// SignatureID returns the signature symbol id.
func (r *Record) SignatureID() int32 { return r.signatureID }

// Time returns the start timestamp while the frame is open, or the
// elapsed duration (ns) once it is closed.
func (r *Record) Time() int64 { return r.timeNS }

// Calls returns the aggregate call count rooted at this frame.
func (r *Record) Calls() int64 { return r.calls }

// Errors returns the aggregate error count rooted at this frame.
func (r *Record) Errors() int64 { return r.errors }

// Exception returns the error attached on an error exit, if any.
func (r *Record) Exception() error { return r.exception }

// Marker returns this record's trace marker. It is non-nil only on the
// record that opened a trace.
func (r *Record) Marker() *Marker { return r.marker }

// Parent returns the enclosing frame, if any.
func (r *Record) Parent() *Record { return r.parent }

// Children returns the retained child frames in call order. Callers
// must not mutate the returned slice.
func (r *Record) Children() []*Record { return r.children }

// IsEmpty reports whether the record is in the recyclable sentinel state.
func (r *Record) IsEmpty() bool { return r.state == stateEmpty }

// MarkFlag sets the given flag bits.
func (r *Record) MarkFlag(flag uint32) { r.flags |= flag }

// HasFlag reports whether all given flag bits are set.
func (r *Record) HasFlag(flag uint32) bool { return r.flags&flag == flag }

// MarkOverflow flags the record as created past the trace record budget.
func (r *Record) MarkOverflow() { r.flags |= FlagOverflow }

// HasOverflow reports whether the overflow flag is set.
func (r *Record) HasOverflow() bool { return r.flags&FlagOverflow != 0 }

// SetAttr stores an attribute, creating the mapping lazily.
func (r *Record) SetAttr(id int32, val any) {
	if r.attrs == nil {
		r.attrs = make(map[int32]any)
	}
	r.attrs[id] = val
}

// Attr returns the attribute stored under id.
func (r *Record) Attr(id int32) (any, bool) {
	v, ok := r.attrs[id]
	return v, ok
}

// EachAttr calls fn for every stored attribute. Iteration order is
// unspecified.
func (r *Record) EachAttr(fn func(id int32, val any)) {
	for id, v := range r.attrs {
		fn(id, v)
	}
}

// AddChild appends rec to this record's children, reparenting it.
func (r *Record) AddChild(rec *Record) {
	rec.parent = r
	r.children = append(r.children, rec)
}

// SetMarker attaches a trace marker to this record.
func (r *Record) SetMarker(m *Marker) { r.marker = m }

// ActiveMarker returns the marker of the innermost trace this record
// is part of: its own marker, or the nearest ancestor's. Nil when the
// record is outside any trace.
func (r *Record) ActiveMarker() *Marker {
	for cur := r; cur != nil; cur = cur.parent {
		if cur.marker != nil {
			return cur.marker
		}
	}
	return nil
}

// InTrace reports whether this frame is inside an active trace.
func (r *Record) InTrace() bool { return r.ActiveMarker() != nil }

// Clean resets the record to the empty, recyclable state, severing its
// marker, children, exception, and parent link. The children slice is
// kept (truncated) so a recycled record does not reallocate it.
func (r *Record) Clean() {
	r.classID = 0
	r.methodID = 0
	r.signatureID = 0
	r.timeNS = 0
	r.calls = 0
	r.errors = 0
	r.exception = nil
	r.attrs = nil
	r.flags = 0
	r.state = stateEmpty
	r.marker = nil
	r.parent = nil
	for i := range r.children {
		r.children[i] = nil
	}
	r.children = r.children[:0]
}
