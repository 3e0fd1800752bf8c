package trace

// Marker holds per-trace state. It exists only on the record that
// opened the trace; nested traces chain markers through parent.
type Marker struct {
	parent *Marker
	record *Record

	traceID int32
	clock   int64

	// minTimeNS is the threshold below which the whole trace is
	// discarded at close. Mutable while the trace is in flight.
	minTimeNS int64

	flags uint32
}

// NewMarker creates a marker for a trace opened on rec. parent is the
// marker of the enclosing trace, if any.
func NewMarker(parent *Marker, rec *Record, traceID int32, clock, minTimeNS int64) *Marker {
	return &Marker{
		parent:    parent,
		record:    rec,
		traceID:   traceID,
		clock:     clock,
		minTimeNS: minTimeNS,
	}
}

// Parent returns the enclosing trace's marker, if any.
func (m *Marker) Parent() *Marker { return m.parent }

// Record returns the record that opened the trace.
func (m *Marker) Record() *Record { return m.record }

// TraceID returns the trace identifier.
func (m *Marker) TraceID() int32 { return m.traceID }

// Clock returns the wall-clock value captured at trace begin.
func (m *Marker) Clock() int64 { return m.clock }

// MinTime returns the minimum trace duration (ns) required for export.
func (m *Marker) MinTime() int64 { return m.minTimeNS }

// SetMinTime adjusts the export threshold while the trace is in flight.
func (m *Marker) SetMinTime(ns int64) { m.minTimeNS = ns }

// Flags returns the trace-level flag bits.
func (m *Marker) Flags() uint32 { return m.flags }

// MergeFlags ORs trace-level flags bubbled up from a nested trace.
func (m *Marker) MergeFlags(flags uint32) { m.flags |= flags }

// MarkOverflow records that the trace exceeded its record budget.
func (m *Marker) MarkOverflow() { m.flags |= FlagOverflow }

// HasOverflow reports whether the trace exceeded its record budget.
func (m *Marker) HasOverflow() bool { return m.flags&FlagOverflow != 0 }
