package trace

// Handler is the inbound event protocol driven by instrumented code.
// Events arrive ordered, from exactly one producer context at a time;
// timestamps are monotonic nanosecond values and a TraceReturn or
// TraceError timestamp is expected to be >= the matching TraceEnter's.
type Handler interface {
	// TraceBegin marks the currently open frame as a trace root;
	// arriving before any frame is open, it binds to the next one.
	TraceBegin(traceID int32, clock int64)
	// TraceEnter opens a new frame for an instrumented method.
	TraceEnter(classID, methodID, signatureID int32, tstamp int64)
	// TraceReturn closes the current frame normally.
	TraceReturn(tstamp int64)
	// TraceError closes the current frame with an error.
	TraceError(err error, tstamp int64)
	// TraceStats is a reserved extension point for pre-aggregated
	// counters; implementations may treat it as a no-op.
	TraceStats(calls, errors int64, flags int32)
	// NewSymbol announces a symbol id/name binding.
	NewSymbol(id int32, text string)
	// NewAttr attaches an attribute to the currently open frame.
	NewAttr(id int32, val any)
}

// Sink consumes completed trace trees. Submit takes ownership of the
// tree rooted at rec exactly once and must not block the caller beyond
// a bounded submission cost; the builder never observes sink failures.
type Sink interface {
	Submit(rec *Record)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(rec *Record)

// Submit calls fn(rec).
func (fn SinkFunc) Submit(rec *Record) { fn(rec) }

// Limits is the overhead-control configuration read by a builder.
type Limits struct {
	// MaxTraceRecords caps how many records one trace may retain
	// before further frames are demoted to an overflow flag.
	MaxTraceRecords int
	// MinMethodTime is the duration floor (ns) below which a
	// childless, error-free frame is dropped at close.
	MinMethodTime int64
	// DefaultTraceTime seeds each new marker's minimum trace
	// duration (ns); tunable per trace while it is in flight.
	DefaultTraceTime int64
}

// DefaultLimits returns the stock overhead-control thresholds.
func DefaultLimits() Limits {
	return Limits{
		MaxTraceRecords:  4096,
		MinMethodTime:    250_000,    // 250us
		DefaultTraceTime: 50_000_000, // 50ms
	}
}
