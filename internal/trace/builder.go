package trace

import (
	"go.uber.org/zap"

	"github.com/GriffinCanCode/TraceForge/internal/logging"
)

// Builder receives loose tracer events from a single execution context
// and assembles call trees. It implements Handler.
//
// A Builder is not safe for concurrent use: correctness relies on
// exactly one producer driving the event sequence. No locking is used
// internally and every operation is synchronous and bounded, because
// events are emitted inline on the instrumented application's call
// path. Processing never panics or surfaces an error to the caller;
// protocol violations are logged (throttled) and ignored.
type Builder struct {
	limits Limits
	sink   Sink
	diag   *logging.Throttled

	// top is the currently open frame. Never nil: an empty record
	// stands in for "nothing open".
	top *Record

	// live counts the records retained by the in-flight trace, for
	// overflow detection. Reset when the stack drains.
	live int

	pool pool
}

// NewBuilder creates a builder that submits completed trees to sink.
// A nil diag disables protocol diagnostics.
func NewBuilder(sink Sink, limits Limits, diag *logging.Throttled) *Builder {
	if diag == nil {
		diag = logging.NopThrottled()
	}
	return &Builder{
		limits: limits,
		sink:   sink,
		diag:   diag,
		top:    NewRecord(nil),
		pool:   newPool(limits.MaxTraceRecords),
	}
}

// TraceBegin attaches a trace marker to the currently open frame. A
// marker arriving before any frame is open binds to the empty sentinel,
// so the next TraceEnter opens the trace root in place. A frame already
// carrying a marker keeps its first one.
func (b *Builder) TraceBegin(traceID int32, clock int64) {
	if b.top.HasFlag(FlagTraceBegin) {
		b.diag.Warn("trace marker already set on current frame, ignoring",
			zap.Int32("trace_id", traceID))
		return
	}
	b.top.SetMarker(NewMarker(b.top.ActiveMarker(), b.top, traceID, clock, b.limits.DefaultTraceTime))
	b.top.MarkFlag(FlagTraceBegin)
}

// TraceEnter opens a frame for an instrumented method invocation.
func (b *Builder) TraceEnter(classID, methodID, signatureID int32, tstamp int64) {
	if !b.top.IsEmpty() {
		if b.top.InTrace() {
			rec := b.pool.get()
			rec.parent = b.top
			b.top = rec
			b.live++
		} else {
			// Untraced call chains are not retained: reuse the
			// root frame in place instead of stacking. Note the
			// asymmetry with the empty-top path below: the reused
			// frame stays uncounted at zero, it is only counted
			// again once frames stack on top of it.
			b.top.Clean()
			b.live = 0
		}
	} else {
		b.live++
	}

	b.top.state = stateOpen
	b.top.classID = classID
	b.top.methodID = methodID
	b.top.signatureID = signatureID
	b.top.timeNS = tstamp
	b.top.calls++

	if b.live > b.limits.MaxTraceRecords {
		b.top.MarkOverflow()
	}
}

// TraceReturn closes the current frame normally.
func (b *Builder) TraceReturn(tstamp int64) {
	b.unwind()
	b.top.timeNS = tstamp - b.top.timeNS
	b.pop()
}

// TraceError closes the current frame with an error.
func (b *Builder) TraceError(err error, tstamp int64) {
	b.unwind()
	b.top.exception = err
	b.top.timeNS = tstamp - b.top.timeNS
	b.top.errors++
	b.pop()
}

// TraceStats is accepted and ignored; it exists so collaborators that
// pre-aggregate counters can share the Handler interface.
func (b *Builder) TraceStats(calls, errors int64, flags int32) {}

// NewSymbol is a no-op at this layer; symbol interning is the symbol
// registry's concern.
func (b *Builder) NewSymbol(id int32, text string) {}

// NewAttr stores an attribute on the currently open frame.
func (b *Builder) NewAttr(id int32, val any) {
	b.top.SetAttr(id, val)
}

// SetMinimumTraceTime adjusts the minimum duration of the trace
// currently being recorded. No-op when no trace is open.
func (b *Builder) SetMinimumTraceTime(ns int64) {
	if m := b.top.ActiveMarker(); m != nil {
		m.SetMinTime(ns)
	}
}

// unwind moves top past hollow frames: placeholders left behind when a
// return arrives for a frame that was already discarded. Self-healing
// for malformed event sequences, e.g. exceptions unwinding through
// frames that never logged a return.
func (b *Builder) unwind() {
	for b.top.state != stateOpen && b.top.parent != nil {
		b.top = b.top.parent
	}
}

// pop closes the frame at top, applying the trimming policy:
//
//  1. A trace root whose duration meets its marker's threshold is
//     submitted to the sink; its marker flags bubble up to the
//     enclosing trace either way.
//  2. A frame that ran long enough or recorded errors is attached to
//     its parent, unless it overflowed the record budget, in which
//     case only the parent trace's overflow flag is set. Call and
//     error counts propagate to the parent unconditionally.
//  3. Anything else is recycled.
func (b *Builder) pop() {
	rec := b.top
	parent := rec.parent
	retained := false

	if rec.HasFlag(FlagTraceBegin) {
		if rec.timeNS >= rec.marker.MinTime() {
			b.sink.Submit(rec)
			retained = true
		}
		if parent != nil {
			if m := parent.ActiveMarker(); m != nil {
				m.MergeFlags(rec.marker.Flags())
			}
		}
	}

	if parent != nil {
		if rec.timeNS > b.limits.MinMethodTime || rec.errors > 0 {
			if !rec.HasOverflow() {
				parent.AddChild(rec)
			} else if m := parent.ActiveMarker(); m != nil {
				m.MarkOverflow()
			}
			retained = true
		}
		parent.calls += rec.calls
		parent.errors += rec.errors
	}

	if !retained {
		b.pool.put(rec)
		if b.live > 0 {
			b.live--
		}
	}

	if parent != nil {
		b.top = parent
	} else {
		// Stack drained; submitted trees now belong to the sink,
		// so start over with a fresh sentinel.
		b.top = b.pool.get()
		b.live = 0
	}
}
