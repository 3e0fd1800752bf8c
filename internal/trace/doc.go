/*
Package trace implements the in-process trace assembly core: the record
and marker data model, the record free list, and the builder state
machine that turns a flat stream of method entry/exit/error events into
call trees.

# Overview

Instrumented code emits events synchronously into a Builder. The builder
maintains a single mutable stack of Records anchored at a "top" pointer.
On every exit event it decides, frame by frame, whether the closing
record is worth keeping, attaching to its parent, discarding, or
demoting to an overflow flag, and hands completed trees to a Sink.

# Event Protocol

Events arrive ordered, from exactly one producer:

	TraceBegin(traceID, clock)       mark the current frame as a trace root
	TraceEnter(cls, mth, sig, ts)    open a new frame
	TraceReturn(ts)                  close the current frame normally
	TraceError(err, ts)              close the current frame with an error
	TraceStats(calls, errors, flags) reserved extension point
	NewSymbol(id, text)              symbol interning (external concern)
	NewAttr(id, val)                 attach an attribute to the open frame

# Trimming

Two thresholds keep steady-state overhead low: MinMethodTime drops
childless, error-free frames that returned quickly, and MaxTraceRecords
caps how many records one trace may retain; excess subtrees are
summarized by an overflow flag instead of being kept. Whole-trace
filtering (the marker's minimum time) has priority over per-frame
filtering, so a slow trace is never dropped just because its root frame
alone was brief. Call and error counts always propagate to the parent,
independent of whether the frame itself survives.

# Concurrency

A Builder is not safe for concurrent use. Exactly one execution context
may drive its event sequence; use one Builder per concurrent context.
All builder operations are synchronous, non-blocking, and bounded in
latency because they run inline on the instrumented application's call
path. The Sink is the one asynchronous boundary: Submit must not block
the caller beyond a bounded cost, and the builder never observes sink
failures.

# Performance

Discarded records are recycled through a per-builder free list rather
than released to the garbage collector, since allocation pressure under
high call rates is the primary overhead risk.
*/
package trace
