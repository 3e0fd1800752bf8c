// Package journal captures raw tracer event streams as msgpack frames
// and replays them into any event handler. Journals decouple event
// production from assembly: a capture taken in production can be
// re-assembled offline with different limits, or fed to the agent's
// ingest endpoint.
package journal

import (
	"time"
)

// schemaVersion is bumped whenever the frame format changes; readers
// reject journals written with a different schema.
const schemaVersion uint16 = 1

// magic identifies a journal stream.
const magic = "TFJRNL"

// eventKind discriminates journal frames.
type eventKind uint8

const (
	kindBegin eventKind = iota + 1
	kindEnter
	kindReturn
	kindError
	kindStats
	kindSymbol
	kindAttr
)

// header opens every journal stream.
type header struct {
	Magic   string
	Schema  uint16
	AgentID string
	Created time.Time
}

// event is one serialized tracer callback. A single struct covers all
// kinds; unused fields stay at their zero value and cost one msgpack
// nil each.
type event struct {
	Kind        uint8
	TraceID     int32
	ClassID     int32
	MethodID    int32
	SignatureID int32
	Tstamp      int64
	Calls       int64
	Errors      int64
	Flags       int32
	Text        string
	AttrID      int32
	Value       any
}
