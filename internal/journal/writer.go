package journal

import (
	"bufio"
	"io"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Writer serializes tracer events to a journal stream. It implements
// the trace Handler protocol and, like a builder, expects a single
// producer; it is not safe for concurrent use.
type Writer struct {
	buf *bufio.Writer
	enc *msgpack.Encoder
	err error
}

// NewWriter starts a journal stream on w.
func NewWriter(w io.Writer, agentID string) (*Writer, error) {
	buf := bufio.NewWriter(w)
	enc := msgpack.NewEncoder(buf)

	if err := enc.Encode(header{
		Magic:   magic,
		Schema:  schemaVersion,
		AgentID: agentID,
		Created: time.Now().UTC(),
	}); err != nil {
		return nil, err
	}
	return &Writer{buf: buf, enc: enc}, nil
}

// Err returns the first write error encountered; once set, further
// events are discarded.
func (w *Writer) Err() error { return w.err }

// Flush pushes buffered frames to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	return w.buf.Flush()
}

// TraceBegin records a trace-begin event.
func (w *Writer) TraceBegin(traceID int32, clock int64) {
	w.emit(event{Kind: uint8(kindBegin), TraceID: traceID, Tstamp: clock})
}

// TraceEnter records a method-entry event.
func (w *Writer) TraceEnter(classID, methodID, signatureID int32, tstamp int64) {
	w.emit(event{
		Kind:        uint8(kindEnter),
		ClassID:     classID,
		MethodID:    methodID,
		SignatureID: signatureID,
		Tstamp:      tstamp,
	})
}

// TraceReturn records a method-return event.
func (w *Writer) TraceReturn(tstamp int64) {
	w.emit(event{Kind: uint8(kindReturn), Tstamp: tstamp})
}

// TraceError records a method-error event; only the error text
// survives serialization.
func (w *Writer) TraceError(err error, tstamp int64) {
	text := ""
	if err != nil {
		text = err.Error()
	}
	w.emit(event{Kind: uint8(kindError), Text: text, Tstamp: tstamp})
}

// TraceStats records a pre-aggregated stats event.
func (w *Writer) TraceStats(calls, errors int64, flags int32) {
	w.emit(event{Kind: uint8(kindStats), Calls: calls, Errors: errors, Flags: flags})
}

// NewSymbol records a symbol binding.
func (w *Writer) NewSymbol(id int32, text string) {
	w.emit(event{Kind: uint8(kindSymbol), AttrID: id, Text: text})
}

// NewAttr records an attribute event.
func (w *Writer) NewAttr(id int32, val any) {
	w.emit(event{Kind: uint8(kindAttr), AttrID: id, Value: val})
}

func (w *Writer) emit(ev event) {
	if w.err != nil {
		return
	}
	w.err = w.enc.Encode(ev)
}
