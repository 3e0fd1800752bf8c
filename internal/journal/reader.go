package journal

import (
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/GriffinCanCode/TraceForge/internal/trace"
)

// ErrBadJournal reports a stream that is not a journal or was written
// with an incompatible schema.
var ErrBadJournal = errors.New("journal: bad header")

// Reader replays a journal stream into an event handler.
type Reader struct {
	dec    *msgpack.Decoder
	header header
}

// NewReader validates the stream header and prepares a reader.
func NewReader(r io.Reader) (*Reader, error) {
	dec := msgpack.NewDecoder(r)

	var h header
	if err := dec.Decode(&h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadJournal, err)
	}
	if h.Magic != magic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrBadJournal, h.Magic)
	}
	if h.Schema != schemaVersion {
		return nil, fmt.Errorf("%w: schema %d, want %d", ErrBadJournal, h.Schema, schemaVersion)
	}
	return &Reader{dec: dec, header: h}, nil
}

// AgentID returns the id of the agent that captured the journal.
func (r *Reader) AgentID() string { return r.header.AgentID }

// Replay feeds every journaled event to h, in order, until the stream
// ends. Returns the number of events replayed.
func (r *Reader) Replay(h trace.Handler) (int, error) {
	count := 0
	for {
		var ev event
		if err := r.dec.Decode(&ev); err != nil {
			if errors.Is(err, io.EOF) {
				return count, nil
			}
			return count, fmt.Errorf("journal: frame %d: %w", count, err)
		}

		switch eventKind(ev.Kind) {
		case kindBegin:
			h.TraceBegin(ev.TraceID, ev.Tstamp)
		case kindEnter:
			h.TraceEnter(ev.ClassID, ev.MethodID, ev.SignatureID, ev.Tstamp)
		case kindReturn:
			h.TraceReturn(ev.Tstamp)
		case kindError:
			h.TraceError(errors.New(ev.Text), ev.Tstamp)
		case kindStats:
			h.TraceStats(ev.Calls, ev.Errors, ev.Flags)
		case kindSymbol:
			h.NewSymbol(ev.AttrID, ev.Text)
		case kindAttr:
			h.NewAttr(ev.AttrID, ev.Value)
		default:
			return count, fmt.Errorf("journal: frame %d: unknown event kind %d", count, ev.Kind)
		}
		count++
	}
}
