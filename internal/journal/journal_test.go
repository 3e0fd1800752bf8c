package journal

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/TraceForge/internal/symbols"
	"github.com/GriffinCanCode/TraceForge/internal/trace"
)

// recorder captures replayed events for comparison.
type recorder struct {
	calls []string
}

func (r *recorder) TraceBegin(traceID int32, clock int64) {
	r.calls = append(r.calls, "begin")
}
func (r *recorder) TraceEnter(classID, methodID, signatureID int32, tstamp int64) {
	r.calls = append(r.calls, "enter")
}
func (r *recorder) TraceReturn(tstamp int64) {
	r.calls = append(r.calls, "return")
}
func (r *recorder) TraceError(err error, tstamp int64) {
	r.calls = append(r.calls, "error:"+err.Error())
}
func (r *recorder) TraceStats(calls, errors int64, flags int32) {
	r.calls = append(r.calls, "stats")
}
func (r *recorder) NewSymbol(id int32, text string) {
	r.calls = append(r.calls, "symbol:"+text)
}
func (r *recorder) NewAttr(id int32, val any) {
	r.calls = append(r.calls, "attr")
}

func TestRoundTrip(t *testing.T) {
	var buf bytes.Buffer

	w, err := NewWriter(&buf, "agent-1")
	require.NoError(t, err)

	w.NewSymbol(1, "com.example.Foo")
	w.TraceEnter(1, 2, 3, 100)
	w.TraceBegin(7, 1000)
	w.NewAttr(5, "GET /checkout")
	w.TraceError(errors.New("boom"), 150)
	w.TraceStats(10, 2, 0)
	w.TraceReturn(200)
	require.NoError(t, w.Flush())

	r, err := NewReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, "agent-1", r.AgentID())

	var rec recorder
	events, err := r.Replay(&rec)
	require.NoError(t, err)
	assert.Equal(t, 7, events)
	assert.Equal(t, []string{
		"symbol:com.example.Foo",
		"enter",
		"begin",
		"attr",
		"error:boom",
		"stats",
		"return",
	}, rec.calls)
}

func TestReplayIntoBuilder(t *testing.T) {
	var buf bytes.Buffer

	w, err := NewWriter(&buf, "agent-1")
	require.NoError(t, err)

	w.NewSymbol(1, "com.example.Checkout")
	w.NewSymbol(2, "process")
	w.TraceEnter(1, 2, 0, 0)
	w.TraceBegin(7, 0)
	w.TraceReturn(500)
	require.NoError(t, w.Flush())

	var submitted []*trace.Record
	snk := trace.SinkFunc(func(rec *trace.Record) { submitted = append(submitted, rec) })
	builder := trace.NewBuilder(snk, trace.Limits{MaxTraceRecords: 10}, nil)

	syms := symbols.NewRegistry()
	r, err := NewReader(&buf)
	require.NoError(t, err)

	events, err := r.Replay(WithSymbols(builder, syms))
	require.NoError(t, err)
	assert.Equal(t, 5, events)

	require.Len(t, submitted, 1)
	assert.Equal(t, int64(500), submitted[0].Time())
	assert.Equal(t, "com.example.Checkout", syms.Resolve(1))
	assert.Equal(t, "process", syms.Resolve(2))
}

func TestRejectsForeignStream(t *testing.T) {
	_, err := NewReader(bytes.NewBufferString("not a journal"))
	assert.ErrorIs(t, err, ErrBadJournal)
}

func TestEmptyJournal(t *testing.T) {
	var buf bytes.Buffer

	w, err := NewWriter(&buf, "agent-1")
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	r, err := NewReader(&buf)
	require.NoError(t, err)

	var rec recorder
	events, err := r.Replay(&rec)
	require.NoError(t, err)
	assert.Zero(t, events)
	assert.Empty(t, rec.calls)
}

func TestWriterStopsAfterError(t *testing.T) {
	w, err := NewWriter(&failingWriter{}, "agent-1")
	require.NoError(t, err) // header fits the bufio buffer

	for i := 0; i < 10_000; i++ {
		w.TraceReturn(int64(i))
	}
	assert.Error(t, w.Flush())
}

type failingWriter struct{}

func (f *failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk gone")
}
