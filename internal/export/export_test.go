package export

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/TraceForge/internal/logging"
	"github.com/GriffinCanCode/TraceForge/internal/symbols"
	"github.com/GriffinCanCode/TraceForge/internal/trace"
)

// assemble runs an event sequence through a builder and returns the
// submitted tree.
func assemble(t *testing.T) *trace.Record {
	t.Helper()

	var submitted []*trace.Record
	snk := trace.SinkFunc(func(rec *trace.Record) { submitted = append(submitted, rec) })
	b := trace.NewBuilder(snk, trace.Limits{MaxTraceRecords: 10}, nil)

	b.TraceEnter(1, 2, 0, 0)
	b.TraceBegin(7, 12345)
	b.TraceEnter(3, 4, 0, 100)
	b.NewAttr(9, "SELECT 1")
	b.TraceError(errors.New("timeout"), 5000)
	b.TraceReturn(10_000)

	require.Len(t, submitted, 1)
	return submitted[0]
}

func testRegistry() *symbols.Registry {
	syms := symbols.NewRegistry()
	syms.Register(1, "com.example.Checkout")
	syms.Register(2, "process")
	syms.Register(3, "com.example.Db")
	syms.Register(4, "query")
	syms.Register(9, "sql")
	return syms
}

func TestBuildResolvesSymbols(t *testing.T) {
	wire := Build(assemble(t), testRegistry())

	assert.Equal(t, int32(7), wire.TraceID)
	assert.Equal(t, int64(12345), wire.Clock)
	assert.False(t, wire.Overflow)

	root := wire.Root
	assert.Equal(t, "com.example.Checkout", root.Class)
	assert.Equal(t, "process", root.Method)
	assert.Equal(t, int64(10_000), root.DurationNS)
	assert.Equal(t, int64(2), root.Calls)
	assert.Equal(t, int64(1), root.Errors)

	require.Len(t, root.Children, 1)
	child := root.Children[0]
	assert.Equal(t, "com.example.Db", child.Class)
	assert.Equal(t, "query", child.Method)
	assert.Equal(t, "timeout", child.Error)
	assert.Equal(t, "SELECT 1", child.Attrs["sql"])

	assert.Equal(t, 2, root.Nodes())
}

func TestBuildWithoutRegistry(t *testing.T) {
	wire := Build(assemble(t), nil)
	assert.Equal(t, "#1", wire.Root.Class)
}

func TestBatchEncodeNDJSON(t *testing.T) {
	wire := Build(assemble(t), testRegistry())
	batch := NewBatch("agent-1", []*Trace{wire, wire})

	assert.NotEmpty(t, batch.ID)
	assert.Equal(t, "agent-1", batch.AgentID)

	payload, err := batch.EncodeNDJSON()
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 2)

	var decoded Trace
	require.NoError(t, sonic.Unmarshal([]byte(lines[0]), &decoded))
	assert.Equal(t, int32(7), decoded.TraceID)
	assert.Equal(t, "com.example.Checkout", decoded.Root.Class)
}

func TestCompressRoundTrip(t *testing.T) {
	payload := []byte("hello trace world")

	packed, err := Compress(payload)
	require.NoError(t, err)

	zr, err := gzip.NewReader(bytes.NewReader(packed))
	require.NoError(t, err)
	var out bytes.Buffer
	_, err = out.ReadFrom(zr)
	require.NoError(t, err)
	assert.Equal(t, payload, out.Bytes())
}

func TestFileShipperAppendsNDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces.ndjson")

	shipper, err := NewFileShipper(path, false)
	require.NoError(t, err)

	wire := Build(assemble(t), testRegistry())
	n, err := shipper.Ship(NewBatch("agent-1", []*Trace{wire}))
	require.NoError(t, err)
	assert.Positive(t, n)
	require.NoError(t, shipper.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded Trace
	require.NoError(t, sonic.Unmarshal(bytes.TrimSpace(data), &decoded))
	assert.Equal(t, int32(7), decoded.TraceID)
}

func TestFileShipperCompressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces.ndjson.gz")

	shipper, err := NewFileShipper(path, true)
	require.NoError(t, err)

	wire := Build(assemble(t), testRegistry())
	_, err = shipper.Ship(NewBatch("agent-1", []*Trace{wire}))
	require.NoError(t, err)
	require.NoError(t, shipper.Close())

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	zr, err := gzip.NewReader(file)
	require.NoError(t, err)

	scanner := bufio.NewScanner(zr)
	require.True(t, scanner.Scan())

	var decoded Trace
	require.NoError(t, sonic.Unmarshal(scanner.Bytes(), &decoded))
	assert.Equal(t, "com.example.Checkout", decoded.Root.Class)
}

// stubShipper records shipped batches.
type stubShipper struct {
	mu      sync.Mutex
	batches []*Batch
	fail    bool
}

func (s *stubShipper) Ship(batch *Batch) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return 0, errors.New("collector down")
	}
	s.batches = append(s.batches, batch)
	return 1, nil
}

func (s *stubShipper) Close() error { return nil }

func (s *stubShipper) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

func TestExporterFlushesBySize(t *testing.T) {
	shipper := &stubShipper{}
	e := NewExporter(shipper, Options{BatchSize: 2, FlushInterval: time.Hour}, logging.NewNop(), nil)
	defer e.Close()

	wire := Build(assemble(t), nil)
	e.Consume(wire)
	assert.Zero(t, shipper.count())

	e.Consume(wire)
	require.Equal(t, 1, shipper.count())
	assert.Len(t, shipper.batches[0].Traces, 2)
}

func TestExporterFlushOnClose(t *testing.T) {
	shipper := &stubShipper{}
	e := NewExporter(shipper, Options{BatchSize: 100, FlushInterval: time.Hour}, logging.NewNop(), nil)

	e.Consume(Build(assemble(t), nil))
	require.NoError(t, e.Close())

	require.Equal(t, 1, shipper.count())
	assert.Len(t, shipper.batches[0].Traces, 1)
}

func TestExporterFlushesOnInterval(t *testing.T) {
	shipper := &stubShipper{}
	e := NewExporter(shipper, Options{BatchSize: 100, FlushInterval: 10 * time.Millisecond}, logging.NewNop(), nil)
	defer e.Close()

	e.Consume(Build(assemble(t), nil))

	assert.Eventually(t, func() bool { return shipper.count() == 1 },
		time.Second, 5*time.Millisecond)
}

func TestExporterSurvivesShipFailure(t *testing.T) {
	shipper := &stubShipper{fail: true}
	e := NewExporter(shipper, Options{BatchSize: 1, FlushInterval: time.Hour}, logging.NewNop(), nil)
	defer e.Close()

	e.Consume(Build(assemble(t), nil))

	// Failure is swallowed; the exporter keeps accepting traces.
	shipper.mu.Lock()
	shipper.fail = false
	shipper.mu.Unlock()

	e.Consume(Build(assemble(t), nil))
	assert.Equal(t, 1, shipper.count())
}
