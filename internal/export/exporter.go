package export

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/TraceForge/internal/logging"
	"github.com/GriffinCanCode/TraceForge/internal/monitoring"
)

// Shipper delivers one encoded batch. Implementations: FileShipper,
// HTTPShipper.
type Shipper interface {
	Ship(batch *Batch) (bytes int, err error)
	Close() error
}

// Options configures batching behavior.
type Options struct {
	AgentID       string
	BatchSize     int
	FlushInterval time.Duration
}

// Exporter accumulates wire traces and ships them in batches, by size
// or on a flush interval, whichever comes first. It satisfies the
// sink's Consumer interface.
type Exporter struct {
	opts    Options
	shipper Shipper
	logger  *logging.Logger
	metrics *monitoring.Metrics

	mu  sync.Mutex
	buf []*Trace

	done chan struct{}
	wg   sync.WaitGroup
}

// NewExporter creates an exporter and starts its flush loop.
func NewExporter(shipper Shipper, opts Options, logger *logging.Logger, metrics *monitoring.Metrics) *Exporter {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 64
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = 5 * time.Second
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	e := &Exporter{
		opts:    opts,
		shipper: shipper,
		logger:  logger,
		metrics: metrics,
		done:    make(chan struct{}),
	}

	e.wg.Add(1)
	go e.flushLoop()

	return e
}

// Consume queues one wire trace for shipment.
func (e *Exporter) Consume(t *Trace) {
	var full []*Trace

	e.mu.Lock()
	e.buf = append(e.buf, t)
	if len(e.buf) >= e.opts.BatchSize {
		full = e.buf
		e.buf = nil
	}
	e.mu.Unlock()

	if full != nil {
		e.ship(full)
	}
}

// Flush ships whatever is buffered.
func (e *Exporter) Flush() {
	e.mu.Lock()
	buf := e.buf
	e.buf = nil
	e.mu.Unlock()

	if len(buf) > 0 {
		e.ship(buf)
	}
}

// Close flushes remaining traces, stops the flush loop, and closes the
// shipper.
func (e *Exporter) Close() error {
	close(e.done)
	e.wg.Wait()
	e.Flush()
	return e.shipper.Close()
}

func (e *Exporter) flushLoop() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.opts.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.Flush()
		case <-e.done:
			return
		}
	}
}

func (e *Exporter) ship(traces []*Trace) {
	batch := NewBatch(e.opts.AgentID, traces)

	n, err := e.shipper.Ship(batch)
	if err != nil {
		e.logger.Warn("export batch failed",
			zap.String("batch_id", batch.ID),
			zap.Int("traces", len(traces)),
			zap.Error(err),
		)
		if e.metrics != nil {
			e.metrics.RecordExportError()
		}
		return
	}

	e.logger.Debug("export batch shipped",
		zap.String("batch_id", batch.ID),
		zap.Int("traces", len(traces)),
		zap.Int("bytes", n),
	)
	if e.metrics != nil {
		e.metrics.RecordExported(len(traces), n)
	}
}
