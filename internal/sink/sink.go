// Package sink is the asynchronous boundary between the trace builder
// and the export pipeline. Submissions are fire-and-forget: a bounded
// queue absorbs bursts, one consumer goroutine converts trees to wire
// form, and backpressure policy (drop vs block) is decided here, never
// by the builder.
package sink

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/TraceForge/internal/export"
	"github.com/GriffinCanCode/TraceForge/internal/logging"
	"github.com/GriffinCanCode/TraceForge/internal/monitoring"
	"github.com/GriffinCanCode/TraceForge/internal/symbols"
	"github.com/GriffinCanCode/TraceForge/internal/trace"
)

// Policy selects what Submit does when the queue is full.
type Policy string

const (
	// PolicyDrop discards the trace and logs, keeping Submit
	// non-blocking under any load.
	PolicyDrop Policy = "drop"
	// PolicyBlock waits for queue space; lossless, but couples the
	// producer to consumer speed.
	PolicyBlock Policy = "block"
)

// Consumer handles wire traces on the sink's goroutine.
type Consumer interface {
	Consume(t *export.Trace)
}

// Options configures the sink.
type Options struct {
	QueueSize int
	Policy    Policy
	RingSize  int
	TapBuffer int
}

// Async is a queue-backed trace.Sink. The consumer goroutine owns wire
// conversion, the recent-trace ring, and observer fan-out, so none of
// that work happens on the instrumented call path.
type Async struct {
	queue    chan *trace.Record
	policy   Policy
	consumer Consumer
	syms     *symbols.Registry
	logger   *logging.Logger
	metrics  *monitoring.Metrics
	ring     *Ring

	tapBuffer int
	mu        sync.Mutex
	subs      map[int]chan *export.Trace
	nextSub   int

	// done signals shutdown to producers and the consumer. The queue
	// channel itself is never closed, so a Submit racing Close can
	// never hit a closed channel.
	done   chan struct{}
	closed atomic.Bool
	wg     sync.WaitGroup
}

// New creates a sink and starts its consumer goroutine. consumer and
// metrics may be nil.
func New(consumer Consumer, syms *symbols.Registry, opts Options, logger *logging.Logger, metrics *monitoring.Metrics) *Async {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1024
	}
	if opts.Policy == "" {
		opts.Policy = PolicyDrop
	}
	if opts.RingSize <= 0 {
		opts.RingSize = 128
	}
	if opts.TapBuffer <= 0 {
		opts.TapBuffer = 64
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	s := &Async{
		queue:     make(chan *trace.Record, opts.QueueSize),
		policy:    opts.Policy,
		consumer:  consumer,
		syms:      syms,
		logger:    logger,
		metrics:   metrics,
		ring:      NewRing(opts.RingSize),
		tapBuffer: opts.TapBuffer,
		subs:      make(map[int]chan *export.Trace),
		done:      make(chan struct{}),
	}

	s.wg.Add(1)
	go s.run()

	return s
}

// Submit hands ownership of a completed tree to the sink. It never
// blocks under PolicyDrop; under PolicyBlock it waits for queue space.
// Submissions concurrent with or after Close are dropped.
func (s *Async) Submit(rec *trace.Record) {
	if s.closed.Load() {
		s.drop(rec)
		return
	}

	if s.policy == PolicyBlock {
		select {
		case s.queue <- rec:
			s.observeDepth()
		case <-s.done:
			s.drop(rec)
		}
		return
	}

	select {
	case s.queue <- rec:
		s.observeDepth()
	default:
		s.drop(rec)
	}
}

// Recent returns the most recently completed traces, oldest first.
func (s *Async) Recent() []*export.Trace {
	return s.ring.Snapshot()
}

// Subscribe registers a live tap. Observers that fall behind miss
// traces rather than slowing the pipeline. cancel must be called when
// done.
func (s *Async) Subscribe() (<-chan *export.Trace, func()) {
	ch := make(chan *export.Trace, s.tapBuffer)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Close stops accepting submissions, drains the queue, and waits for
// the consumer to finish.
func (s *Async) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	close(s.done)
	s.wg.Wait()

	// A submission that won the race against shutdown may still sit
	// in the queue buffer; account for it rather than losing it.
	for {
		select {
		case rec := <-s.queue:
			s.drop(rec)
			continue
		default:
		}
		break
	}

	s.mu.Lock()
	for id, sub := range s.subs {
		delete(s.subs, id)
		close(sub)
	}
	s.mu.Unlock()
}

func (s *Async) run() {
	defer s.wg.Done()

	for {
		select {
		case rec := <-s.queue:
			s.consume(rec)
		case <-s.done:
			// Drain what made it into the queue before shutdown.
			for {
				select {
				case rec := <-s.queue:
					s.consume(rec)
				default:
					return
				}
			}
		}
	}
}

func (s *Async) consume(rec *trace.Record) {
	s.observeDepth()
	if s.metrics != nil {
		s.metrics.RecordSubmitted()
	}

	t := export.Build(rec, s.syms)
	s.ring.Push(t)
	s.fanout(t)
	if s.consumer != nil {
		s.consumer.Consume(t)
	}
}

func (s *Async) fanout(t *export.Trace) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sub := range s.subs {
		select {
		case sub <- t:
		default:
		}
	}
}

func (s *Async) drop(rec *trace.Record) {
	s.logger.Warn("sink queue full, dropping trace",
		zap.Int32("class_id", rec.ClassID()),
		zap.Int32("method_id", rec.MethodID()),
	)
	if s.metrics != nil {
		s.metrics.RecordDropped()
	}
}

func (s *Async) observeDepth() {
	if s.metrics != nil {
		s.metrics.SetQueueDepth(len(s.queue))
	}
}
