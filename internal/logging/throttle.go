package logging

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Throttled gates hot-path diagnostics behind a token bucket so a
// single broken instrumentation site cannot flood the log. Every call
// is counted; only calls that pass the limiter are written.
type Throttled struct {
	logger  *zap.Logger
	limiter *rate.Limiter
	total   atomic.Int64
}

// NewThrottled wraps logger, allowing one message per interval with
// the given burst.
func NewThrottled(logger *zap.Logger, interval time.Duration, burst int) *Throttled {
	if interval <= 0 {
		interval = time.Second
	}
	if burst <= 0 {
		burst = 10
	}
	return &Throttled{
		logger:  logger,
		limiter: rate.NewLimiter(rate.Every(interval), burst),
	}
}

// NopThrottled returns a throttled logger that counts but never writes.
func NopThrottled() *Throttled {
	return NewThrottled(zap.NewNop(), time.Second, 1)
}

// Warn logs at warn level if the limiter admits the message.
func (t *Throttled) Warn(msg string, fields ...zap.Field) {
	t.total.Add(1)
	if t.limiter.Allow() {
		t.logger.Warn(msg, fields...)
	}
}

// Count returns how many messages were reported, throttled or not.
func (t *Throttled) Count() int64 {
	return t.total.Load()
}
