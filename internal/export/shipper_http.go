package export

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/GriffinCanCode/TraceForge/internal/resilience"
)

// HTTPOptions configures the HTTP shipper.
type HTTPOptions struct {
	Endpoint   string
	Compress   bool
	Timeout    time.Duration
	RetryCount int
}

// HTTPShipper POSTs NDJSON batches to a collector endpoint, with
// retries and a circuit breaker so a dead collector does not stall
// the export pipeline.
type HTTPShipper struct {
	client  *resty.Client
	breaker *resilience.Breaker
	opts    HTTPOptions
}

// NewHTTPShipper creates a shipper for the given endpoint.
func NewHTTPShipper(opts HTTPOptions) *HTTPShipper {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RetryCount < 0 {
		opts.RetryCount = 0
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second).
		SetHeader("User-Agent", "TraceForge/1.0")

	return &HTTPShipper{
		client: client,
		breaker: resilience.New("export-http", resilience.Settings{
			MaxFailures: 5,
			Cooldown:    30 * time.Second,
		}),
		opts: opts,
	}
}

// Ship posts one encoded batch.
func (s *HTTPShipper) Ship(batch *Batch) (int, error) {
	payload, err := batch.EncodeNDJSON()
	if err != nil {
		return 0, err
	}

	body := payload
	contentEncoding := ""
	if s.opts.Compress {
		if body, err = Compress(payload); err != nil {
			return 0, err
		}
		contentEncoding = "gzip"
	}

	err = s.breaker.Execute(func() error {
		req := s.client.R().
			SetHeader("Content-Type", "application/x-ndjson").
			SetHeader("X-Batch-ID", batch.ID).
			SetHeader("X-Agent-ID", batch.AgentID).
			SetBody(body)
		if contentEncoding != "" {
			req.SetHeader("Content-Encoding", contentEncoding)
		}

		resp, err := req.Post(s.opts.Endpoint)
		if err != nil {
			return err
		}
		if resp.IsError() {
			return fmt.Errorf("collector returned %s", resp.Status())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(body), nil
}

// Close is a no-op; the HTTP client holds no spooled state.
func (s *HTTPShipper) Close() error { return nil }
