package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/TraceForge/internal/logging"
	"github.com/GriffinCanCode/TraceForge/internal/monitoring"
	"github.com/GriffinCanCode/TraceForge/internal/sink"
	"github.com/GriffinCanCode/TraceForge/internal/symbols"
	"github.com/GriffinCanCode/TraceForge/internal/trace"
)

// Handlers serves the agent's admin API.
type Handlers struct {
	agentID string
	limits  trace.Limits
	sink    *sink.Async
	syms    *symbols.Registry
	metrics *monitoring.Metrics
	logger  *logging.Logger
	started time.Time
}

// NewHandlers creates the admin API handlers. metrics may be nil.
func NewHandlers(agentID string, limits trace.Limits, snk *sink.Async, syms *symbols.Registry, metrics *monitoring.Metrics, logger *logging.Logger) *Handlers {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{
		agentID: agentID,
		limits:  limits,
		sink:    snk,
		syms:    syms,
		metrics: metrics,
		logger:  logger,
		started: time.Now(),
	}
}

// Health reports liveness.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"agent":   h.agentID,
		"uptime":  time.Since(h.started).String(),
		"service": "traceforge",
	})
}

// Status reports pipeline counters and the active limits.
func (h *Handlers) Status(c *gin.Context) {
	resp := gin.H{
		"agent": h.agentID,
		"limits": gin.H{
			"max_trace_records":  h.limits.MaxTraceRecords,
			"min_method_time_ns": h.limits.MinMethodTime,
			"min_trace_time_ns":  h.limits.DefaultTraceTime,
		},
		"symbols": h.syms.Len(),
	}
	if h.metrics != nil {
		resp["pipeline"] = h.metrics.GetSnapshot()
	}
	c.JSON(http.StatusOK, resp)
}

// Symbols dumps the symbol table.
func (h *Handlers) Symbols(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"count":   h.syms.Len(),
		"symbols": h.syms.Snapshot(),
	})
}

// RecentTraces returns the sink's recent-trace ring, oldest first.
func (h *Handlers) RecentTraces(c *gin.Context) {
	traces := h.sink.Recent()
	c.JSON(http.StatusOK, gin.H{
		"count":  len(traces),
		"traces": traces,
	})
}
