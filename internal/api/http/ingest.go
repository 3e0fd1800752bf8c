package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/TraceForge/internal/journal"
	"github.com/GriffinCanCode/TraceForge/internal/logging"
	"github.com/GriffinCanCode/TraceForge/internal/trace"
)

// Ingest assembles traces from an uploaded event journal. Each request
// gets its own builder, which keeps the single-writer contract: one
// journal stream is one execution context.
func (h *Handlers) Ingest(c *gin.Context) {
	var body io.Reader = c.Request.Body
	if c.GetHeader("Content-Encoding") == "gzip" {
		zr, err := gzip.NewReader(body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad gzip body"})
			return
		}
		defer zr.Close()
		body = zr
	}

	reader, err := journal.NewReader(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	diag := logging.NewThrottled(h.logger.Logger, 0, 0)
	builder := trace.NewBuilder(h.sink, h.limits, diag)

	events, err := reader.Replay(journal.WithSymbols(builder, h.syms))
	if err != nil {
		h.logger.Warn("journal replay aborted",
			zap.String("journal_agent", reader.AgentID()),
			zap.Int("events", events),
			zap.Error(err),
		)
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  err.Error(),
			"events": events,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"journal_agent":   reader.AgentID(),
		"events":          events,
		"protocol_errors": diag.Count(),
	})
}
