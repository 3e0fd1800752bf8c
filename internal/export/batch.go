package export

import (
	"bytes"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
)

// Batch groups wire traces for one shipment.
type Batch struct {
	ID      string
	AgentID string
	Created time.Time
	Traces  []*Trace
}

// NewBatch stamps a batch with a fresh id.
func NewBatch(agentID string, traces []*Trace) *Batch {
	return &Batch{
		ID:      uuid.NewString(),
		AgentID: agentID,
		Created: time.Now().UTC(),
		Traces:  traces,
	}
}

// EncodeNDJSON encodes the batch's traces as newline-delimited JSON.
func (b *Batch) EncodeNDJSON() ([]byte, error) {
	var buf bytes.Buffer
	for _, t := range b.Traces {
		line, err := sonic.Marshal(t)
		if err != nil {
			return nil, err
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// Compress gzips an encoded payload.
func Compress(payload []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(payload); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
