package export

import (
	"bufio"
	"io"
	"os"
	"sync"

	"github.com/klauspost/compress/gzip"
)

// FileShipper appends NDJSON batches to a local spool file, optionally
// gzip-compressed. Safe for use by the flush loop and Consume path
// concurrently.
type FileShipper struct {
	mu   sync.Mutex
	file *os.File
	buf  *bufio.Writer
	gz   *gzip.Writer
	out  io.Writer
}

// NewFileShipper opens (or creates) the spool file for appending.
func NewFileShipper(path string, compress bool) (*FileShipper, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	s := &FileShipper{file: file}
	s.buf = bufio.NewWriter(file)
	if compress {
		s.gz = gzip.NewWriter(s.buf)
		s.out = s.gz
	} else {
		s.out = s.buf
	}
	return s, nil
}

// Ship appends the encoded batch and flushes it to disk.
func (s *FileShipper) Ship(batch *Batch) (int, error) {
	payload, err := batch.EncodeNDJSON()
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.out.Write(payload); err != nil {
		return 0, err
	}
	if s.gz != nil {
		if err := s.gz.Flush(); err != nil {
			return 0, err
		}
	}
	if err := s.buf.Flush(); err != nil {
		return 0, err
	}
	return len(payload), nil
}

// Close flushes and closes the spool file.
func (s *FileShipper) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gz != nil {
		if err := s.gz.Close(); err != nil {
			s.file.Close()
			return err
		}
	}
	if err := s.buf.Flush(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
