package upstream

import (
	"bufio"
	"bytes"
	"io"
)

// ChunkIterator yields SSE "data:" payloads from an upstream streaming
// response, in arrival order. Framing is stripped; each Next returns
// one chunk's raw JSON.
type ChunkIterator struct {
	scanner *bufio.Scanner
	body    io.ReadCloser
	closed  bool
}

// NewChunkIterator wraps a streaming response body. The caller remains
// responsible for eventually calling Close.
func NewChunkIterator(body io.ReadCloser) *ChunkIterator {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	return &ChunkIterator{scanner: scanner, body: body}
}

// Next returns the next chunk's raw JSON payload, or io.EOF once the
// stream is exhausted. Lines that aren't "data: " frames (blank lines,
// SSE comments) are skipped transparently. The literal "[DONE]" sentinel
// is surfaced as io.EOF, not as a chunk.
func (it *ChunkIterator) Next() ([]byte, error) {
	if it.closed {
		return nil, io.EOF
	}
	for it.scanner.Scan() {
		line := it.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if !bytes.HasPrefix(line, []byte("data:")) {
			continue
		}
		payload := bytes.TrimSpace(bytes.TrimPrefix(line, []byte("data:")))
		if len(payload) == 0 {
			continue
		}
		if bytes.Equal(payload, []byte("[DONE]")) {
			return nil, io.EOF
		}
		out := make([]byte, len(payload))
		copy(out, payload)
		return out, nil
	}
	if err := it.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// Close aborts the underlying response body read, draining no further
// data. Safe to call multiple times.
func (it *ChunkIterator) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	return it.body.Close()
}
