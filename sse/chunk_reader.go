package sse

import (
	"io"

	"github.com/kbukum/hookhttp"
)

// chunkReader adapts a hookhttp subscriber channel into an io.ReadCloser so
// streamed chunk events can be consumed as a byte stream (and fed to
// NewReader for SSE parsing). Headers events are skipped; an error-shaped
// chunk surfaces as the read error; End reads as io.EOF.
type chunkReader struct {
	events <-chan hookhttp.AsyncEvent
	buf    []byte
	err    error
}

// NewChunkReader wraps a subscriber channel as a readable stream.
func NewChunkReader(events <-chan hookhttp.AsyncEvent) io.ReadCloser {
	return &chunkReader{events: events}
}

func (r *chunkReader) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		ev, ok := <-r.events
		if !ok {
			r.err = io.EOF
			return 0, r.err
		}
		switch ev.Kind {
		case hookhttp.AsyncChunk:
			if ev.Err != nil {
				r.err = ev.Err
				return 0, r.err
			}
			r.buf = ev.Chunk
		case hookhttp.AsyncEnd:
			r.err = io.EOF
			return 0, r.err
		}
	}

	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

// Close stops reading. The upstream relay is owned by the request's context;
// Close only marks this reader exhausted.
func (r *chunkReader) Close() error {
	r.err = io.EOF
	return nil
}
