package sse

import (
	"errors"
	"io"
	"testing"

	"github.com/kbukum/hookhttp"
)

func feed(events ...hookhttp.AsyncEvent) <-chan hookhttp.AsyncEvent {
	ch := make(chan hookhttp.AsyncEvent, len(events))
	for _, ev := range events {
		ch <- ev
	}
	close(ch)
	return ch
}

func TestChunkReader_ReadsChunks(t *testing.T) {
	r := NewChunkReader(feed(
		hookhttp.AsyncEvent{Kind: hookhttp.AsyncHeaders, StatusCode: 200},
		hookhttp.AsyncEvent{Kind: hookhttp.AsyncChunk, Chunk: []byte("hel")},
		hookhttp.AsyncEvent{Kind: hookhttp.AsyncChunk, Chunk: []byte("lo")},
		hookhttp.AsyncEvent{Kind: hookhttp.AsyncEnd},
	))

	body, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(body) != "hello" {
		t.Errorf("body = %q, want hello", body)
	}
}

func TestChunkReader_ErrorChunk(t *testing.T) {
	boom := errors.New("stream reset")
	r := NewChunkReader(feed(
		hookhttp.AsyncEvent{Kind: hookhttp.AsyncChunk, Chunk: []byte("partial")},
		hookhttp.AsyncEvent{Kind: hookhttp.AsyncChunk, Err: boom},
	))

	_, err := io.ReadAll(r)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want the chunk error", err)
	}
}

func TestChunkReader_CloseStopsReading(t *testing.T) {
	r := NewChunkReader(feed(hookhttp.AsyncEvent{Kind: hookhttp.AsyncChunk, Chunk: []byte("x")}))
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := r.Read(make([]byte, 4)); err != io.EOF {
		t.Errorf("read after close = %v, want EOF", err)
	}
}

func TestSubscriberReader(t *testing.T) {
	r := NewSubscriberReader(feed(
		hookhttp.AsyncEvent{Kind: hookhttp.AsyncHeaders, StatusCode: 200},
		hookhttp.AsyncEvent{Kind: hookhttp.AsyncChunk, Chunk: []byte("event: tick\nda")},
		hookhttp.AsyncEvent{Kind: hookhttp.AsyncChunk, Chunk: []byte("ta: 1\n\n")},
		hookhttp.AsyncEvent{Kind: hookhttp.AsyncEnd},
	))

	ev, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if ev.Event != "tick" || ev.Data != "1" {
		t.Errorf("event = %+v", ev)
	}
	if _, err := r.Next(); err != io.EOF {
		t.Errorf("expected EOF, got %v", err)
	}
}
