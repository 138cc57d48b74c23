// Package sse decodes Server-Sent Event streams, either from a plain byte
// stream or directly from a hookhttp streaming subscription.
package sse

import (
	"bufio"
	"io"
	"strings"

	"github.com/kbukum/hookhttp"
)

// Event is one decoded server-sent event.
type Event struct {
	// Event is the event type (the "event:" field). Empty for data-only events.
	Event string
	// Data is the payload. Multi-line data is joined with newlines.
	Data string
	// ID is the event id (the "id:" field).
	ID string
}

// Reader decodes server-sent events from a stream.
type Reader interface {
	// Next returns the next event. Returns io.EOF when the stream ends.
	Next() (*Event, error)
	// Close releases the underlying stream.
	Close() error
}

type reader struct {
	scanner *bufio.Scanner
	src     io.ReadCloser
}

// NewReader decodes server-sent events from a readable byte stream.
func NewReader(src io.ReadCloser) Reader {
	return &reader{
		scanner: bufio.NewScanner(src),
		src:     src,
	}
}

// NewSubscriberReader decodes server-sent events straight off a hookhttp
// subscriber channel: chunk events feed the parser, an error-shaped chunk
// surfaces from Next, and the stream's End reads as io.EOF.
func NewSubscriberReader(events <-chan hookhttp.AsyncEvent) Reader {
	return NewReader(NewChunkReader(events))
}

// Next scans lines until a blank line completes an event. Field lines
// accumulate into the pending event; comment lines (leading colon) and
// unknown fields are skipped.
func (r *reader) Next() (*Event, error) {
	var ev Event
	var data []string

	flush := func() *Event {
		ev.Data = strings.Join(data, "\n")
		return &ev
	}

	for r.scanner.Scan() {
		line := strings.TrimSuffix(r.scanner.Text(), "\r")

		if line == "" {
			if len(data) > 0 {
				return flush(), nil
			}
			ev = Event{}
			continue
		}
		if line[0] == ':' {
			// comment / keep-alive
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		// A single space after the colon is separator, not payload.
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "data":
			data = append(data, value)
		case "event":
			ev.Event = value
		case "id":
			ev.ID = value
		}
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	// Stream ended mid-event; deliver what accumulated.
	if len(data) > 0 {
		return flush(), nil
	}
	return nil, io.EOF
}

func (r *reader) Close() error {
	return r.src.Close()
}
