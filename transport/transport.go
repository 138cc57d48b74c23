package transport

import (
	"context"
	"time"
)

// HeaderPair is a single header name/value pair as it appears on the wire.
// Repeated names are legal and order is significant.
type HeaderPair struct {
	Name  string
	Value string
}

// Payload is a response body as delivered by the transport: one or more
// byte segments in arrival order. Adapters that buffer the whole body
// deliver a single segment; chunk-oriented adapters deliver several.
type Payload [][]byte

// BasicAuth carries credentials applied at the wire level.
type BasicAuth struct {
	Username string
	Password string
}

// Options are adapter-level settings for a single request.
type Options struct {
	// Events, when non-nil, switches the request to asynchronous delivery:
	// the adapter returns KindAsync immediately and publishes Event values
	// for the request id on this channel, closing with EventEnd.
	Events chan<- Event

	// BasicAuth, when non-nil, is applied to the outbound request.
	BasicAuth *BasicAuth

	// Extra holds adapter-specific string settings. The default adapter
	// honors "host" (overrides the Host header sent on the wire); unknown
	// keys are ignored.
	Extra map[string]string
}

// Request is the immutable wire-level request descriptor handed to an
// adapter. It is built once per attempt by the client and not mutated
// afterwards.
type Request struct {
	Method  string
	URL     string
	Headers []HeaderPair
	Body    []byte
	Timeout time.Duration
	Options Options
}

// Kind discriminates the Result variant.
type Kind int

const (
	// KindSuccess means the adapter obtained a complete response.
	KindSuccess Kind = iota
	// KindAsync means the adapter accepted the request for asynchronous
	// delivery; events follow on the Options.Events channel.
	KindAsync
	// KindFailure means the request could not be completed.
	KindFailure
)

// Reason classifies a failure at the transport boundary.
type Reason string

const (
	// ReasonConnFailed covers refused, reset and unreachable connections.
	ReasonConnFailed Reason = "conn_failed"
	// ReasonTimeout means the configured timeout elapsed.
	ReasonTimeout Reason = "timeout"
	// ReasonCanceled means the caller's context was canceled.
	ReasonCanceled Reason = "canceled"
)

// Result is the closed outcome variant of a Send call.
//
// KindSuccess populates Status, Headers and Body. KindAsync populates ID.
// KindFailure populates Reason and, when detail is available, Err.
type Result struct {
	Kind Kind

	// Status is the raw wire status, e.g. "200 OK" or "404".
	Status  string
	Headers []HeaderPair
	Body    Payload

	// ID identifies an asynchronously accepted request.
	ID string

	Reason Reason
	Err    error
}

// EventKind discriminates asynchronous delivery events.
type EventKind int

const (
	// EventHeaders carries the raw status and header pairs. First event.
	EventHeaders EventKind = iota
	// EventChunk carries one body chunk (or an error-shaped chunk).
	EventChunk
	// EventEnd terminates the stream. Last event; nothing follows it.
	EventEnd
)

// Chunk is one streamed body fragment. Either Data or Err is set; an
// error-shaped chunk reports a mid-stream failure and is followed by
// EventEnd.
type Chunk struct {
	Data Payload
	Err  error
}

// Event is one asynchronous delivery message for a request id. For a given
// id the adapter publishes exactly one EventHeaders, then zero or more
// EventChunk, then exactly one EventEnd, in order.
type Event struct {
	ID      string
	Kind    EventKind
	Status  string
	Headers []HeaderPair
	Chunk   Chunk
}

// Transport sends wire-level requests. Implementations must honor the
// Result contract above; the client treats anything else as a boundary
// violation.
type Transport interface {
	// Send issues a request over the adapter's own (typically pooled)
	// connections.
	Send(ctx context.Context, req Request) Result

	// SendDirect issues a request over a caller-managed connection handle.
	// A Conn is not safe for concurrent use; callers serialize access.
	SendDirect(ctx context.Context, conn *Conn, req Request) Result
}
