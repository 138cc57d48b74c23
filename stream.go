package hookhttp

import (
	"context"

	"github.com/kbukum/hookhttp/logger"
	"github.com/kbukum/hookhttp/transport"
)

const streamBufferSize = 16

// AsyncEventKind discriminates AsyncEvent variants.
type AsyncEventKind int

const (
	// AsyncHeaders carries the decoded status and headers. First event.
	AsyncHeaders AsyncEventKind = iota
	// AsyncChunk carries one processed body chunk, or a passed-through
	// error for an error-shaped chunk.
	AsyncChunk
	// AsyncEnd terminates the stream for its ID. Nothing follows it.
	AsyncEnd
)

// AsyncEvent is one typed streaming message delivered to a subscriber.
// For a given ID, events arrive strictly as one AsyncHeaders, then zero or
// more AsyncChunk, then exactly one AsyncEnd.
type AsyncEvent struct {
	ID         string
	Kind       AsyncEventKind
	StatusCode int
	Headers    Header
	Chunk      []byte
	Err        error
}

// relay is the per-streaming-request task. It owns no shared state: it
// reads raw transport events for one request and republishes them to the
// subscriber as typed, hook-processed events.
//
// Redirects stay invisible to the subscriber: when redirect-following is on
// and the headers carry a redirect status, the relay re-issues the whole
// logical request against the new URL and stops; the new request brings its
// own relay.
func (c *Client) relay(ctx context.Context, method, rawURL string, opts Options, events <-chan transport.Event, depth int) {
	out := opts.StreamTo
	for {
		var ev transport.Event
		select {
		case <-ctx.Done():
			return
		case ev = <-events:
		}

		switch ev.Kind {
		case transport.EventHeaders:
			if opts.FollowRedirects && c.redirectStream(ctx, method, rawURL, opts, events, depth, ev) {
				return
			}
			if !emit(ctx, out, AsyncEvent{
				ID:         ev.ID,
				Kind:       AsyncHeaders,
				StatusCode: c.hooks.ProcessStatusCode(ev.Status),
				Headers:    c.hooks.ProcessResponseHeaders(ev.Headers),
			}) {
				return
			}

		case transport.EventChunk:
			data, err := c.hooks.ProcessResponseChunk(ev.Chunk)
			if !emit(ctx, out, AsyncEvent{ID: ev.ID, Kind: AsyncChunk, Chunk: data, Err: err}) {
				return
			}

		case transport.EventEnd:
			emit(ctx, out, AsyncEvent{ID: ev.ID, Kind: AsyncEnd})
			return

		default:
			c.log.Warn("dropping unrecognized transport event", logger.Fields("kind", int(ev.Kind)))
		}
	}
}

// redirectStream chases a redirect in streaming mode. Returns true when the
// relay should stop because the request was re-issued (or the chase failed
// and the failure was delivered to the subscriber).
func (c *Client) redirectStream(ctx context.Context, method, rawURL string, opts Options, events <-chan transport.Event, depth int, ev transport.Event) bool {
	res := transport.Result{Kind: transport.KindSuccess, Status: ev.Status, Headers: ev.Headers}
	if !c.hooks.IsRedirect(res) {
		return false
	}
	loc, ok := c.hooks.ProcessResponseLocation(res)
	if !ok {
		return false
	}

	// The old transport stream keeps publishing until its End; drain it so
	// it can finish.
	go drainEvents(ctx, events)

	out := opts.StreamTo
	if depth >= c.config.MaxRedirects {
		if emit(ctx, out, AsyncEvent{ID: ev.ID, Kind: AsyncChunk, Err: NewRedirectError("redirect limit exceeded")}) {
			emit(ctx, out, AsyncEvent{ID: ev.ID, Kind: AsyncEnd})
		}
		return true
	}

	next := resolveLocation(c.hooks.ProcessURL(rawURL), loc)
	c.log.Debug("following redirect in stream", logger.Fields("from", rawURL, "to", next))
	if _, _, err := c.do(ctx, method, next, opts, depth+1); err != nil {
		if emit(ctx, out, AsyncEvent{ID: ev.ID, Kind: AsyncChunk, Err: err}) {
			emit(ctx, out, AsyncEvent{ID: ev.ID, Kind: AsyncEnd})
		}
	}
	return true
}

// emit delivers one event to the subscriber, giving up when the request
// context ends so an abandoned subscriber cannot strand the relay.
func emit(ctx context.Context, out chan<- AsyncEvent, ev AsyncEvent) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// drainEvents discards remaining events of an abandoned stream.
func drainEvents(ctx context.Context, events <-chan transport.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			if ev.Kind == transport.EventEnd {
				return
			}
		}
	}
}
