package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sort"

	"github.com/google/uuid"
)

const chunkBufferSize = 32 * 1024

// Config configures the default adapter.
type Config struct {
	// TLS configures TLS for outbound connections.
	TLS *TLSConfig `yaml:"tls" mapstructure:"tls"`

	// DisableCompression turns off transparent gzip. Useful for streaming
	// endpoints that rely on chunk boundaries.
	DisableCompression bool `yaml:"disable_compression" mapstructure:"disable_compression"`
}

// HTTP is the default Transport, backed by net/http pooled connections.
// Redirects are never followed here; the client owns redirect policy.
type HTTP struct {
	client *http.Client
}

var _ Transport = (*HTTP)(nil)

// New creates the default adapter.
func New(cfg Config) (*HTTP, error) {
	if err := cfg.TLS.Validate(); err != nil {
		return nil, err
	}

	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.DisableCompression = cfg.DisableCompression
	if cfg.TLS != nil {
		tlsCfg, err := cfg.TLS.Build()
		if err != nil {
			return nil, err
		}
		if tlsCfg != nil {
			tr.TLSClientConfig = tlsCfg
		}
	}

	return &HTTP{
		client: &http.Client{
			Transport:     tr,
			CheckRedirect: noFollow,
		},
	}, nil
}

// noFollow stops net/http from chasing redirects; the hookhttp engine
// implements redirect policy itself.
func noFollow(_ *http.Request, _ []*http.Request) error {
	return http.ErrUseLastResponse
}

// Send issues a request over the pooled connections.
func (h *HTTP) Send(ctx context.Context, req Request) Result {
	return sendOn(ctx, h.client, req)
}

// SendDirect issues a request over a caller-managed connection handle.
func (h *HTTP) SendDirect(ctx context.Context, conn *Conn, req Request) Result {
	if conn == nil || conn.closed {
		return Result{Kind: KindFailure, Reason: ReasonConnFailed, Err: errors.New("transport: connection handle is closed")}
	}
	return sendOn(ctx, conn.client, req)
}

// sendOn dispatches either synchronously or, when an event channel is
// present, asynchronously with an immediate KindAsync result.
func sendOn(ctx context.Context, client *http.Client, req Request) Result {
	if req.Options.Events != nil {
		id := uuid.NewString()
		go stream(ctx, client, id, req)
		return Result{Kind: KindAsync, ID: id}
	}
	return send(ctx, client, req)
}

// send performs one blocking request bounded by req.Timeout.
func send(ctx context.Context, client *http.Client, req Request) Result {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	hreq, err := buildHTTPRequest(ctx, req)
	if err != nil {
		return Result{Kind: KindFailure, Reason: ReasonConnFailed, Err: err}
	}

	resp, err := client.Do(hreq)
	if err != nil {
		return classify(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return classify(ctx, err)
	}

	return Result{
		Kind:    KindSuccess,
		Status:  resp.Status,
		Headers: headerPairs(resp.Header),
		Body:    Payload{body},
	}
}

// stream performs an asynchronous request, publishing Headers, Chunk and End
// events for the given id. Failures surface as an error-shaped chunk before
// End; the End event is always the final message. Every publish gives up when
// ctx ends so an abandoned consumer cannot strand this goroutine.
func stream(ctx context.Context, client *http.Client, id string, req Request) {
	events := req.Options.Events
	publish := func(ev Event) bool {
		ev.ID = id
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}
	defer publish(Event{Kind: EventEnd})

	hreq, err := buildHTTPRequest(ctx, req)
	if err != nil {
		publish(Event{Kind: EventChunk, Chunk: Chunk{Err: err}})
		return
	}

	resp, err := client.Do(hreq)
	if err != nil {
		publish(Event{Kind: EventChunk, Chunk: Chunk{Err: err}})
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if !publish(Event{Kind: EventHeaders, Status: resp.Status, Headers: headerPairs(resp.Header)}) {
		return
	}

	buf := make([]byte, chunkBufferSize)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			if !publish(Event{Kind: EventChunk, Chunk: Chunk{Data: Payload{data}}}) {
				return
			}
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			publish(Event{Kind: EventChunk, Chunk: Chunk{Err: err}})
			return
		}
	}
}

// buildHTTPRequest converts a wire Request into an *http.Request.
func buildHTTPRequest(ctx context.Context, req Request) (*http.Request, error) {
	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	hreq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, err
	}
	for _, p := range req.Headers {
		hreq.Header.Add(p.Name, p.Value)
	}
	if ba := req.Options.BasicAuth; ba != nil {
		hreq.SetBasicAuth(ba.Username, ba.Password)
	}
	if host := req.Options.Extra["host"]; host != "" {
		hreq.Host = host
	}
	return hreq, nil
}

// classify maps a net/http error to a failure Result.
func classify(ctx context.Context, err error) Result {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return Result{Kind: KindFailure, Reason: ReasonTimeout, Err: err}
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return Result{Kind: KindFailure, Reason: ReasonCanceled, Err: err}
	default:
		return Result{Kind: KindFailure, Reason: ReasonConnFailed, Err: err}
	}
}

// headerPairs flattens an http.Header into deterministic wire pairs:
// names sorted, values in arrival order.
func headerPairs(h http.Header) []HeaderPair {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]HeaderPair, 0, len(h))
	for _, name := range names {
		for _, v := range h[name] {
			pairs = append(pairs, HeaderPair{Name: name, Value: v})
		}
	}
	return pairs
}
