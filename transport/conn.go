package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

// ConnOptions configures a direct connection handle.
type ConnOptions struct {
	// TLS overrides the adapter's TLS configuration for this handle.
	TLS *TLSConfig
}

// Conn is a caller-managed connection handle pinned to a single host.
// It keeps exactly one underlying connection alive and reuses it across
// requests. A Conn is not safe for concurrent request issuance; callers
// must serialize access. Close releases the connection.
type Conn struct {
	id        string
	origin    string
	client    *http.Client
	transport *http.Transport
	closed    bool
}

// Dial creates a direct connection handle for the given URL's host.
// The underlying socket is established lazily on first use and kept alive
// until Close.
func (h *HTTP) Dial(_ context.Context, rawURL string, opts ConnOptions) (*Conn, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %q: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("transport: dial %q: URL must include scheme and host", rawURL)
	}

	tr := h.client.Transport.(*http.Transport).Clone()
	tr.MaxConnsPerHost = 1
	tr.MaxIdleConnsPerHost = 1
	if opts.TLS != nil {
		tlsCfg, err := opts.TLS.Build()
		if err != nil {
			return nil, err
		}
		if tlsCfg != nil {
			tr.TLSClientConfig = tlsCfg
		}
	}

	return &Conn{
		id:        uuid.NewString(),
		origin:    u.Scheme + "://" + u.Host,
		transport: tr,
		client: &http.Client{
			Transport:     tr,
			CheckRedirect: noFollow,
		},
	}, nil
}

// ID returns the opaque handle id.
func (c *Conn) ID() string { return c.id }

// Origin returns the scheme://host the handle is pinned to.
func (c *Conn) Origin() string { return c.origin }

// Close releases the handle's connection. Requests issued after Close fail
// with a connection failure.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.transport.CloseIdleConnections()
	return nil
}
