package hookhttp

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/kbukum/hookhttp/logger"
	"github.com/kbukum/hookhttp/resilience"
	"github.com/kbukum/hookhttp/transport"
)

// Client executes HTTP requests through the hook pipeline. The zero
// customization client behaves like a plain HTTP client; derived clients
// swap in their own Hooks via WithHooks.
type Client struct {
	config Config
	hooks  Hooks
	tr     transport.Transport
	log    *logger.Logger
}

// Option customizes a Client at construction.
type Option func(*Client)

// WithHooks installs a derived hook set.
func WithHooks(h Hooks) Option {
	return func(c *Client) { c.hooks = h }
}

// WithTransport injects a custom wire transport.
func WithTransport(t transport.Transport) Option {
	return func(c *Client) { c.tr = t }
}

// WithLogger injects a logger. The default discards everything.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a client with the given configuration.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config: cfg,
		hooks:  BaseHooks{},
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.tr == nil {
		tr, err := transport.New(cfg.Transport)
		if err != nil {
			return nil, err
		}
		c.tr = tr
	}
	return c, nil
}

// Hooks returns the client's hook set.
func (c *Client) Hooks() Hooks { return c.hooks }

// Transport returns the client's wire transport.
func (c *Client) Transport() transport.Transport { return c.tr }

// Do executes a synchronous request and returns the complete response.
// Streaming options are rejected; use DoStream.
func (c *Client) Do(ctx context.Context, method, url string, opts Options) (*Response, error) {
	if opts.StreamTo != nil {
		return nil, NewConfigError("streaming requests must use DoStream")
	}
	if c.config.Retry != nil {
		return resilience.Retry(ctx, *c.config.Retry, func() (*Response, error) {
			return c.doSync(ctx, method, url, opts)
		})
	}
	return c.doSync(ctx, method, url, opts)
}

// DoStream dispatches a streaming request. It returns as soon as the
// transport accepts the request; events arrive on opts.StreamTo. Retry is
// never applied to streaming requests.
func (c *Client) DoStream(ctx context.Context, method, url string, opts Options) (*AsyncToken, error) {
	if opts.StreamTo == nil {
		return nil, NewConfigError("DoStream requires Options.StreamTo")
	}
	_, token, err := c.do(ctx, method, url, opts, 0)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, NewProtocolError("transport returned a synchronous result for a streaming request")
	}
	return token, nil
}

// Get executes a GET request.
func (c *Client) Get(ctx context.Context, url string, opts Options) (*Response, error) {
	return c.Do(ctx, http.MethodGet, url, opts)
}

// Head executes a HEAD request.
func (c *Client) Head(ctx context.Context, url string, opts Options) (*Response, error) {
	return c.Do(ctx, http.MethodHead, url, opts)
}

// Post executes a POST request.
func (c *Client) Post(ctx context.Context, url string, opts Options) (*Response, error) {
	return c.Do(ctx, http.MethodPost, url, opts)
}

// Put executes a PUT request.
func (c *Client) Put(ctx context.Context, url string, opts Options) (*Response, error) {
	return c.Do(ctx, http.MethodPut, url, opts)
}

// Patch executes a PATCH request.
func (c *Client) Patch(ctx context.Context, url string, opts Options) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, url, opts)
}

// Delete executes a DELETE request.
func (c *Client) Delete(ctx context.Context, url string, opts Options) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, url, opts)
}

// Options executes an OPTIONS request.
func (c *Client) Options(ctx context.Context, url string, opts Options) (*Response, error) {
	return c.Do(ctx, http.MethodOptions, url, opts)
}

func (c *Client) doSync(ctx context.Context, method, url string, opts Options) (*Response, error) {
	resp, token, err := c.do(ctx, method, url, opts, 0)
	if err != nil {
		return nil, err
	}
	if token != nil {
		return nil, NewProtocolError("transport returned an asynchronous result for a synchronous request")
	}
	return resp, nil
}

// do executes one logical request, chasing redirects up to the hop limit.
// Exactly one of the three returns is non-zero.
func (c *Client) do(ctx context.Context, method, rawURL string, opts Options, depth int) (*Response, *AsyncToken, error) {
	req, err := c.buildRequest(ctx, method, rawURL, opts, depth)
	if err != nil {
		return nil, nil, err
	}

	c.log.Debug("dispatching request", logger.Fields("method", method, "url", req.URL, "depth", depth))

	var res transport.Result
	if opts.Direct != nil {
		res = c.tr.SendDirect(ctx, opts.Direct, req)
	} else {
		res = c.tr.Send(ctx, req)
	}

	if opts.FollowRedirects && c.hooks.ResponseOK(res) && c.hooks.IsRedirect(res) {
		if loc, ok := c.hooks.ProcessResponseLocation(res); ok {
			if depth >= c.config.MaxRedirects {
				return nil, nil, NewRedirectError("redirect limit exceeded")
			}
			next := resolveLocation(req.URL, loc)
			c.log.Debug("following redirect", logger.Fields("from", req.URL, "to", next))
			return c.do(ctx, method, next, opts, depth+1)
		}
		// Redirect status without a Location header; nothing to chase.
	}

	return c.resolve(res)
}

// buildRequest merges options into an immutable wire request, spawning the
// stream relay and injecting credentials where configured.
func (c *Client) buildRequest(ctx context.Context, method, rawURL string, opts Options, depth int) (transport.Request, error) {
	opts = c.hooks.ProcessOptions(opts)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = c.config.Timeout
	}

	topts := transport.Options{Extra: opts.TransportOptions}

	if opts.BasicAuth != nil {
		if opts.BasicAuth.Username == "" {
			return transport.Request{}, NewConfigError("basic auth requires a username")
		}
		topts.BasicAuth = &transport.BasicAuth{
			Username: opts.BasicAuth.Username,
			Password: opts.BasicAuth.Password,
		}
	}

	if opts.StreamTo != nil {
		events := make(chan transport.Event, streamBufferSize)
		go c.relay(ctx, method, rawURL, opts, events, depth)
		topts.Events = events
	}

	headers := make(Header, len(c.config.Headers)+len(opts.Headers))
	for k, v := range c.config.Headers {
		headers.Set(k, v)
	}
	for k, vs := range opts.Headers {
		headers.Del(k)
		for _, v := range vs {
			headers.Add(k, v)
		}
	}
	headers = c.hooks.ProcessRequestHeaders(headers)

	return transport.Request{
		Method:  method,
		URL:     c.hooks.ProcessURL(rawURL),
		Headers: headers.Pairs(),
		Body:    c.hooks.ProcessRequestBody(opts.Body),
		Timeout: timeout,
		Options: topts,
	}, nil
}

// resolveLocation normalizes a redirect Location against the originating
// URL. Absolute locations starting with "http" are used as-is; relative
// locations are resolved against the originating scheme://host.
func resolveLocation(current, location string) string {
	if strings.HasPrefix(location, "http") {
		return location
	}
	u, err := url.Parse(current)
	if err != nil || u.Host == "" {
		return location
	}
	origin := u.Scheme + "://" + u.Host
	if !strings.HasPrefix(location, "/") {
		return origin + "/" + location
	}
	return origin + location
}
