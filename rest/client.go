// Package rest is a JSON-focused client derived from the base hookhttp
// client. It exists on the hook mechanism alone: a small hook set overrides
// the request-header and request-body steps and calls through to the base
// for everything else.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kbukum/hookhttp"
)

// jsonHooks derives the pipeline for JSON APIs. Unoverridden steps fall
// through to BaseHooks.
type jsonHooks struct {
	hookhttp.BaseHooks
}

// ProcessRequestHeaders runs the base transform, then fills in JSON
// Content-Type and Accept headers when absent.
func (h jsonHooks) ProcessRequestHeaders(hdr hookhttp.Header) hookhttp.Header {
	hdr = h.BaseHooks.ProcessRequestHeaders(hdr)
	if hdr.Get("Content-Type") == "" {
		hdr.Set("Content-Type", "application/json")
	}
	if hdr.Get("Accept") == "" {
		hdr.Set("Accept", "application/json")
	}
	return hdr
}

// Client is a JSON REST client wrapping the base hookhttp client.
type Client struct {
	http *hookhttp.Client
}

// New creates a REST client. Additional options are applied after the JSON
// hook set, so WithHooks can override it entirely.
func New(cfg hookhttp.Config, opts ...hookhttp.Option) (*Client, error) {
	opts = append([]hookhttp.Option{hookhttp.WithHooks(jsonHooks{})}, opts...)
	c, err := hookhttp.New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{http: c}, nil
}

// HTTP returns the underlying hookhttp client.
func (c *Client) HTTP() *hookhttp.Client {
	return c.http
}

// RequestOption configures a single REST request.
type RequestOption func(*hookhttp.Options)

// WithHeaders adds headers to the request.
func WithHeaders(headers map[string]string) RequestOption {
	return func(o *hookhttp.Options) {
		if o.Headers == nil {
			o.Headers = hookhttp.Header{}
		}
		for k, v := range headers {
			o.Headers.Set(k, v)
		}
	}
}

// WithTimeout overrides the request timeout.
func WithTimeout(d time.Duration) RequestOption {
	return func(o *hookhttp.Options) {
		o.Timeout = d
	}
}

// WithBasicAuth sets basic-auth credentials for the request.
func WithBasicAuth(username, password string) RequestOption {
	return func(o *hookhttp.Options) {
		o.BasicAuth = &hookhttp.Credentials{Username: username, Password: password}
	}
}

// Response wraps a typed REST response.
type Response[T any] struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Headers are the response headers.
	Headers hookhttp.Header
	// Data is the decoded response body.
	Data T
}

// Get performs a GET request and decodes the JSON response into type T.
func Get[T any](ctx context.Context, c *Client, url string, opts ...RequestOption) (*Response[T], error) {
	return do[T](ctx, c, http.MethodGet, url, nil, opts...)
}

// Post performs a POST request with a JSON body and decodes the response into type T.
func Post[T any](ctx context.Context, c *Client, url string, body any, opts ...RequestOption) (*Response[T], error) {
	return do[T](ctx, c, http.MethodPost, url, body, opts...)
}

// Put performs a PUT request with a JSON body and decodes the response into type T.
func Put[T any](ctx context.Context, c *Client, url string, body any, opts ...RequestOption) (*Response[T], error) {
	return do[T](ctx, c, http.MethodPut, url, body, opts...)
}

// Patch performs a PATCH request with a JSON body and decodes the response into type T.
func Patch[T any](ctx context.Context, c *Client, url string, body any, opts ...RequestOption) (*Response[T], error) {
	return do[T](ctx, c, http.MethodPatch, url, body, opts...)
}

// Delete performs a DELETE request and decodes the response into type T.
func Delete[T any](ctx context.Context, c *Client, url string, opts ...RequestOption) (*Response[T], error) {
	return do[T](ctx, c, http.MethodDelete, url, nil, opts...)
}

// do executes a REST request and decodes the JSON response.
func do[T any](ctx context.Context, c *Client, method, url string, body any, opts ...RequestOption) (*Response[T], error) {
	var reqOpts hookhttp.Options
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("rest: encode body: %w", err)
		}
		reqOpts.Body = data
	}
	for _, opt := range opts {
		opt(&reqOpts)
	}

	resp, err := c.http.Do(ctx, method, url, reqOpts)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("rest: HTTP %d: %s", resp.StatusCode, string(resp.Body))
	}

	var data T
	if len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, &data); err != nil {
			return nil, fmt.Errorf("rest: decode response: %w", err)
		}
	}

	return &Response[T]{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Data:       data,
	}, nil
}
