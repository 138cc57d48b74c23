package hookhttp

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/hookhttp/resilience"
	"github.com/kbukum/hookhttp/transport"
)

// fakeTransport scripts transport results per call and records requests.
type fakeTransport struct {
	mu      sync.Mutex
	calls   []transport.Request
	directs []*transport.Conn
	script  func(call int, req transport.Request) transport.Result
}

func (f *fakeTransport) Send(_ context.Context, req transport.Request) transport.Result {
	f.mu.Lock()
	call := len(f.calls)
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	return f.script(call, req)
}

func (f *fakeTransport) SendDirect(_ context.Context, conn *transport.Conn, req transport.Request) transport.Result {
	f.mu.Lock()
	call := len(f.calls)
	f.calls = append(f.calls, req)
	f.directs = append(f.directs, conn)
	f.mu.Unlock()
	return f.script(call, req)
}

func (f *fakeTransport) request(t *testing.T, i int) transport.Request {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if i >= len(f.calls) {
		t.Fatalf("transport call %d never happened (got %d calls)", i, len(f.calls))
	}
	return f.calls[i]
}

func (f *fakeTransport) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func success(status string, headers []transport.HeaderPair, body string) transport.Result {
	return transport.Result{
		Kind:    transport.KindSuccess,
		Status:  status,
		Headers: headers,
		Body:    transport.Payload{[]byte(body)},
	}
}

func newTestClient(t *testing.T, cfg Config, tr transport.Transport, opts ...Option) *Client {
	t.Helper()
	opts = append(opts, WithTransport(tr))
	c, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestClient_Do_Success(t *testing.T) {
	tr := &fakeTransport{script: func(int, transport.Request) transport.Result {
		return success("200", []transport.HeaderPair{{Name: "Content-Type", Value: "text/plain"}}, "hello")
	}}
	c := newTestClient(t, Config{}, tr)

	resp, err := c.Get(context.Background(), "example.com", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if !resp.IsSuccess() {
		t.Error("expected IsSuccess=true")
	}
	if got := resp.Headers.Get("Content-Type"); got != "text/plain" {
		t.Errorf("Content-Type = %q, want text/plain", got)
	}
	if string(resp.Body) != "hello" {
		t.Errorf("body = %q, want hello", resp.Body)
	}

	// The engine normalized the URL before dispatch.
	if got := tr.request(t, 0).URL; got != "http://example.com" {
		t.Errorf("dispatched URL = %q, want http://example.com", got)
	}
	if got := tr.request(t, 0).Method; got != http.MethodGet {
		t.Errorf("method = %q, want GET", got)
	}
}

func TestClient_Do_ConnFailed(t *testing.T) {
	tr := &fakeTransport{script: func(int, transport.Request) transport.Result {
		return transport.Result{Kind: transport.KindFailure, Reason: transport.ReasonConnFailed}
	}}
	c := newTestClient(t, Config{}, tr)

	_, err := c.Get(context.Background(), "example.com", Options{})
	if !IsConnection(err) {
		t.Fatalf("expected connection error, got %v", err)
	}
	var e *Error
	if !errors.As(err, &e) || e.Message != "conn_failed" {
		t.Errorf("message = %q, want conn_failed", e.Message)
	}
}

func TestClient_Do_ConnFailedDetail(t *testing.T) {
	inner := errors.New("dial tcp: connection refused")
	tr := &fakeTransport{script: func(int, transport.Request) transport.Result {
		return transport.Result{Kind: transport.KindFailure, Reason: transport.ReasonConnFailed, Err: inner}
	}}
	c := newTestClient(t, Config{}, tr)

	_, err := c.Get(context.Background(), "example.com", Options{})
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if e.Message != inner.Error() {
		t.Errorf("message = %q, want %q", e.Message, inner.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("inner error should be wrapped")
	}
}

func TestClient_Do_Timeout(t *testing.T) {
	tr := &fakeTransport{script: func(int, transport.Request) transport.Result {
		return transport.Result{Kind: transport.KindFailure, Reason: transport.ReasonTimeout, Err: context.DeadlineExceeded}
	}}
	c := newTestClient(t, Config{}, tr)

	_, err := c.Get(context.Background(), "example.com", Options{})
	if !IsTimeout(err) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestClient_Do_Redirect(t *testing.T) {
	tr := &fakeTransport{script: func(call int, _ transport.Request) transport.Result {
		if call == 0 {
			return success("302", []transport.HeaderPair{{Name: "Location", Value: "http://example.com/new"}}, "")
		}
		return success("200", nil, "after redirect")
	}}
	c := newTestClient(t, Config{}, tr)

	resp, err := c.Get(context.Background(), "http://example.com/old", Options{FollowRedirects: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("status = %d, want 200 (302 must stay invisible)", resp.StatusCode)
	}
	if string(resp.Body) != "after redirect" {
		t.Errorf("body = %q, want the second response", resp.Body)
	}
	if got := tr.request(t, 1).URL; got != "http://example.com/new" {
		t.Errorf("re-issued URL = %q, want http://example.com/new", got)
	}
}

func TestClient_Do_RedirectRelativeLocation(t *testing.T) {
	tr := &fakeTransport{script: func(call int, _ transport.Request) transport.Result {
		if call == 0 {
			return success("301", []transport.HeaderPair{{Name: "Location", Value: "/moved"}}, "")
		}
		return success("200", nil, "ok")
	}}
	c := newTestClient(t, Config{}, tr)

	if _, err := c.Get(context.Background(), "https://example.com/old?q=1", Options{FollowRedirects: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := tr.request(t, 1).URL; got != "https://example.com/moved" {
		t.Errorf("re-issued URL = %q, want https://example.com/moved", got)
	}
}

func TestClient_Do_RedirectDisabled(t *testing.T) {
	tr := &fakeTransport{script: func(int, transport.Request) transport.Result {
		return success("302", []transport.HeaderPair{{Name: "Location", Value: "http://example.com/new"}}, "")
	}}
	c := newTestClient(t, Config{}, tr)

	resp, err := c.Get(context.Background(), "example.com", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 302 {
		t.Errorf("status = %d, want the raw 302", resp.StatusCode)
	}
	if tr.callCount() != 1 {
		t.Errorf("calls = %d, want 1", tr.callCount())
	}
}

func TestClient_Do_RedirectLimit(t *testing.T) {
	tr := &fakeTransport{script: func(int, transport.Request) transport.Result {
		return success("302", []transport.HeaderPair{{Name: "Location", Value: "/loop"}}, "")
	}}
	c := newTestClient(t, Config{MaxRedirects: 3}, tr)

	_, err := c.Get(context.Background(), "http://example.com", Options{FollowRedirects: true})
	if !IsRedirectLimit(err) {
		t.Fatalf("expected redirect limit error, got %v", err)
	}
	if got := tr.callCount(); got != 4 {
		t.Errorf("calls = %d, want 4 (original + 3 hops)", got)
	}
}

func TestClient_Do_RedirectWithoutLocation(t *testing.T) {
	tr := &fakeTransport{script: func(int, transport.Request) transport.Result {
		return success("302", nil, "no location")
	}}
	c := newTestClient(t, Config{}, tr)

	resp, err := c.Get(context.Background(), "example.com", Options{FollowRedirects: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 302 {
		t.Errorf("status = %d, want 302 returned as-is", resp.StatusCode)
	}
}

func TestClient_Do_Direct(t *testing.T) {
	wire, err := transport.New(transport.Config{})
	if err != nil {
		t.Fatalf("transport.New: %v", err)
	}
	conn, err := wire.Dial(context.Background(), "http://example.com", transport.ConnOptions{})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	tr := &fakeTransport{script: func(int, transport.Request) transport.Result {
		return success("200", nil, "direct")
	}}
	c := newTestClient(t, Config{}, tr)

	if _, err := c.Get(context.Background(), "example.com", Options{Direct: conn}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if len(tr.directs) != 1 || tr.directs[0] != conn {
		t.Error("request should have been dispatched over the direct handle")
	}
}

func TestClient_Do_BasicAuth(t *testing.T) {
	tr := &fakeTransport{script: func(int, transport.Request) transport.Result {
		return success("200", nil, "")
	}}
	c := newTestClient(t, Config{}, tr)

	_, err := c.Get(context.Background(), "example.com", Options{
		BasicAuth: &Credentials{Username: "user", Password: "secret"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ba := tr.request(t, 0).Options.BasicAuth
	if ba == nil || ba.Username != "user" || ba.Password != "secret" {
		t.Errorf("basic auth not injected into transport options: %+v", ba)
	}
}

func TestClient_Do_BasicAuthMissingUsername(t *testing.T) {
	tr := &fakeTransport{script: func(int, transport.Request) transport.Result {
		return success("200", nil, "")
	}}
	c := newTestClient(t, Config{}, tr)

	_, err := c.Get(context.Background(), "example.com", Options{BasicAuth: &Credentials{Password: "p"}})
	if !IsConfig(err) {
		t.Fatalf("expected config error, got %v", err)
	}
	if tr.callCount() != 0 {
		t.Error("nothing should reach the transport on a config error")
	}
}

func TestClient_Do_RejectsStreamTo(t *testing.T) {
	c := newTestClient(t, Config{}, &fakeTransport{script: func(int, transport.Request) transport.Result {
		return success("200", nil, "")
	}})

	sub := make(chan AsyncEvent, 1)
	_, err := c.Do(context.Background(), http.MethodGet, "example.com", Options{StreamTo: sub})
	if !IsConfig(err) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestClient_Do_DefaultHeaders(t *testing.T) {
	tr := &fakeTransport{script: func(int, transport.Request) transport.Result {
		return success("200", nil, "")
	}}
	c := newTestClient(t, Config{Headers: map[string]string{"User-Agent": "hookhttp", "X-Env": "test"}}, tr)

	reqHeaders := Header{}
	reqHeaders.Set("X-Env", "override")
	if _, err := c.Get(context.Background(), "example.com", Options{Headers: reqHeaders}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sent := BaseHooks{}.ProcessResponseHeaders(tr.request(t, 0).Headers)
	if got := sent.Get("User-Agent"); got != "hookhttp" {
		t.Errorf("User-Agent = %q, want the client default", got)
	}
	if got := sent.Get("X-Env"); got != "override" {
		t.Errorf("X-Env = %q, request headers must override defaults", got)
	}
}

func TestClient_Do_DefaultTimeout(t *testing.T) {
	tr := &fakeTransport{script: func(int, transport.Request) transport.Result {
		return success("200", nil, "")
	}}
	c := newTestClient(t, Config{}, tr)

	if _, err := c.Get(context.Background(), "example.com", Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := tr.request(t, 0).Timeout; got != 5*time.Second {
		t.Errorf("timeout = %v, want the 5s default", got)
	}
}

// uaHooks overrides one hook and calls through to the base for the rest.
type uaHooks struct {
	BaseHooks
}

func (h uaHooks) ProcessRequestHeaders(hdr Header) Header {
	hdr = h.BaseHooks.ProcessRequestHeaders(hdr)
	hdr.Set("X-Api-Version", "2")
	return hdr
}

func TestClient_Do_DerivedHooks(t *testing.T) {
	tr := &fakeTransport{script: func(int, transport.Request) transport.Result {
		return success("200", nil, "")
	}}
	c := newTestClient(t, Config{}, tr, WithHooks(uaHooks{}))

	if _, err := c.Get(context.Background(), "example.com", Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sent := BaseHooks{}.ProcessResponseHeaders(tr.request(t, 0).Headers)
	if got := sent.Get("X-Api-Version"); got != "2" {
		t.Errorf("X-Api-Version = %q, derived hook did not run", got)
	}
	// Base behavior still applies through the call-through.
	if got := tr.request(t, 0).URL; got != "http://example.com" {
		t.Errorf("URL = %q, base ProcessURL should still apply", got)
	}
}

func TestClient_Do_RetryOptIn(t *testing.T) {
	tr := &fakeTransport{script: func(call int, _ transport.Request) transport.Result {
		if call < 2 {
			return transport.Result{Kind: transport.KindFailure, Reason: transport.ReasonConnFailed}
		}
		return success("200", nil, "eventually")
	}}
	retry := resilience.DefaultRetryConfig()
	retry.InitialBackoff = time.Millisecond
	retry.Jitter = 0
	c := newTestClient(t, Config{Retry: &retry}, tr)

	resp, err := c.Get(context.Background(), "example.com", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Body) != "eventually" {
		t.Errorf("body = %q", resp.Body)
	}
	if tr.callCount() != 3 {
		t.Errorf("calls = %d, want 3", tr.callCount())
	}
}

func TestClient_Do_NoRetryByDefault(t *testing.T) {
	tr := &fakeTransport{script: func(int, transport.Request) transport.Result {
		return transport.Result{Kind: transport.KindFailure, Reason: transport.ReasonConnFailed}
	}}
	c := newTestClient(t, Config{}, tr)

	if _, err := c.Get(context.Background(), "example.com", Options{}); err == nil {
		t.Fatal("expected error")
	}
	if tr.callCount() != 1 {
		t.Errorf("calls = %d, transport failures must never be retried automatically", tr.callCount())
	}
}

func TestClient_Verbs(t *testing.T) {
	tests := []struct {
		name string
		call func(c *Client) error
		want string
	}{
		{"get", func(c *Client) error { _, err := c.Get(context.Background(), "example.com", Options{}); return err }, http.MethodGet},
		{"head", func(c *Client) error { _, err := c.Head(context.Background(), "example.com", Options{}); return err }, http.MethodHead},
		{"post", func(c *Client) error { _, err := c.Post(context.Background(), "example.com", Options{}); return err }, http.MethodPost},
		{"put", func(c *Client) error { _, err := c.Put(context.Background(), "example.com", Options{}); return err }, http.MethodPut},
		{"patch", func(c *Client) error { _, err := c.Patch(context.Background(), "example.com", Options{}); return err }, http.MethodPatch},
		{"delete", func(c *Client) error { _, err := c.Delete(context.Background(), "example.com", Options{}); return err }, http.MethodDelete},
		{"options", func(c *Client) error { _, err := c.Options(context.Background(), "example.com", Options{}); return err }, http.MethodOptions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &fakeTransport{script: func(int, transport.Request) transport.Result {
				return success("200", nil, "")
			}}
			c := newTestClient(t, Config{}, tr)
			if err := tt.call(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := tr.request(t, 0).Method; got != tt.want {
				t.Errorf("method = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	if _, err := New(Config{MaxRedirects: -1}); err == nil {
		t.Error("negative max_redirects should fail validation")
	}
}

func TestResolveLocation(t *testing.T) {
	tests := []struct {
		current  string
		location string
		want     string
	}{
		{"http://example.com/a", "http://other.com/b", "http://other.com/b"},
		{"https://example.com/a", "/b", "https://example.com/b"},
		{"http://example.com/a", "b", "http://example.com/b"},
	}
	for _, tt := range tests {
		if got := resolveLocation(tt.current, tt.location); got != tt.want {
			t.Errorf("resolveLocation(%q, %q) = %q, want %q", tt.current, tt.location, got, tt.want)
		}
	}
}
