package hookhttp

import (
	"strings"

	"github.com/kbukum/hookhttp/transport"
)

// Hooks is the customization surface of the pipeline. Every step the client
// takes between accepting a request and handing back a result goes through
// one of these methods. All hooks are pure transforms; they must not perform
// I/O.
//
// Derived clients embed BaseHooks and override a subset. The embedded value
// doubles as the explicit call-through-to-base mechanism: an override invokes
// h.BaseHooks.Method(...) to run the default behavior.
type Hooks interface {
	// ProcessURL normalizes a request URL before dispatch.
	ProcessURL(url string) string

	// ProcessRequestBody transforms the outbound body.
	ProcessRequestBody(body []byte) []byte

	// ProcessRequestHeaders transforms the outbound headers.
	ProcessRequestHeaders(h Header) Header

	// ProcessResponseBody flattens a raw payload into contiguous bytes.
	ProcessResponseBody(raw transport.Payload) []byte

	// ProcessResponseChunk flattens one streamed chunk. An error-shaped
	// chunk is passed through unchanged as the returned error.
	ProcessResponseChunk(raw transport.Chunk) ([]byte, error)

	// ProcessStatusCode parses a numeric status code from its wire form.
	ProcessStatusCode(raw string) int

	// ProcessResponseHeaders normalizes raw wire pairs into a Header.
	ProcessResponseHeaders(raw []transport.HeaderPair) Header

	// ProcessOptions runs before the options are consumed; the override
	// point for injecting or validating configuration.
	ProcessOptions(opts Options) Options

	// IsRedirect reports whether a result carries a redirect status.
	IsRedirect(res transport.Result) bool

	// ResponseOK reports whether the transport result is success-shaped.
	ResponseOK(res transport.Result) bool

	// ProcessResponseLocation extracts the Location header from a raw
	// result. The second return is false when no Location is present.
	ProcessResponseLocation(res transport.Result) (string, bool)
}

// BaseHooks implements the default pipeline behavior.
type BaseHooks struct{}

var _ Hooks = BaseHooks{}

// ProcessURL prefixes "http://" when the URL has no http or https scheme.
func (BaseHooks) ProcessURL(url string) string {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	return "http://" + url
}

// ProcessRequestBody is the identity transform.
func (BaseHooks) ProcessRequestBody(body []byte) []byte { return body }

// ProcessRequestHeaders is the identity transform.
func (BaseHooks) ProcessRequestHeaders(h Header) Header { return h }

// ProcessResponseBody concatenates the payload segments.
func (BaseHooks) ProcessResponseBody(raw transport.Payload) []byte {
	return flatten(raw)
}

// ProcessResponseChunk concatenates a data chunk's segments; an error-shaped
// chunk passes through untouched.
func (BaseHooks) ProcessResponseChunk(raw transport.Chunk) ([]byte, error) {
	if raw.Err != nil {
		return nil, raw.Err
	}
	return flatten(raw.Data), nil
}

// ProcessStatusCode takes the leading integer of the wire status and
// discards the remainder, so "200 OK" parses as 200. Returns 0 when the
// status does not begin with a digit.
func (BaseHooks) ProcessStatusCode(raw string) int {
	code := 0
	for i := 0; i < len(raw) && raw[i] >= '0' && raw[i] <= '9'; i++ {
		code = code*10 + int(raw[i]-'0')
	}
	return code
}

// ProcessResponseHeaders canonicalizes key casing and coalesces repeated
// keys into ordered value slices; the resulting Header iterates sorted.
func (BaseHooks) ProcessResponseHeaders(raw []transport.HeaderPair) Header {
	h := make(Header, len(raw))
	for _, p := range raw {
		h.Add(p.Name, p.Value)
	}
	return h
}

// ProcessOptions is the identity transform.
func (BaseHooks) ProcessOptions(opts Options) Options { return opts }

// IsRedirect reports a status strictly between 300 and 400.
func (b BaseHooks) IsRedirect(res transport.Result) bool {
	code := b.ProcessStatusCode(res.Status)
	return code > 300 && code < 400
}

// ResponseOK reports whether the result kind indicates success.
func (BaseHooks) ResponseOK(res transport.Result) bool {
	return res.Kind == transport.KindSuccess
}

// ProcessResponseLocation extracts the Location header via
// ProcessResponseHeaders.
func (b BaseHooks) ProcessResponseLocation(res transport.Result) (string, bool) {
	loc := b.ProcessResponseHeaders(res.Headers).Get("Location")
	return loc, loc != ""
}

func flatten(p transport.Payload) []byte {
	switch len(p) {
	case 0:
		return nil
	case 1:
		return p[0]
	}
	size := 0
	for _, seg := range p {
		size += len(seg)
	}
	out := make([]byte, 0, size)
	for _, seg := range p {
		out = append(out, seg...)
	}
	return out
}
