// Package hookhttp is a customizable HTTP client built around an overridable
// request/response pipeline.
//
// The default client handles URL normalization, header/body encoding, status
// and header decoding, redirect chasing, and streaming delivery. Every one of
// those steps is a hook on the Hooks interface; a derived client embeds
// BaseHooks, overrides the steps it cares about, and calls through to the
// embedded base for the rest:
//
//	type apiHooks struct{ hookhttp.BaseHooks }
//
//	func (h apiHooks) ProcessRequestHeaders(hdr hookhttp.Header) hookhttp.Header {
//	    hdr = h.BaseHooks.ProcessRequestHeaders(hdr)
//	    hdr.Set("X-API-Version", "2")
//	    return hdr
//	}
//
//	client, err := hookhttp.New(hookhttp.Config{}, hookhttp.WithHooks(apiHooks{}))
//
// Synchronous requests go through Do (or the verb shortcuts) and return a
// *Response. Streaming requests go through DoStream with Options.StreamTo
// set; the call returns an AsyncToken immediately and typed AsyncEvents are
// delivered to the subscriber channel in strict Headers, Chunks, End order.
//
// The wire transport is pluggable via the transport package; see the rest
// subpackage for a derived JSON client built on the hook mechanism.
package hookhttp
