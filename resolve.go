package hookhttp

import (
	"fmt"

	"github.com/kbukum/hookhttp/transport"
)

// resolve maps a transport result onto exactly one of Response, AsyncToken
// or error. The kind switch is exhaustive over the transport contract; an
// unrecognized kind is a boundary breach and surfaces loudly as a protocol
// error, never as a partial Response.
func (c *Client) resolve(res transport.Result) (*Response, *AsyncToken, error) {
	switch res.Kind {
	case transport.KindSuccess:
		return &Response{
			StatusCode: c.hooks.ProcessStatusCode(res.Status),
			Headers:    c.hooks.ProcessResponseHeaders(res.Headers),
			Body:       c.hooks.ProcessResponseBody(res.Body),
		}, nil, nil

	case transport.KindAsync:
		return nil, &AsyncToken{ID: res.ID}, nil

	case transport.KindFailure:
		return nil, nil, failureError(res)

	default:
		return nil, nil, NewProtocolError(fmt.Sprintf("unrecognized transport result kind %d", res.Kind))
	}
}

// failureError converts a failure result into a typed error, preserving the
// transport's reason string verbatim when it carries no detail.
func failureError(res transport.Result) *Error {
	switch {
	case res.Reason == transport.ReasonTimeout:
		return NewTimeoutError(res.Err)
	case res.Err != nil:
		return NewConnectionError(res.Err.Error(), res.Err)
	case res.Reason != "":
		return NewConnectionError(string(res.Reason), nil)
	default:
		return NewConnectionError(string(transport.ReasonConnFailed), nil)
	}
}
