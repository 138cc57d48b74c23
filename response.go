package hookhttp

// Response is the terminal, immutable result of a synchronous request.
type Response struct {
	// StatusCode is the decoded HTTP status code.
	StatusCode int
	// Headers are the decoded response headers.
	Headers Header
	// Body is the flattened response body.
	Body []byte
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsSuccessOrRedirect returns true for 2xx plus 302 and 304.
func (r *Response) IsSuccessOrRedirect() bool {
	return r.IsSuccess() || r.StatusCode == 302 || r.StatusCode == 304
}

// AsyncToken is returned immediately when a request is dispatched in
// streaming mode. ID matches the ID on the events delivered for the request.
type AsyncToken struct {
	ID string
}
