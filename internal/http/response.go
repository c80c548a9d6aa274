package http

import "strconv"

// Response is the outcome of one request/response cycle. It is built once
// by the Conn and only read afterwards.
//
// A Response either carries a transport or parse error (Err non-nil,
// Status 0, empty body) or a parsed status, headers and body. Header keys
// are lowercase; look them up with lowercase keys.
type Response struct {
	status   int
	reason   string
	proto    string
	headers  Header
	body     []byte
	complete bool
	bodyErr  error
	err      error
	timing   TimingInfo
}

// NewErrorResponse builds the Response for a request that failed before a
// response head was read.
func NewErrorResponse(err error, timing TimingInfo) *Response {
	return &Response{err: err, timing: timing}
}

// NewResponse builds a Response from a parsed head and the body read for
// it. A non-nil bodyErr marks the body incomplete.
func NewResponse(head ResponseHead, body []byte, bodyErr error, timing TimingInfo) *Response {
	if body == nil {
		body = []byte{}
	}
	return &Response{
		status:   head.Status,
		reason:   head.Reason,
		proto:    head.Proto,
		headers:  head.Header,
		body:     body,
		complete: bodyErr == nil,
		bodyErr:  bodyErr,
		timing:   timing,
	}
}

// OK reports success: no transport or parse error and status 200. Any
// other status, including 2xx other than 200, is not OK.
func (r *Response) OK() bool {
	return r.err == nil && r.status == 200
}

// Err returns the transport, target or parse error that prevented a
// response from being read, or nil.
func (r *Response) Err() error { return r.err }

// Status returns the status code, or 0 when Err is set.
func (r *Response) Status() int { return r.status }

// Reason returns the reason phrase of the status line.
func (r *Response) Reason() string { return r.reason }

// Proto returns the protocol token of the status line, e.g. "HTTP/1.1".
func (r *Response) Proto() string { return r.proto }

// StatusText returns "<code> <reason>" as it appeared on the wire.
func (r *Response) StatusText() string {
	if r.err != nil {
		return ""
	}
	if r.reason == "" {
		return strconv.Itoa(r.status)
	}
	return strconv.Itoa(r.status) + " " + r.reason
}

// Has reports whether the lowercase header key is present.
func (r *Response) Has(key string) bool { return r.headers.Has(key) }

// Get returns the value of the lowercase header key, or "".
func (r *Response) Get(key string) string { return r.headers.Get(key) }

// Lookup returns the value of the lowercase header key and whether it was
// present.
func (r *Response) Lookup(key string) (string, bool) { return r.headers.Lookup(key) }

// Headers returns a copy of the parsed headers.
func (r *Response) Headers() Header { return r.headers.Clone() }

// Body returns the body bytes. Callers must not modify the slice.
func (r *Response) Body() []byte { return r.body }

func (r *Response) BodyString() string { return string(r.body) }

// Complete reports whether the body was read to the end of its framing.
// A response with Err set is never complete.
func (r *Response) Complete() bool { return r.err == nil && r.complete }

// BodyErr explains why Complete is false for a response whose head was
// read. It wraps ErrIncompleteBody.
func (r *Response) BodyErr() error { return r.bodyErr }

func (r *Response) Timing() TimingInfo { return r.timing }

// IsSuccess returns true if the response status code is in the 2xx range
func (r *Response) IsSuccess() bool {
	return r.status >= 200 && r.status < 300
}

// IsRedirect returns true if the response status code is in the 3xx range
func (r *Response) IsRedirect() bool {
	return r.status >= 300 && r.status < 400
}

// IsClientError returns true if the response status code is in the 4xx range
func (r *Response) IsClientError() bool {
	return r.status >= 400 && r.status < 500
}

// IsServerError returns true if the response status code is in the 5xx range
func (r *Response) IsServerError() bool {
	return r.status >= 500 && r.status < 600
}
