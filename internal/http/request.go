package http

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Methods understood by the request builder.
const (
	MethodGet    = "GET"
	MethodHead   = "HEAD"
	MethodDelete = "DELETE"
	MethodPost   = "POST"
	MethodPut    = "PUT"
)

const crlf = "\r\n"

// Request represents an HTTP request
type Request struct {
	Method  string
	Path    string
	Headers Header
	Body    []byte
}

// NewRequest creates a new HTTP request
func NewRequest(method, path string) *Request {
	return &Request{
		Method: method,
		Path:   path,
	}
}

// WithHeader adds a header to the request
func (r *Request) WithHeader(key, value string) *Request {
	r.Headers.Set(key, value)
	return r
}

// WithHeaders copies every field of h onto the request, in order
func (r *Request) WithHeaders(h Header) *Request {
	for _, f := range h.fields {
		r.Headers.Set(f.Key, f.Value)
	}
	return r
}

// WithBody sets the body of the request
func (r *Request) WithBody(body []byte) *Request {
	r.Body = body
	return r
}

func methodAllowed(m string) bool {
	switch m {
	case MethodGet, MethodHead, MethodDelete, MethodPost, MethodPut:
		return true
	}
	return false
}

func methodHasBody(m string) bool {
	return m == MethodPost || m == MethodPut
}

// Bytes serializes the request preamble followed by the body for POST and
// PUT. Those two always carry a content-length equal to len(Body); any
// caller-supplied content-length is replaced.
func (r *Request) Bytes() ([]byte, error) {
	if !methodAllowed(r.Method) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, r.Method)
	}
	path := r.Path
	if path == "" {
		path = "/"
	}

	headers := r.Headers
	if methodHasBody(r.Method) {
		headers = headers.Clone()
		headers.DelFold("content-length")
		headers.Set("content-length", strconv.Itoa(len(r.Body)))
	}

	var buf bytes.Buffer
	buf.Grow(64 + 32*headers.Len() + len(r.Body))
	fmt.Fprintf(&buf, "%s %s HTTP/1.1%s", r.Method, sanitizePath(path), crlf)
	for _, f := range headers.fields {
		key := sanitizeHeaderKey(f.Key)
		if key == "" {
			continue
		}
		fmt.Fprintf(&buf, "%s: %s%s", key, sanitizeHeaderValue(f.Value), crlf)
	}
	buf.WriteString(crlf)
	if methodHasBody(r.Method) {
		buf.Write(r.Body)
	}
	return buf.Bytes(), nil
}

// sanitizeHeaderKey returns k if it is a valid token, "" otherwise.
func sanitizeHeaderKey(k string) string {
	if k == "" {
		return ""
	}
	for i := 0; i < len(k); i++ {
		c := k[i]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			continue
		}
		switch c {
		case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
			continue
		default:
			return ""
		}
	}
	return k
}

// sanitizeHeaderValue removes CR/LF and control chars except HTAB.
func sanitizeHeaderValue(v string) string {
	var b strings.Builder
	b.Grow(len(v))
	for i := 0; i < len(v); i++ {
		c := v[i]
		if isCtl(c) && c != '\t' {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// sanitizePath drops control chars and escapes spaces so the request line
// keeps exactly three tokens.
func sanitizePath(p string) string {
	var b strings.Builder
	b.Grow(len(p))
	for i := 0; i < len(p); i++ {
		switch c := p[i]; {
		case isCtl(c):
		case c == ' ':
			b.WriteString("%20")
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isCtl(c byte) bool {
	return c < 0x20 || c == 0x7f
}
