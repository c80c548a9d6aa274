package http

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// byteSource is the receive half of a Transport.
type byteSource interface {
	ReceiveUntil(delim []byte, limit int) ([]byte, error)
	ReceiveExactly(n int) ([]byte, error)
}

// Framing is how a response body's length is determined.
type Framing int

const (
	FramingNone Framing = iota
	FramingLength
	FramingChunked
)

func (f Framing) String() string {
	switch f {
	case FramingLength:
		return "content-length"
	case FramingChunked:
		return "chunked"
	default:
		return "none"
	}
}

// SelectFraming decides how to read the body that follows a response head.
// Responses to HEAD, 1xx, 204 and 304 never have a body. Otherwise a
// content-length wins over transfer-encoding, and a response with neither
// has an empty body. For FramingLength the declared length is returned.
func SelectFraming(method string, status int, h Header) (Framing, int, error) {
	if method == MethodHead || status < 200 || status == 204 || status == 304 {
		return FramingNone, 0, nil
	}
	if v, ok := h.Lookup("content-length"); ok {
		n, err := parseContentLength(v)
		if err != nil {
			return FramingNone, 0, err
		}
		return FramingLength, n, nil
	}
	if v, ok := h.Lookup("transfer-encoding"); ok && isChunked(v) {
		return FramingChunked, 0, nil
	}
	return FramingNone, 0, nil
}

func parseContentLength(v string) (int, error) {
	s := strings.TrimSpace(v)
	n, err := strconv.ParseUint(s, 10, 63)
	if err != nil {
		return 0, &ResponseParseError{Field: "content-length", Value: v, Err: err}
	}
	if n > math.MaxInt {
		return 0, &ResponseParseError{Field: "content-length", Value: v}
	}
	return int(n), nil
}

// isChunked reports whether chunked is the final transfer coding.
func isChunked(te string) bool {
	codings := strings.Split(te, ",")
	return strings.EqualFold(strings.TrimSpace(codings[len(codings)-1]), "chunked")
}

// readFixedBody reads exactly n bytes. A short read returns what arrived
// and an error wrapping ErrIncompleteBody.
func readFixedBody(src byteSource, n int) ([]byte, error) {
	body, err := src.ReceiveExactly(n)
	if err != nil {
		return body, fmt.Errorf("%w: got %d of %d bytes: %w", ErrIncompleteBody, len(body), n, err)
	}
	return body, nil
}

// readChunkedBody decodes a chunked body. maxLine bounds chunk-size and
// trailer lines. On failure the chunks decoded so far are returned with an
// error wrapping ErrIncompleteBody.
func readChunkedBody(src byteSource, maxLine int) ([]byte, error) {
	var body []byte
	incomplete := func(err error) ([]byte, error) {
		return body, fmt.Errorf("%w: after %d bytes: %w", ErrIncompleteBody, len(body), err)
	}
	delim := []byte(crlf)

	for {
		line, err := src.ReceiveUntil(delim, maxLine)
		if err != nil {
			return incomplete(err)
		}
		size, err := parseChunkSize(line)
		if err != nil {
			return incomplete(err)
		}
		if size == 0 {
			if err := drainTrailers(src, maxLine); err != nil {
				return incomplete(err)
			}
			if body == nil {
				body = []byte{}
			}
			return body, nil
		}

		data, err := src.ReceiveExactly(size)
		body = append(body, data...)
		if err != nil {
			return incomplete(err)
		}
		term, err := src.ReceiveExactly(len(delim))
		if err != nil {
			return incomplete(err)
		}
		if !bytes.Equal(term, delim) {
			return incomplete(&ResponseParseError{Field: "chunk terminator", Value: string(term)})
		}
	}
}

// parseChunkSize reads "<hex>[;ext]\r\n".
func parseChunkSize(line []byte) (int, error) {
	raw := string(bytes.TrimSuffix(line, []byte(crlf)))
	s, _, _ := strings.Cut(raw, ";")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &ResponseParseError{Field: "chunk size", Value: raw}
	}
	n, err := strconv.ParseUint(s, 16, 63)
	if err != nil {
		return 0, &ResponseParseError{Field: "chunk size", Value: raw, Err: err}
	}
	if n > math.MaxInt {
		return 0, &ResponseParseError{Field: "chunk size", Value: raw}
	}
	return int(n), nil
}

// drainTrailers consumes trailer fields up to and including the final
// empty line. Trailer values are discarded.
func drainTrailers(src byteSource, maxLine int) error {
	for {
		line, err := src.ReceiveUntil([]byte(crlf), maxLine)
		if err != nil {
			return err
		}
		if len(line) == len(crlf) {
			return nil
		}
	}
}
