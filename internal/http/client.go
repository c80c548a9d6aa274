package http

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var headTerminator = []byte("\r\n\r\n")

// Get issues a GET request for path.
func (c *Conn) Get(ctx context.Context, path string, headers Header) *Response {
	return c.Do(ctx, NewRequest(MethodGet, path).WithHeaders(headers))
}

// Head issues a HEAD request. The response never has a body, whatever its
// headers declare.
func (c *Conn) Head(ctx context.Context, path string, headers Header) *Response {
	return c.Do(ctx, NewRequest(MethodHead, path).WithHeaders(headers))
}

// Delete issues a DELETE request for path.
func (c *Conn) Delete(ctx context.Context, path string, headers Header) *Response {
	return c.Do(ctx, NewRequest(MethodDelete, path).WithHeaders(headers))
}

// Post issues a POST request with body and a matching content-length.
func (c *Conn) Post(ctx context.Context, path string, headers Header, body []byte) *Response {
	return c.Do(ctx, NewRequest(MethodPost, path).WithHeaders(headers).WithBody(body))
}

// Put issues a PUT request with body and a matching content-length.
func (c *Conn) Put(ctx context.Context, path string, headers Header, body []byte) *Response {
	return c.Do(ctx, NewRequest(MethodPut, path).WithHeaders(headers).WithBody(body))
}

// Do sends req and reads one response. It never returns nil: failures are
// captured in the Response. After a transport or parse failure, or a body
// that ended early, the socket is closed because the stream position is
// no longer known.
func (c *Conn) Do(ctx context.Context, req *Request) *Response {
	timing := TimingInfo{
		StartTime:      time.Now(),
		DNSLookupTime:  c.dnsTime,
		TCPConnectTime: c.connectTime,
	}
	log := c.logger.With().Str("method", req.Method).Str("path", req.Path).Logger()

	fail := func(err error) *Response {
		log.Debug().Err(err).Msg("request failed")
		_ = c.Close()
		timing.TotalTime = time.Since(timing.StartTime)
		return NewErrorResponse(err, timing)
	}

	if !c.IsOpen() {
		return NewErrorResponse(newTransportError("send", KindClosed, ErrNotConnected), timing)
	}
	if err := ctx.Err(); err != nil {
		return fail(newTransportError("send", KindTimeout, err))
	}

	if c.hostHeader && !req.Headers.HasFold("host") {
		req = &Request{
			Method:  req.Method,
			Path:    req.Path,
			Headers: req.Headers.Clone(),
			Body:    req.Body,
		}
		req.Headers.Set("Host", c.target.HostHeader())
	}
	payload, err := req.Bytes()
	if err != nil {
		// nothing was written; the connection is still usable
		return NewErrorResponse(err, timing)
	}

	release := c.guard(ctx)
	defer release()

	if err := c.transport.Send(payload); err != nil {
		return fail(c.ctxError(ctx, err))
	}
	sent := time.Now()
	log.Debug().Int("bytes", len(payload)).Msg("request sent")

	// Interim 1xx heads precede the final one. 101 is final: the stream
	// stops being HTTP after it.
	var head ResponseHead
	for {
		raw, err := c.transport.ReceiveUntil(headTerminator, c.maxHeaderBytes)
		if err != nil {
			return fail(c.ctxError(ctx, err))
		}
		if timing.TimeToFirstByte == 0 {
			timing.TimeToFirstByte = time.Since(sent)
		}
		head, err = ParseResponseHead(raw)
		if err != nil {
			return fail(err)
		}
		if head.Status >= 200 || head.Status == 101 {
			break
		}
		log.Debug().Int("status", head.Status).Msg("interim response skipped")
	}
	framing, length, err := SelectFraming(req.Method, head.Status, head.Header)
	if err != nil {
		return fail(err)
	}
	log.Debug().
		Int("status", head.Status).
		Stringer("framing", framing).
		Msg("response head received")

	bodyStart := time.Now()
	var body []byte
	var bodyErr error
	switch framing {
	case FramingLength:
		body, bodyErr = readFixedBody(c.transport, length)
	case FramingChunked:
		body, bodyErr = readChunkedBody(c.transport, c.maxHeaderBytes)
	}
	timing.ContentTransferTime = time.Since(bodyStart)
	timing.TotalTime = time.Since(timing.StartTime)

	if bodyErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			bodyErr = fmt.Errorf("%w: %w", bodyErr, ctxErr)
		}
		log.Debug().Err(bodyErr).Int("received", len(body)).Msg("body incomplete")
		_ = c.Close()
	}
	return NewResponse(head, body, bodyErr, timing)
}

// IsTimeout reports whether err was caused by a deadline or cancellation.
func IsTimeout(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Timeout()
}
