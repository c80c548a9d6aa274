package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/netip"
	"os"
	"sync"
	"syscall"
	"time"
)

// Transport is the byte-stream capability a Conn drives. One
// implementation exists per transport kind; TCPTransport is plaintext.
type Transport interface {
	// Connect establishes the stream to addr.
	Connect(ctx context.Context, addr netip.AddrPort) error

	// Send writes all of p or fails.
	Send(p []byte) error

	// ReceiveUntil blocks until delim has been seen and returns everything
	// up to and including it. A positive limit bounds how many bytes may be
	// buffered while searching.
	ReceiveUntil(delim []byte, limit int) ([]byte, error)

	// ReceiveExactly blocks until n bytes are available. On failure the
	// bytes received so far are returned with the error.
	ReceiveExactly(n int) ([]byte, error)

	// SetDeadline bounds every pending and future I/O call. The zero time
	// clears it. Safe to call from another goroutine.
	SetDeadline(t time.Time) error

	IsOpen() bool

	// Close releases the stream. Closing a closed transport is a no-op.
	Close() error
}

// TCPTransport implements Transport over a plaintext TCP socket.
type TCPTransport struct {
	dialer *net.Dialer

	mu   sync.Mutex // guards conn against SetDeadline from a cancel callback
	conn net.Conn
	rb   recvBuffer
}

// NewTCPTransport creates a transport that dials with d. A nil d uses a
// zero net.Dialer.
func NewTCPTransport(d *net.Dialer) *TCPTransport {
	if d == nil {
		d = &net.Dialer{}
	}
	return &TCPTransport{dialer: d}
}

func (t *TCPTransport) Connect(ctx context.Context, addr netip.AddrPort) error {
	if t.IsOpen() {
		return ErrAlreadyConnected
	}
	conn, err := t.dialer.DialContext(ctx, "tcp", addr.String())
	if err != nil {
		return classify("connect", KindConnect, err)
	}

	// Disable Nagle; requests are written in one piece anyway.
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(true)
	}

	t.mu.Lock()
	t.conn = conn
	t.rb = recvBuffer{r: conn}
	t.mu.Unlock()
	return nil
}

func (t *TCPTransport) Send(p []byte) error {
	if t.conn == nil {
		return newTransportError("send", KindClosed, ErrNotConnected)
	}
	for len(p) > 0 {
		n, err := t.conn.Write(p)
		p = p[n:]
		if err != nil {
			return classify("send", KindWrite, err)
		}
		if n == 0 {
			return newTransportError("send", KindWrite, io.ErrShortWrite)
		}
	}
	return nil
}

func (t *TCPTransport) ReceiveUntil(delim []byte, limit int) ([]byte, error) {
	if t.conn == nil {
		return nil, newTransportError("receive", KindClosed, ErrNotConnected)
	}
	p, err := t.rb.ReceiveUntil(delim, limit)
	if err != nil {
		var perr *ResponseParseError
		if errors.As(err, &perr) {
			return nil, err
		}
		return nil, classify("receive", KindRead, err)
	}
	return p, nil
}

func (t *TCPTransport) ReceiveExactly(n int) ([]byte, error) {
	if t.conn == nil {
		return nil, newTransportError("receive", KindClosed, ErrNotConnected)
	}
	p, err := t.rb.ReceiveExactly(n)
	if err != nil {
		return p, classify("receive", KindRead, err)
	}
	return p, nil
}

func (t *TCPTransport) SetDeadline(d time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil
	}
	return t.conn.SetDeadline(d)
}

func (t *TCPTransport) IsOpen() bool {
	return t.conn != nil
}

func (t *TCPTransport) Close() error {
	t.mu.Lock()
	conn := t.conn
	t.conn = nil
	t.rb = recvBuffer{}
	t.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close()
}

// classify maps a socket error onto a TransportError kind. fallback is
// used when nothing more specific applies.
func classify(op string, fallback TransportErrorKind, err error) *TransportError {
	var te *TransportError
	if errors.As(err, &te) {
		return te
	}
	var dnsErr *net.DNSError
	var netErr net.Error
	switch {
	case errors.As(err, &dnsErr):
		return newTransportError(op, KindDNS, err)
	case errors.Is(err, os.ErrDeadlineExceeded),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.As(err, &netErr) && netErr.Timeout():
		return newTransportError(op, KindTimeout, err)
	case errors.Is(err, syscall.ECONNREFUSED):
		return newTransportError(op, KindConnect, err)
	case errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, net.ErrClosed),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, syscall.ECONNRESET):
		return newTransportError(op, KindClosed, err)
	}
	return newTransportError(op, fallback, err)
}

const minRead = 4 << 10

// recvBuffer accumulates bytes from r and hands them out by delimiter or
// by count. Bytes read past the requested boundary stay buffered for the
// next call.
type recvBuffer struct {
	r   io.Reader
	buf []byte
}

func (b *recvBuffer) ReceiveUntil(delim []byte, limit int) ([]byte, error) {
	if len(delim) == 0 {
		return nil, errors.New("hc: empty delimiter")
	}
	scanned := 0
	for {
		if i := bytes.Index(b.buf[scanned:], delim); i >= 0 {
			return b.consume(scanned + i + len(delim)), nil
		}
		if len(b.buf) >= len(delim) {
			scanned = len(b.buf) - len(delim) + 1
		}
		if limit > 0 && len(b.buf) > limit {
			return nil, &ResponseParseError{
				Field: "header block",
				Value: fmt.Sprintf("%d bytes without %q", len(b.buf), delim),
				Err:   ErrHeaderTooLarge,
			}
		}
		if err := b.fill(); err != nil {
			return nil, err
		}
	}
}

func (b *recvBuffer) ReceiveExactly(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("hc: negative read size %d", n)
	}
	for len(b.buf) < n {
		if err := b.fill(); err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return b.consume(len(b.buf)), err
		}
	}
	return b.consume(n), nil
}

// fill appends at least one byte from r, or returns the read error.
func (b *recvBuffer) fill() error {
	if b.r == nil {
		return io.EOF
	}
	if cap(b.buf)-len(b.buf) < minRead {
		grown := make([]byte, len(b.buf), 2*cap(b.buf)+minRead)
		copy(grown, b.buf)
		b.buf = grown
	}
	for {
		n, err := b.r.Read(b.buf[len(b.buf):cap(b.buf)])
		b.buf = b.buf[:len(b.buf)+n]
		if n > 0 {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// consume returns a copy of the first n buffered bytes and drops them.
func (b *recvBuffer) consume(n int) []byte {
	out := make([]byte, n)
	copy(out, b.buf[:n])
	rest := copy(b.buf, b.buf[n:])
	b.buf = b.buf[:rest]
	return out
}
