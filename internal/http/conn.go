package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/rs/zerolog"
)

// DefaultMaxHeaderBytes bounds the response head and chunk-size lines.
const DefaultMaxHeaderBytes = 64 << 10

// noCopy lets go vet flag copies of a Conn.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Conn owns one transport socket and its receive buffer. It issues one
// request at a time and is not safe for concurrent use; distinct Conns
// share nothing.
//
// Every blocking call takes a context. Its deadline bounds the socket I/O
// and cancelling it interrupts a blocked call.
type Conn struct {
	noCopy noCopy

	transport      Transport
	dialer         *net.Dialer
	resolver       *net.Resolver
	logger         zerolog.Logger
	maxHeaderBytes int
	hostHeader     bool

	target      Target
	dnsTime     time.Duration
	connectTime time.Duration
}

// ConnOption is a function that configures a Conn
type ConnOption func(*Conn)

// WithDialer sets the dialer used by the default TCP transport. The dialer
// is borrowed and must outlive the Conn.
func WithDialer(d *net.Dialer) ConnOption {
	return func(c *Conn) {
		c.dialer = d
	}
}

// WithResolver sets the resolver used to look up host names.
func WithResolver(r *net.Resolver) ConnOption {
	return func(c *Conn) {
		c.resolver = r
	}
}

// WithTransport replaces the TCP transport.
func WithTransport(t Transport) ConnOption {
	return func(c *Conn) {
		c.transport = t
	}
}

// WithLogger sets the logger for connection lifecycle events.
func WithLogger(l zerolog.Logger) ConnOption {
	return func(c *Conn) {
		c.logger = l
	}
}

// WithMaxHeaderBytes bounds the response head size.
func WithMaxHeaderBytes(n int) ConnOption {
	return func(c *Conn) {
		c.maxHeaderBytes = n
	}
}

// WithHostHeader adds a Host header derived from the target to requests
// that do not carry one.
func WithHostHeader() ConnOption {
	return func(c *Conn) {
		c.hostHeader = true
	}
}

// NewConn creates an unconnected Conn with the given options
func NewConn(options ...ConnOption) *Conn {
	c := &Conn{
		resolver:       net.DefaultResolver,
		logger:         zerolog.Nop(),
		maxHeaderBytes: DefaultMaxHeaderBytes,
	}

	// Apply options
	for _, option := range options {
		option(c)
	}

	if c.transport == nil {
		c.transport = NewTCPTransport(c.dialer)
	}
	return c
}

// IsOpen reports whether the socket is connected.
func (c *Conn) IsOpen() bool {
	return c.transport.IsOpen()
}

// Target returns the endpoint of the current or last connection.
func (c *Conn) Target() Target {
	return c.target
}

// ConnectAddr connects to a numeric address.
func (c *Conn) ConnectAddr(ctx context.Context, addr netip.Addr, port uint16) error {
	if c.IsOpen() {
		return ErrAlreadyConnected
	}
	c.target = Target{Scheme: SchemeHTTP, Host: addr.String(), Port: port}
	c.dnsTime = 0
	return c.dial(ctx, addr, port)
}

// ConnectHost resolves host and connects to the first address that
// accepts. A host that is already a numeric address skips resolution.
func (c *Conn) ConnectHost(ctx context.Context, host string, port uint16) error {
	return c.connectTarget(ctx, Target{Scheme: SchemeHTTP, Host: host, Port: port})
}

// Connect resolves a connection string with ParseTarget and connects to
// it. Only the http scheme can be connected.
func (c *Conn) Connect(ctx context.Context, target string) error {
	t, err := ParseTarget(target)
	if err != nil {
		return err
	}
	if t.Scheme != SchemeHTTP {
		return &TargetParseError{
			Input:  target,
			Reason: fmt.Sprintf("scheme %q cannot be connected", t.Scheme),
			Err:    ErrUnsupportedScheme,
		}
	}
	return c.connectTarget(ctx, t)
}

func (c *Conn) connectTarget(ctx context.Context, t Target) error {
	if c.IsOpen() {
		return ErrAlreadyConnected
	}
	if t.Host == "" {
		return &TargetParseError{Input: t.Host, Reason: "empty host"}
	}
	c.target = t
	c.dnsTime = 0

	if addr, err := netip.ParseAddr(t.Host); err == nil {
		return c.dial(ctx, addr, t.Port)
	}

	start := time.Now()
	addrs, err := c.resolver.LookupNetIP(ctx, "ip", t.Host)
	c.dnsTime = time.Since(start)
	if err != nil {
		kind := KindDNS
		if ctx.Err() != nil {
			kind = KindTimeout
		}
		c.logger.Debug().Err(err).Str("host", t.Host).Msg("lookup failed")
		return newTransportError("lookup", kind, err)
	}
	if len(addrs) == 0 {
		return newTransportError("lookup", KindDNS, fmt.Errorf("no addresses for %s", t.Host))
	}

	var errs []error
	for _, addr := range addrs {
		err := c.dial(ctx, addr.Unmap(), t.Port)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return newTransportError("connect", KindConnect, errors.Join(errs...))
}

func (c *Conn) dial(ctx context.Context, addr netip.Addr, port uint16) error {
	ap := netip.AddrPortFrom(addr, port)
	start := time.Now()
	err := c.transport.Connect(ctx, ap)
	c.connectTime = time.Since(start)
	if err != nil {
		c.logger.Debug().Err(err).Str("addr", ap.String()).Msg("connect failed")
		if errors.Is(err, ErrAlreadyConnected) {
			return err
		}
		return classify("connect", KindConnect, err)
	}
	c.logger.Debug().
		Str("addr", ap.String()).
		Dur("connect", c.connectTime).
		Msg("connected")
	return nil
}

// Send writes all of p.
func (c *Conn) Send(ctx context.Context, p []byte) error {
	if !c.IsOpen() {
		return newTransportError("send", KindClosed, ErrNotConnected)
	}
	defer c.guard(ctx)()
	return c.ctxError(ctx, c.transport.Send(p))
}

// ReceiveUntil blocks until delim has been received and returns all bytes
// up to and including it.
func (c *Conn) ReceiveUntil(ctx context.Context, delim []byte) ([]byte, error) {
	if !c.IsOpen() {
		return nil, newTransportError("receive", KindClosed, ErrNotConnected)
	}
	defer c.guard(ctx)()
	p, err := c.transport.ReceiveUntil(delim, 0)
	return p, c.ctxError(ctx, err)
}

// ReceiveExactly blocks until n bytes have been received. On failure the
// bytes received so far are returned with the error.
func (c *Conn) ReceiveExactly(ctx context.Context, n int) ([]byte, error) {
	if !c.IsOpen() {
		return nil, newTransportError("receive", KindClosed, ErrNotConnected)
	}
	defer c.guard(ctx)()
	p, err := c.transport.ReceiveExactly(n)
	return p, c.ctxError(ctx, err)
}

// Close releases the socket. It is safe to call more than once and always
// returns nil; close failures are only logged.
func (c *Conn) Close() error {
	if !c.IsOpen() {
		return nil
	}
	if err := c.transport.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("close failed")
		return nil
	}
	c.logger.Debug().Str("target", c.target.Address()).Msg("closed")
	return nil
}

var aLongTimeAgo = time.Unix(1, 0)

// guard applies ctx to the transport for the duration of one operation
// and returns the function that lifts it again.
func (c *Conn) guard(ctx context.Context) func() {
	if dl, ok := ctx.Deadline(); ok {
		_ = c.transport.SetDeadline(dl)
	}
	fired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		defer close(fired)
		_ = c.transport.SetDeadline(aLongTimeAgo)
	})
	return func() {
		if !stop() {
			// the callback has started; its deadline must not outlive us
			<-fired
		}
		_ = c.transport.SetDeadline(time.Time{})
	}
}

// ctxError reclassifies an I/O failure caused by ctx as a timeout.
func (c *Conn) ctxError(ctx context.Context, err error) error {
	if err == nil || ctx.Err() == nil {
		return err
	}
	var te *TransportError
	if errors.As(err, &te) {
		return &TransportError{Op: te.Op, Kind: KindTimeout, Err: fmt.Errorf("%w: %w", ctx.Err(), te.Err)}
	}
	return err
}
