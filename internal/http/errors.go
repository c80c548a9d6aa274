package http

import (
	"errors"
	"fmt"
)

// Sentinel errors. The typed errors below match their sentinel with errors.Is.
var (
	ErrTargetParse   = errors.New("hc: invalid target")
	ErrTransport     = errors.New("hc: transport failure")
	ErrResponseParse = errors.New("hc: malformed response")

	// ErrAlreadyConnected is returned by a connect call on a Conn whose
	// socket is still open.
	ErrAlreadyConnected = errors.New("hc: already connected")

	// ErrNotConnected is returned by I/O on a Conn without an open socket.
	ErrNotConnected = errors.New("hc: not connected")

	ErrUnsupportedScheme = errors.New("hc: unsupported scheme")
	ErrUnsupportedMethod = errors.New("hc: unsupported method")

	// ErrIncompleteBody marks a body that ended before its framing said it would.
	ErrIncompleteBody = errors.New("hc: incomplete body")

	// ErrHeaderTooLarge is returned when the response head exceeds the
	// configured limit before the terminator was seen.
	ErrHeaderTooLarge = errors.New("hc: response header too large")
)

// TargetParseError reports a connection string that could not be resolved.
type TargetParseError struct {
	Input  string
	Reason string
	Err    error
}

func (e *TargetParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("hc: invalid target %q: %s: %v", e.Input, e.Reason, e.Err)
	}
	return fmt.Sprintf("hc: invalid target %q: %s", e.Input, e.Reason)
}

func (e *TargetParseError) Unwrap() error { return e.Err }

func (e *TargetParseError) Is(target error) bool { return target == ErrTargetParse }

// TransportErrorKind classifies a TransportError.
type TransportErrorKind int

const (
	KindUnknown TransportErrorKind = iota
	KindDNS
	KindConnect
	KindWrite
	KindRead
	KindClosed
	KindTimeout
)

func (k TransportErrorKind) String() string {
	switch k {
	case KindDNS:
		return "dns lookup failed"
	case KindConnect:
		return "connect failed"
	case KindWrite:
		return "write failed"
	case KindRead:
		return "read failed"
	case KindClosed:
		return "connection closed"
	case KindTimeout:
		return "timed out"
	default:
		return "transport error"
	}
}

// TransportError is any failure of the underlying byte stream: name
// resolution, connect, short write, read failure or premature close.
type TransportError struct {
	Op   string
	Kind TransportErrorKind
	Err  error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("hc: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("hc: %s: %s", e.Op, e.Kind)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// Timeout reports whether the error was caused by a deadline or cancellation.
func (e *TransportError) Timeout() bool { return e.Kind == KindTimeout }

// ResponseParseError reports a response head or framing field that could
// not be parsed.
type ResponseParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ResponseParseError) Error() string {
	msg := fmt.Sprintf("hc: malformed %s %q", e.Field, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ResponseParseError) Unwrap() error { return e.Err }

func (e *ResponseParseError) Is(target error) bool { return target == ErrResponseParse }

func newTransportError(op string, kind TransportErrorKind, err error) *TransportError {
	return &TransportError{Op: op, Kind: kind, Err: err}
}
