package http

import (
	internal "github.com/wesleyorama2/hc/internal/http"
)

type (
	// Conn is one client connection. See NewConn.
	Conn = internal.Conn
	// ConnOption configures a Conn.
	ConnOption = internal.ConnOption
	// Transport is the byte-stream capability a Conn drives.
	Transport = internal.Transport
	// Target is a parsed connection string.
	Target = internal.Target
	// Header is an ordered set of unique header fields.
	Header = internal.Header
	// Field is one header field.
	Field = internal.Field
	// Request is a request builder.
	Request = internal.Request
	// Response is the outcome of one request.
	Response = internal.Response
	// ResponseHead is a parsed status line and header block.
	ResponseHead = internal.ResponseHead
	// TimingInfo holds per-phase durations.
	TimingInfo = internal.TimingInfo

	TargetParseError   = internal.TargetParseError
	TransportError     = internal.TransportError
	TransportErrorKind = internal.TransportErrorKind
	ResponseParseError = internal.ResponseParseError
)

const (
	MethodGet    = internal.MethodGet
	MethodHead   = internal.MethodHead
	MethodDelete = internal.MethodDelete
	MethodPost   = internal.MethodPost
	MethodPut    = internal.MethodPut

	SchemeHTTP  = internal.SchemeHTTP
	SchemeHTTPS = internal.SchemeHTTPS

	DefaultMaxHeaderBytes = internal.DefaultMaxHeaderBytes

	KindUnknown = internal.KindUnknown
	KindDNS     = internal.KindDNS
	KindConnect = internal.KindConnect
	KindWrite   = internal.KindWrite
	KindRead    = internal.KindRead
	KindClosed  = internal.KindClosed
	KindTimeout = internal.KindTimeout
)

var (
	ErrTargetParse       = internal.ErrTargetParse
	ErrTransport         = internal.ErrTransport
	ErrResponseParse     = internal.ErrResponseParse
	ErrAlreadyConnected  = internal.ErrAlreadyConnected
	ErrNotConnected      = internal.ErrNotConnected
	ErrUnsupportedScheme = internal.ErrUnsupportedScheme
	ErrUnsupportedMethod = internal.ErrUnsupportedMethod
	ErrIncompleteBody    = internal.ErrIncompleteBody
	ErrHeaderTooLarge    = internal.ErrHeaderTooLarge
)

var (
	NewConn            = internal.NewConn
	NewTCPTransport    = internal.NewTCPTransport
	NewHeader          = internal.NewHeader
	NewRequest         = internal.NewRequest
	ParseTarget        = internal.ParseTarget
	ParseResponseHead  = internal.ParseResponseHead
	DefaultPort        = internal.DefaultPort
	IsTimeout          = internal.IsTimeout
	WithDialer         = internal.WithDialer
	WithResolver       = internal.WithResolver
	WithTransport      = internal.WithTransport
	WithLogger         = internal.WithLogger
	WithMaxHeaderBytes = internal.WithMaxHeaderBytes
	WithHostHeader     = internal.WithHostHeader
)
