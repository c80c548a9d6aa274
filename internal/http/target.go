package http

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
)

// Target is the resolved endpoint a connection is established against.
type Target struct {
	Scheme string
	Host   string
	Port   uint16
	// Path is the optional "/..." suffix of the connection string. It is
	// not used for connecting.
	Path string
}

// Address returns host:port, bracketing IPv6 literals.
func (t Target) Address() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(int(t.Port)))
}

// HostHeader returns the value for a Host header, omitting the port when
// it is the scheme default.
func (t Target) HostHeader() string {
	if t.Port == DefaultPort(t.Scheme) {
		if strings.Contains(t.Host, ":") {
			return "[" + t.Host + "]"
		}
		return t.Host
	}
	return t.Address()
}

func (t Target) String() string {
	return fmt.Sprintf("%s://%s%s", t.Scheme, t.Address(), t.Path)
}

// DefaultPort returns the well-known port for scheme. Unknown schemes fall
// back to the plaintext port.
func DefaultPort(scheme string) uint16 {
	switch strings.ToLower(scheme) {
	case SchemeHTTPS:
		return 443
	default:
		return 80
	}
}

// ParseTarget resolves a connection string of the form "host",
// "host:port" or "scheme://host[:port][/path]".
func ParseTarget(s string) (Target, error) {
	t := Target{Scheme: SchemeHTTP}
	rest := strings.TrimSpace(s)
	if rest == "" {
		return Target{}, &TargetParseError{Input: s, Reason: "empty target"}
	}

	if scheme, after, ok := strings.Cut(rest, "://"); ok {
		if scheme == "" {
			return Target{}, &TargetParseError{Input: s, Reason: "empty scheme"}
		}
		t.Scheme = strings.ToLower(scheme)
		rest = after
	}

	if i := strings.IndexByte(rest, '/'); i >= 0 {
		t.Path = rest[i:]
		rest = rest[:i]
	}

	host, portStr, err := splitHostPort(rest)
	if err != nil {
		return Target{}, &TargetParseError{Input: s, Reason: "bad authority", Err: err}
	}
	if host == "" {
		return Target{}, &TargetParseError{Input: s, Reason: "empty host"}
	}
	t.Host = host

	if portStr == "" {
		t.Port = DefaultPort(t.Scheme)
		return t, nil
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return Target{}, &TargetParseError{Input: s, Reason: "invalid port " + strconv.Quote(portStr), Err: err}
	}
	if port == 0 {
		return Target{}, &TargetParseError{Input: s, Reason: "port out of range"}
	}
	t.Port = uint16(port)
	return t, nil
}

// splitHostPort separates an authority into host and an optional port.
// A bare IPv6 literal is returned whole, without a port.
func splitHostPort(hostport string) (host, port string, err error) {
	if strings.HasPrefix(hostport, "[") {
		end := strings.IndexByte(hostport, ']')
		if end < 0 {
			return "", "", fmt.Errorf("missing ']' in %q", hostport)
		}
		host = hostport[1:end]
		tail := hostport[end+1:]
		switch {
		case tail == "":
			return host, "", nil
		case strings.HasPrefix(tail, ":"):
			if tail == ":" {
				return "", "", fmt.Errorf("empty port in %q", hostport)
			}
			return host, tail[1:], nil
		default:
			return "", "", fmt.Errorf("unexpected %q after ']'", tail)
		}
	}

	if strings.Count(hostport, ":") > 1 && net.ParseIP(hostport) != nil {
		return hostport, "", nil
	}
	host, port, found := strings.Cut(hostport, ":")
	if found && port == "" {
		return "", "", fmt.Errorf("empty port in %q", hostport)
	}
	return host, port, nil
}
