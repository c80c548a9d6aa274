package http

import (
	"strconv"
	"strings"
)

// ResponseHead is the parsed status line and header block of a response.
type ResponseHead struct {
	Proto  string
	Status int
	Reason string
	Header Header
}

// ParseResponseHead parses the raw bytes from the start of a response up to
// and including the blank line that ends the header block. Header keys are
// lowercased; values keep everything after the first colon, trimmed.
func ParseResponseHead(raw []byte) (ResponseHead, error) {
	text := strings.ReplaceAll(string(raw), "\r\n", "\n")
	lines := strings.Split(text, "\n")

	proto, status, reason, err := parseStatusLine(lines[0])
	if err != nil {
		return ResponseHead{}, err
	}
	head := ResponseHead{Proto: proto, Status: status, Reason: reason}

	for _, line := range lines[1:] {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		head.Header.Set(key, strings.TrimSpace(value))
	}
	return head, nil
}

func parseStatusLine(line string) (proto string, status int, reason string, err error) {
	tokens := strings.Fields(line)
	if len(tokens) < 2 {
		return "", 0, "", &ResponseParseError{Field: "status line", Value: line}
	}
	if !strings.HasPrefix(tokens[0], "HTTP/") {
		return "", 0, "", &ResponseParseError{Field: "protocol", Value: tokens[0]}
	}
	code, convErr := strconv.Atoi(tokens[1])
	if convErr != nil {
		return "", 0, "", &ResponseParseError{Field: "status code", Value: tokens[1], Err: convErr}
	}
	if len(tokens[1]) != 3 || code < 100 {
		return "", 0, "", &ResponseParseError{Field: "status code", Value: tokens[1]}
	}
	return tokens[0], code, strings.Join(tokens[2:], " "), nil
}
