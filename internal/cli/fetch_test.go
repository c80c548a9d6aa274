package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seenRequest is one request as received by the test server.
type seenRequest struct {
	Line        string
	Headers     map[string]string
	HeaderLines []string
	Body        string
}

// testServer answers every connection with the response built by respond
// and records what it received.
type testServer struct {
	addr     string
	mu       sync.Mutex
	requests []seenRequest
}

func (s *testServer) seen() []seenRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]seenRequest(nil), s.requests...)
}

func startServer(t *testing.T, respond func(seenRequest) string) *testServer {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &testServer{addr: listener.Addr().String()}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer conn.Close()
				req, err := readSeenRequest(bufio.NewReader(conn))
				if err != nil {
					return
				}
				srv.mu.Lock()
				srv.requests = append(srv.requests, req)
				srv.mu.Unlock()
				io.WriteString(conn, respond(req))
			}()
		}
	}()
	t.Cleanup(func() {
		listener.Close()
		wg.Wait()
	})
	return srv
}

func readSeenRequest(br *bufio.Reader) (seenRequest, error) {
	req := seenRequest{Headers: map[string]string{}}
	line, err := br.ReadString('\n')
	if err != nil {
		return req, err
	}
	req.Line = strings.TrimRight(line, "\r\n")
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return req, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		req.HeaderLines = append(req.HeaderLines, line)
		k, v, _ := strings.Cut(line, ":")
		req.Headers[strings.ToLower(k)] = strings.TrimSpace(v)
	}
	if n, _ := strconv.Atoi(req.Headers["content-length"]); n > 0 {
		body := make([]byte, n)
		if _, err := io.ReadFull(br, body); err != nil {
			return req, err
		}
		req.Body = string(body)
	}
	return req, nil
}

func okJSON(body string) func(seenRequest) string {
	return func(seenRequest) string {
		return "HTTP/1.1 200 OK\r\nContent-Type: application/json\r\nContent-Length: " +
			strconv.Itoa(len(body)) + "\r\n\r\n" + body
	}
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestFetch_Text(t *testing.T) {
	srv := startServer(t, okJSON(`{"hello":"world"}`))

	out, _, err := runCLI(t, "fetch", "http://"+srv.addr+"/greeting", "--no-color")
	require.NoError(t, err)

	assert.Contains(t, out, "▶ REQUEST: GET http://"+srv.addr+"/greeting\n")
	assert.Contains(t, out, "◀ RESPONSE: 200 OK (")
	assert.Contains(t, out, `"hello": "world"`)

	seen := srv.seen()
	require.Len(t, seen, 1)
	assert.Equal(t, "GET /greeting HTTP/1.1", seen[0].Line)
	assert.Equal(t, srv.addr, seen[0].Headers["host"])
	assert.Len(t, seen[0].Headers["x-request-id"], 36)
}

func TestFetch_PathFlagAndHeaders(t *testing.T) {
	srv := startServer(t, okJSON(`{}`))

	_, _, err := runCLI(t, "fetch", srv.addr, "--path", "/items", "-H", "Accept: application/json",
		"-H", "X-Request-Id: fixed", "--no-color")
	require.NoError(t, err)

	seen := srv.seen()
	require.Len(t, seen, 1)
	assert.Equal(t, "GET /items HTTP/1.1", seen[0].Line)
	assert.Equal(t, "application/json", seen[0].Headers["accept"])
	assert.Equal(t, "fixed", seen[0].Headers["x-request-id"])
}

func TestFetch_CallerRequestIDAnyCase(t *testing.T) {
	srv := startServer(t, okJSON(`{}`))

	_, _, err := runCLI(t, "fetch", srv.addr, "-H", "x-request-id: abc", "--no-color")
	require.NoError(t, err)

	seen := srv.seen()
	require.Len(t, seen, 1)
	var ids []string
	for _, line := range seen[0].HeaderLines {
		if k, v, _ := strings.Cut(line, ":"); strings.EqualFold(k, "x-request-id") {
			ids = append(ids, strings.TrimSpace(v))
		}
	}
	assert.Equal(t, []string{"abc"}, ids)
}

func TestFetch_JSONWithExtract(t *testing.T) {
	srv := startServer(t, okJSON(`{"items":[{"id":7,"name":"seven"}]}`))

	out, _, err := runCLI(t, "fetch", srv.addr, "--format", "json",
		"--extract", "id=$.items[0].id", "-e", "$.items[0].name")
	require.NoError(t, err)

	var data struct {
		OK         bool              `json:"ok"`
		StatusCode int               `json:"statusCode"`
		Extracted  map[string]string `json:"extracted"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &data), out)
	assert.True(t, data.OK)
	assert.Equal(t, 200, data.StatusCode)
	assert.Equal(t, map[string]string{"id": "7", "$.items[0].name": "seven"}, data.Extracted)
}

func TestFetch_RepeatPrintsSummary(t *testing.T) {
	srv := startServer(t, okJSON(`{}`))

	out, _, err := runCLI(t, "fetch", srv.addr, "--repeat", "3", "--rate", "100", "--no-color")
	require.NoError(t, err)

	assert.Equal(t, 3, strings.Count(out, "◀ RESPONSE: 200 OK"))
	assert.Contains(t, out, "SUMMARY\n")
	assert.Contains(t, out, "Fetches:   3 (3 ok, 0 failed, 0.0% errors)")

	ids := map[string]bool{}
	for _, req := range srv.seen() {
		ids[req.Headers["x-request-id"]] = true
	}
	assert.Len(t, ids, 3, "each fetch carries its own request id")
}

func TestFetch_Profile(t *testing.T) {
	srv := startServer(t, func(req seenRequest) string {
		return "HTTP/1.1 201 Created\r\nTransfer-Encoding: chunked\r\n\r\n2\r\nok\r\n0\r\n\r\n"
	})

	profile := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(profile, []byte(`
target: http://`+srv.addr+`
method: POST
path: /users/{{id}}
headers:
  Content-Type: application/json
body: '{"id":"{{id}}"}'
format: yaml
variables:
  id: "42"
`), 0o644))

	out, _, err := runCLI(t, "fetch", "--config", profile)
	require.NoError(t, err)

	assert.Contains(t, out, "statusCode: 201")
	assert.Contains(t, out, "body: ok")

	seen := srv.seen()
	require.Len(t, seen, 1)
	assert.Equal(t, "POST /users/42 HTTP/1.1", seen[0].Line)
	assert.Equal(t, `{"id":"42"}`, seen[0].Body)
	assert.Equal(t, "11", seen[0].Headers["content-length"])
	assert.Equal(t, "application/json", seen[0].Headers["content-type"])
}

func TestFetch_FlagsOverrideProfile(t *testing.T) {
	srv := startServer(t, okJSON(`{}`))

	profile := filepath.Join(t.TempDir(), "profile.json")
	require.NoError(t, os.WriteFile(profile,
		[]byte(`{"target": "`+srv.addr+`", "path": "/from-profile", "format": "json"}`), 0o644))

	out, _, err := runCLI(t, "fetch", "--config", profile, "--path", "/from-flag", "--format", "text", "--no-color")
	require.NoError(t, err)

	assert.Contains(t, out, "◀ RESPONSE: 200 OK")
	assert.Equal(t, "GET /from-flag HTTP/1.1", srv.seen()[0].Line)
}

func TestFetch_NotFoundIsNotAFailure(t *testing.T) {
	srv := startServer(t, func(seenRequest) string {
		return "HTTP/1.1 404 Not Found\r\nContent-Length: 0\r\n\r\n"
	})

	out, _, err := runCLI(t, "fetch", srv.addr, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "◀ RESPONSE: 404 Not Found")
}

func TestFetch_TruncatedBodyFails(t *testing.T) {
	srv := startServer(t, func(seenRequest) string {
		return "HTTP/1.1 200 OK\r\nContent-Length: 10\r\n\r\nshort"
	})

	out, _, err := runCLI(t, "fetch", srv.addr, "--no-color")
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.Contains(t, out, "⚠ body incomplete")
}

func TestFetch_ConnectionRefused(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	listener.Close()

	out, _, err := runCLI(t, "fetch", addr, "--no-color")
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.Contains(t, out, "✗ ERROR: ")
}

func TestFetch_VerboseLogs(t *testing.T) {
	srv := startServer(t, okJSON(`{}`))

	out, logs, err := runCLI(t, "fetch", srv.addr, "--verbose", "--no-color")
	require.NoError(t, err)

	assert.Contains(t, out, "Timing:")
	assert.Contains(t, out, "    X-Request-Id: ")
	assert.Contains(t, logs, "connected")
	assert.Contains(t, logs, "request_id=")
}

func TestFetch_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{"no target", []string{"fetch"}, "no target"},
		{"bad header", []string{"fetch", "localhost", "-H", "novalue"}, "invalid header"},
		{"bad format", []string{"fetch", "localhost", "--format", "xml"}, "unknown output format"},
		{"bad method", []string{"fetch", "localhost", "-X", "PATCH"}, "unsupported method"},
		{"bad repeat", []string{"fetch", "localhost", "--repeat", "0"}, "--repeat"},
		{"bad timeout", []string{"fetch", "localhost", "--timeout", "0s"}, "--timeout"},
		{"missing profile", []string{"fetch", "--config", "/does/not/exist.yaml"}, "error reading profile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestSplitExtract(t *testing.T) {
	name, path := splitExtract("id=$.items[0].id")
	assert.Equal(t, "id", name)
	assert.Equal(t, "$.items[0].id", path)

	name, path = splitExtract("$.a")
	assert.Equal(t, "$.a", name)
	assert.Equal(t, "$.a", path)

	name, path = splitExtract("$.a[?(@.b=$.c)]")
	assert.Equal(t, "$.a[?(@.b=$.c)]", name, "'=$' after the start is not a name")
	assert.Equal(t, "$.a[?(@.b=$.c)]", path)
}
