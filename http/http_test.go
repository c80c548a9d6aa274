package http_test

import (
	"context"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/hc/http"
)

// newTestServer starts a standard library server so the client is checked
// against an independent HTTP/1.1 implementation.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := nethttp.NewServeMux()
	mux.HandleFunc("/json", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"host":"`+r.Host+`"}`)
	})
	mux.HandleFunc("/stream", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		flusher := w.(nethttp.Flusher)
		for _, part := range []string{"alpha ", "beta ", "gamma"} {
			io.WriteString(w, part)
			flusher.Flush()
		}
	})
	mux.HandleFunc("/echo", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Method", r.Method)
		w.Header().Set("X-Length", fmt.Sprint(r.ContentLength))
		w.Write(body)
	})
	mux.HandleFunc("/slow", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func connect(t *testing.T, srv *httptest.Server) *http.Conn {
	t.Helper()
	conn := http.NewConn(http.WithHostHeader())
	require.NoError(t, conn.Connect(context.Background(), srv.URL))
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestAgainstStdlibServer_ContentLength(t *testing.T) {
	srv := newTestServer(t)
	conn := connect(t, srv)

	resp := conn.Get(context.Background(), "/json", http.Header{})

	require.NoError(t, resp.Err())
	assert.True(t, resp.OK())
	assert.True(t, resp.Complete())
	assert.Equal(t, "application/json", resp.Get("content-type"))
	assert.Equal(t, `{"host":"`+strings.TrimPrefix(srv.URL, "http://")+`"}`, resp.BodyString())
}

func TestAgainstStdlibServer_Chunked(t *testing.T) {
	srv := newTestServer(t)
	conn := connect(t, srv)

	resp := conn.Get(context.Background(), "/stream", http.Header{})

	require.NoError(t, resp.Err())
	assert.Equal(t, "chunked", resp.Get("transfer-encoding"))
	assert.Equal(t, "alpha beta gamma", resp.BodyString())
	assert.True(t, resp.Complete())
}

func TestAgainstStdlibServer_KeepsConnectionUsable(t *testing.T) {
	srv := newTestServer(t)
	conn := connect(t, srv)
	ctx := context.Background()

	head := conn.Head(ctx, "/json", http.Header{})
	require.NoError(t, head.Err())
	assert.Empty(t, head.Body())

	post := conn.Post(ctx, "/echo", http.NewHeader("Content-Type", "text/plain"), []byte("payload"))
	require.NoError(t, post.Err())
	assert.Equal(t, "POST", post.Get("x-method"))
	assert.Equal(t, "7", post.Get("x-length"))
	assert.Equal(t, "payload", post.BodyString())

	put := conn.Put(ctx, "/echo", http.Header{}, nil)
	require.NoError(t, put.Err())
	assert.Equal(t, "PUT", put.Get("x-method"))
	assert.Equal(t, "0", put.Get("x-length"))

	del := conn.Delete(ctx, "/echo", http.Header{})
	require.NoError(t, del.Err())
	assert.Equal(t, "DELETE", del.Get("x-method"))

	missing := conn.Get(ctx, "/nowhere", http.Header{})
	require.NoError(t, missing.Err())
	assert.Equal(t, 404, missing.Status())
	assert.False(t, missing.OK())
}

func TestAgainstStdlibServer_Timeout(t *testing.T) {
	srv := newTestServer(t)
	conn := connect(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	resp := conn.Get(ctx, "/slow", http.Header{})
	assert.True(t, http.IsTimeout(resp.Err()), "got %v", resp.Err())
	assert.False(t, conn.IsOpen())
}

func TestParseTarget(t *testing.T) {
	target, err := http.ParseTarget("http://example.com/index.html")
	require.NoError(t, err)
	assert.Equal(t, http.Target{Scheme: http.SchemeHTTP, Host: "example.com", Port: 80, Path: "/index.html"}, target)

	_, err = http.ParseTarget("example.com:99999")
	assert.ErrorIs(t, err, http.ErrTargetParse)
}
