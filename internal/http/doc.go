// Package http is a minimal synchronous HTTP/1.1 client engine.
//
// A Conn owns one plaintext socket and issues one request at a time:
//
//	conn := http.NewConn(http.WithHostHeader())
//	defer conn.Close()
//
//	if err := conn.Connect(ctx, "http://example.com"); err != nil {
//	    return err
//	}
//	resp := conn.Get(ctx, "/", http.NewHeader("Accept", "text/html"))
//	if err := resp.Err(); err != nil {
//	    return err
//	}
//	fmt.Println(resp.Status(), resp.Get("content-type"))
//
// Verb methods never return a Go error. Transport and parse failures are
// captured in the Response, whose OK method is true only for an error-free
// 200. Bodies framed by content-length or chunked transfer coding are read
// in full; a body cut short is returned with Complete false.
//
// Connection strings take the forms "host", "host:port" and
// "scheme://host[:port][/path]"; see ParseTarget.
//
// There is no keep-alive management, redirect following, TLS or
// compression. A Conn is not safe for concurrent use.
package http
