// Package http is the public face of the hc client: a minimal, synchronous
// HTTP/1.1 client over plain TCP.
//
// A Conn owns one socket. Connect it, issue requests one at a time, and
// close it:
//
//	conn := http.NewConn(http.WithHostHeader())
//	defer conn.Close()
//
//	if err := conn.Connect(ctx, "http://example.com"); err != nil {
//	    log.Fatal(err)
//	}
//
//	resp := conn.Get(ctx, "/", http.NewHeader("Accept", "text/html"))
//	if !resp.OK() {
//	    log.Fatalf("status %d: %v", resp.Status(), resp.Err())
//	}
//	fmt.Println(resp.BodyString())
//
// Verb operations never return a Go error. A transport or parse failure
// yields a Response with Err set and status 0; a body that ended early is
// reported by Complete and BodyErr.
//
// Timing Example:
//
//	resp := conn.Get(ctx, "/", http.Header{})
//	fmt.Printf("TTFB: %v\n", resp.Timing().TimeToFirstByte)
//	fmt.Printf("Total: %dms\n", resp.GetTotalTimeMillis())
//
// The context passed to each call bounds its socket I/O; cancelling it
// interrupts a blocked read.
package http
