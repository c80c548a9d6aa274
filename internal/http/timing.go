package http

import "time"

// TimingInfo stores per-phase durations of one request/response cycle.
type TimingInfo struct {
	// StartTime is when the request started
	StartTime time.Time

	// DNSLookupTime and TCPConnectTime belong to the connection the
	// response was read from; every response on it reports them.
	DNSLookupTime  time.Duration
	TCPConnectTime time.Duration

	// TimeToFirstByte runs from the end of the send to the end of the
	// response head.
	TimeToFirstByte time.Duration

	// ContentTransferTime is the time spent reading the body
	ContentTransferTime time.Duration

	// TotalTime is send + head + body, excluding connection setup
	TotalTime time.Duration
}

// GetDNSLookupTimeMillis returns the DNS lookup time in milliseconds
func (r *Response) GetDNSLookupTimeMillis() int64 {
	return r.timing.DNSLookupTime.Milliseconds()
}

// GetTCPConnectTimeMillis returns the TCP connection time in milliseconds
func (r *Response) GetTCPConnectTimeMillis() int64 {
	return r.timing.TCPConnectTime.Milliseconds()
}

// GetTimeToFirstByteMillis returns the time to first byte in milliseconds
func (r *Response) GetTimeToFirstByteMillis() int64 {
	return r.timing.TimeToFirstByte.Milliseconds()
}

// GetContentTransferTimeMillis returns the content transfer time in milliseconds
func (r *Response) GetContentTransferTimeMillis() int64 {
	return r.timing.ContentTransferTime.Milliseconds()
}

// GetTotalTimeMillis returns the total time in milliseconds
func (r *Response) GetTotalTimeMillis() int64 {
	return r.timing.TotalTime.Milliseconds()
}
