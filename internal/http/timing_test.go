package http

import (
	"testing"
	"time"
)

func TestTimingInfo(t *testing.T) {
	// Create a response with timing information
	resp := NewResponse(ResponseHead{Status: 200, Reason: "OK"}, nil, nil, TimingInfo{
		DNSLookupTime:       10 * time.Millisecond,
		TCPConnectTime:      20 * time.Millisecond,
		TimeToFirstByte:     40 * time.Millisecond,
		ContentTransferTime: 50 * time.Millisecond,
		TotalTime:           90 * time.Millisecond,
	})

	// Test that the timing information is correctly accessible
	if resp.GetDNSLookupTimeMillis() != 10 {
		t.Errorf("Expected DNS lookup time to be 10ms, got %dms", resp.GetDNSLookupTimeMillis())
	}

	if resp.GetTCPConnectTimeMillis() != 20 {
		t.Errorf("Expected TCP connect time to be 20ms, got %dms", resp.GetTCPConnectTimeMillis())
	}

	if resp.GetTimeToFirstByteMillis() != 40 {
		t.Errorf("Expected time to first byte to be 40ms, got %dms", resp.GetTimeToFirstByteMillis())
	}

	if resp.GetContentTransferTimeMillis() != 50 {
		t.Errorf("Expected content transfer time to be 50ms, got %dms", resp.GetContentTransferTimeMillis())
	}

	if resp.GetTotalTimeMillis() != 90 {
		t.Errorf("Expected total time to be 90ms, got %dms", resp.GetTotalTimeMillis())
	}

	if resp.Timing().TotalTime != 90*time.Millisecond {
		t.Errorf("Expected Timing() to return the recorded durations")
	}
}

func TestTimingInfo_ZeroValue(t *testing.T) {
	resp := NewErrorResponse(ErrNotConnected, TimingInfo{})

	if resp.GetTotalTimeMillis() != 0 || resp.GetTimeToFirstByteMillis() != 0 {
		t.Errorf("Expected zero timings on an empty TimingInfo")
	}
}
