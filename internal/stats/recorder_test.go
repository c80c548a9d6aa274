package stats

import (
	"sync"
	"testing"
	"time"
)

func TestNewRecorder(t *testing.T) {
	r := NewRecorder()

	summary := r.Summary()
	if summary.Count != 0 {
		t.Errorf("Initial Count = %d, want 0", summary.Count)
	}
	if summary.ErrorRate() != 0 {
		t.Errorf("Initial ErrorRate = %v, want 0", summary.ErrorRate())
	}
}

func TestRecorder_Record(t *testing.T) {
	r := NewRecorder()

	r.Record(Sample{Total: 10 * time.Millisecond, TimeToFirstByte: 5 * time.Millisecond, Bytes: 1000, OK: true})
	r.Record(Sample{Total: 20 * time.Millisecond, TimeToFirstByte: 8 * time.Millisecond, Bytes: 2000})
	r.Record(Sample{Failed: true})

	summary := r.Summary()

	if summary.Count != 3 {
		t.Errorf("Count = %d, want 3", summary.Count)
	}
	if summary.OK != 1 {
		t.Errorf("OK = %d, want 1", summary.OK)
	}
	if summary.Failures != 1 {
		t.Errorf("Failures = %d, want 1", summary.Failures)
	}
	if summary.Bytes != 3000 {
		t.Errorf("Bytes = %d, want 3000", summary.Bytes)
	}
	if summary.Total.Count != 2 {
		t.Errorf("Total.Count = %d, want 2 (failed fetches carry no latency)", summary.Total.Count)
	}
	if rate := summary.ErrorRate(); rate < 0.33 || rate > 0.34 {
		t.Errorf("ErrorRate = %v, want ~0.333", rate)
	}
}

func TestRecorder_Percentiles(t *testing.T) {
	r := NewRecorder()

	// Record latencies with known distribution
	for i := 1; i <= 10; i++ {
		d := time.Duration(i) * 10 * time.Millisecond
		r.Record(Sample{Total: d, TimeToFirstByte: d / 2, OK: true})
	}

	summary := r.Summary()

	// P50 should be around 50ms (with some tolerance for HDR histogram binning)
	if summary.Total.P50 < 40*time.Millisecond || summary.Total.P50 > 60*time.Millisecond {
		t.Errorf("P50 = %v, want ~50ms (±10ms)", summary.Total.P50)
	}
	if summary.Total.P99 < 90*time.Millisecond || summary.Total.P99 > 110*time.Millisecond {
		t.Errorf("P99 = %v, want ~100ms (±10ms)", summary.Total.P99)
	}
	if summary.Total.Min < 9*time.Millisecond || summary.Total.Min > 11*time.Millisecond {
		t.Errorf("Min = %v, want ~10ms", summary.Total.Min)
	}
	if summary.TimeToFirstByte.Max < 45*time.Millisecond || summary.TimeToFirstByte.Max > 55*time.Millisecond {
		t.Errorf("TTFB Max = %v, want ~50ms", summary.TimeToFirstByte.Max)
	}
}

func TestRecorder_Clamp(t *testing.T) {
	r := NewRecorderWithConfig(Config{HistogramMin: 1, HistogramMax: 1000, HistogramSigFigs: 2})

	r.Record(Sample{Total: 0})
	r.Record(Sample{Total: time.Hour})

	summary := r.Summary()
	if summary.Total.Count != 2 {
		t.Fatalf("Total.Count = %d, want 2", summary.Total.Count)
	}
	if summary.Total.Max > 2*time.Millisecond {
		t.Errorf("Max = %v, want clamped to ~1ms", summary.Total.Max)
	}
}

func TestRecorder_Reset(t *testing.T) {
	r := NewRecorder()
	r.Record(Sample{Total: time.Millisecond, OK: true, Bytes: 10})

	r.Reset()

	summary := r.Summary()
	if summary.Count != 0 || summary.Bytes != 0 || summary.Total.Count != 0 {
		t.Errorf("Reset left data behind: %+v", summary)
	}
}

func TestRecorder_Concurrent(t *testing.T) {
	r := NewRecorder()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Record(Sample{Total: time.Millisecond, OK: true, Bytes: 1})
			}
		}()
	}
	wg.Wait()

	summary := r.Summary()
	if summary.Count != 800 || summary.Total.Count != 800 || summary.Bytes != 800 {
		t.Errorf("unexpected totals: %+v", summary)
	}
}
