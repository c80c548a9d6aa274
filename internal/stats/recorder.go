// Package stats aggregates latency over repeated fetches using HDR
// histograms.
//
// # Thread Safety
//
// Recorder is safe for concurrent use. Counters use atomic operations and
// the histograms are guarded by a mutex, since RecordValue is not
// thread-safe.
package stats

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Config bounds the recordable latency range.
type Config struct {
	// HistogramMin is the minimum recordable value in microseconds (default: 1)
	HistogramMin int64

	// HistogramMax is the maximum recordable value in microseconds (default: 600000000 = 10 minutes)
	HistogramMax int64

	// HistogramSigFigs is the number of significant figures (default: 3)
	HistogramSigFigs int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		HistogramMin:     1,
		HistogramMax:     600000000,
		HistogramSigFigs: 3,
	}
}

// Sample is the measurement of one fetch.
type Sample struct {
	Total           time.Duration
	TimeToFirstByte time.Duration
	Bytes           int64

	// OK is false for transport failures and non-200 statuses.
	OK bool
	// Failed is true when no response could be read at all.
	Failed bool
}

// Recorder collects samples.
type Recorder struct {
	mu        sync.Mutex // guards the histograms and startTime
	totalHist *hdrhistogram.Histogram
	ttfbHist  *hdrhistogram.Histogram

	count    atomic.Int64
	ok       atomic.Int64
	failures atomic.Int64
	bytes    atomic.Int64

	startTime time.Time
	config    Config
}

// NewRecorder creates a recorder with default configuration.
func NewRecorder() *Recorder {
	return NewRecorderWithConfig(DefaultConfig())
}

// NewRecorderWithConfig creates a recorder with custom configuration.
func NewRecorderWithConfig(config Config) *Recorder {
	return &Recorder{
		totalHist: hdrhistogram.New(config.HistogramMin, config.HistogramMax, config.HistogramSigFigs),
		ttfbHist:  hdrhistogram.New(config.HistogramMin, config.HistogramMax, config.HistogramSigFigs),
		startTime: time.Now(),
		config:    config,
	}
}

// Record adds one sample. Failed fetches are counted but their latency is
// not recorded.
func (r *Recorder) Record(s Sample) {
	r.count.Add(1)
	r.bytes.Add(s.Bytes)
	if s.OK {
		r.ok.Add(1)
	}
	if s.Failed {
		r.failures.Add(1)
		return
	}

	r.mu.Lock()
	r.totalHist.RecordValue(r.clamp(s.Total))
	r.ttfbHist.RecordValue(r.clamp(s.TimeToFirstByte))
	r.mu.Unlock()
}

func (r *Recorder) clamp(d time.Duration) int64 {
	micros := d.Microseconds()
	if micros < r.config.HistogramMin {
		micros = r.config.HistogramMin
	}
	if micros > r.config.HistogramMax {
		micros = r.config.HistogramMax
	}
	return micros
}

// Summary returns a point-in-time view of everything recorded.
func (r *Recorder) Summary() Summary {
	r.mu.Lock()
	total := latencyOf(r.totalHist)
	ttfb := latencyOf(r.ttfbHist)
	start := r.startTime
	r.mu.Unlock()

	count := r.count.Load()
	elapsed := time.Since(start)
	rps := 0.0
	if elapsed > 0 {
		rps = float64(count) / elapsed.Seconds()
	}
	return Summary{
		Count:           count,
		OK:              r.ok.Load(),
		Failures:        r.failures.Load(),
		Bytes:           r.bytes.Load(),
		Total:           total,
		TimeToFirstByte: ttfb,
		Elapsed:         elapsed,
		RPS:             rps,
	}
}

// Reset clears all samples.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.totalHist.Reset()
	r.ttfbHist.Reset()
	r.startTime = time.Now()
	r.mu.Unlock()

	r.count.Store(0)
	r.ok.Store(0)
	r.failures.Store(0)
	r.bytes.Store(0)
}

func latencyOf(h *hdrhistogram.Histogram) LatencyStats {
	return LatencyStats{
		Min:    time.Duration(h.Min()) * time.Microsecond,
		Max:    time.Duration(h.Max()) * time.Microsecond,
		Mean:   time.Duration(h.Mean()) * time.Microsecond,
		StdDev: time.Duration(h.StdDev()) * time.Microsecond,
		P50:    time.Duration(h.ValueAtQuantile(50)) * time.Microsecond,
		P90:    time.Duration(h.ValueAtQuantile(90)) * time.Microsecond,
		P99:    time.Duration(h.ValueAtQuantile(99)) * time.Microsecond,
		Count:  h.TotalCount(),
	}
}

// Summary contains aggregate results of a run.
type Summary struct {
	Count           int64         `json:"count" yaml:"count"`
	OK              int64         `json:"ok" yaml:"ok"`
	Failures        int64         `json:"failures" yaml:"failures"`
	Bytes           int64         `json:"bytes" yaml:"bytes"`
	Total           LatencyStats  `json:"total" yaml:"total"`
	TimeToFirstByte LatencyStats  `json:"timeToFirstByte" yaml:"timeToFirstByte"`
	Elapsed         time.Duration `json:"elapsed" yaml:"elapsed"`
	RPS             float64       `json:"rps" yaml:"rps"`
}

// ErrorRate is the share of fetches that produced no response.
func (s Summary) ErrorRate() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Failures) / float64(s.Count)
}

// LatencyStats contains latency statistics.
type LatencyStats struct {
	Min    time.Duration `json:"min" yaml:"min"`
	Max    time.Duration `json:"max" yaml:"max"`
	Mean   time.Duration `json:"mean" yaml:"mean"`
	StdDev time.Duration `json:"stdDev" yaml:"stdDev"`
	P50    time.Duration `json:"p50" yaml:"p50"`
	P90    time.Duration `json:"p90" yaml:"p90"`
	P99    time.Duration `json:"p99" yaml:"p99"`
	Count  int64         `json:"count" yaml:"count"`
}
