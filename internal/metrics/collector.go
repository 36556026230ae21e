package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Collector aggregates throughput counters across all workers.
//
// The hot path (AddSent/AddFailed) is atomic-only so senders never contend
// on a lock; latency histograms and error breakdowns are kept worker-local
// in a Recorder and merged here when a worker exits.
type Collector struct {
	sent      atomic.Int64
	failed    atomic.Int64
	bytesSent atomic.Int64

	mu           sync.Mutex
	hist         *hdrhistogram.Histogram
	errorsByType map[string]int64
	start        time.Time
}

// Snapshot is a point-in-time read of the shared counters.
// The two counters are independent; a snapshot taken while senders are
// running is eventually consistent between them.
type Snapshot struct {
	Sent      int64
	Failed    int64
	BytesSent int64
}

// Stats represents aggregated end-of-run metrics.
type Stats struct {
	Sent          int64         `json:"sent"`
	Failed        int64         `json:"failed"`
	Total         int64         `json:"total"`
	BytesSent     int64         `json:"bytes_sent"`
	Duration      time.Duration `json:"-"`
	PacketsPerSec float64       `json:"packets_per_sec"`
	MegabitsPerSec float64      `json:"megabits_per_sec"`

	MinSendLatency  time.Duration `json:"-"`
	MaxSendLatency  time.Duration `json:"-"`
	MeanSendLatency time.Duration `json:"-"`
	P50SendLatency  time.Duration `json:"-"`
	P90SendLatency  time.Duration `json:"-"`
	P99SendLatency  time.Duration `json:"-"`

	// JSON-friendly microsecond fields.
	MinSendLatencyUs  float64        `json:"min_send_latency_us"`
	MaxSendLatencyUs  float64        `json:"max_send_latency_us"`
	MeanSendLatencyUs float64        `json:"mean_send_latency_us"`
	P50SendLatencyUs  float64        `json:"p50_send_latency_us"`
	P90SendLatencyUs  float64        `json:"p90_send_latency_us"`
	P99SendLatencyUs  float64        `json:"p99_send_latency_us"`
	DurationMs        float64        `json:"duration_ms"`
	Errors            map[string]int `json:"errors,omitempty"`
}

func NewCollector() *Collector {
	return &Collector{
		hist:         newLatencyHistogram(),
		errorsByType: make(map[string]int64),
		start:        time.Now(),
	}
}

// Track send latencies from 1µs up to 10s with 3 significant figures.
func newLatencyHistogram() *hdrhistogram.Histogram {
	return hdrhistogram.New(1, 10_000_000, 3)
}

// Start marks the actual test start time for accurate rate calculation.
func (c *Collector) Start() {
	c.mu.Lock()
	c.start = time.Now()
	c.mu.Unlock()
}

// AddSent records one successfully sent datagram of the given size.
func (c *Collector) AddSent(bytes int64) {
	c.sent.Add(1)
	c.bytesSent.Add(bytes)
}

// AddFailed records one failed send attempt.
func (c *Collector) AddFailed() {
	c.failed.Add(1)
}

// Snapshot reads the counters without blocking senders.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		Sent:      c.sent.Load(),
		Failed:    c.failed.Load(),
		BytesSent: c.bytesSent.Load(),
	}
}

func (c *Collector) merge(hist *hdrhistogram.Histogram, errs map[string]int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if hist != nil {
		c.hist.Merge(hist)
	}
	for k, v := range errs {
		c.errorsByType[k] += v
	}
}

// Stats computes aggregated statistics for the given elapsed duration.
// Latency percentiles cover only workers whose Recorder has been closed.
func (c *Collector) Stats(elapsed time.Duration) Stats {
	snap := c.Snapshot()

	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{
		Sent:      snap.Sent,
		Failed:    snap.Failed,
		Total:     snap.Sent + snap.Failed,
		BytesSent: snap.BytesSent,
		Duration:  elapsed,
	}

	if c.hist.TotalCount() > 0 {
		stats.MinSendLatency = time.Duration(c.hist.Min()) * time.Microsecond
		stats.MaxSendLatency = time.Duration(c.hist.Max()) * time.Microsecond
		stats.MeanSendLatency = time.Duration(c.hist.Mean()) * time.Microsecond
		stats.P50SendLatency = time.Duration(c.hist.ValueAtQuantile(50)) * time.Microsecond
		stats.P90SendLatency = time.Duration(c.hist.ValueAtQuantile(90)) * time.Microsecond
		stats.P99SendLatency = time.Duration(c.hist.ValueAtQuantile(99)) * time.Microsecond
	}

	stats.MinSendLatencyUs = float64(stats.MinSendLatency) / float64(time.Microsecond)
	stats.MaxSendLatencyUs = float64(stats.MaxSendLatency) / float64(time.Microsecond)
	stats.MeanSendLatencyUs = float64(stats.MeanSendLatency) / float64(time.Microsecond)
	stats.P50SendLatencyUs = float64(stats.P50SendLatency) / float64(time.Microsecond)
	stats.P90SendLatencyUs = float64(stats.P90SendLatency) / float64(time.Microsecond)
	stats.P99SendLatencyUs = float64(stats.P99SendLatency) / float64(time.Microsecond)
	stats.DurationMs = float64(elapsed) / float64(time.Millisecond)

	if elapsed > 0 {
		stats.PacketsPerSec = float64(snap.Sent) / elapsed.Seconds()
		stats.MegabitsPerSec = float64(snap.BytesSent) * 8 / elapsed.Seconds() / 1e6
	}

	if len(c.errorsByType) > 0 {
		stats.Errors = make(map[string]int, len(c.errorsByType))
		for k, v := range c.errorsByType {
			stats.Errors[k] = int(v)
		}
	}

	return stats
}

// ErrorBreakdown returns a copy of the per-class failure counts.
func (c *Collector) ErrorBreakdown() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make(map[string]int, len(c.errorsByType))
	for k, v := range c.errorsByType {
		result[k] = int(v)
	}
	return result
}
