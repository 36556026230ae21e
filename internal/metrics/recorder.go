package metrics

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Recorder collects per-worker observations without sharing mutable state.
// Shared counters are bumped atomically on every call; the histogram and
// error breakdown stay local until Close merges them into the Collector.
// A Recorder must not be used from more than one goroutine.
type Recorder struct {
	collector *Collector
	hist      *hdrhistogram.Histogram
	errs      map[string]int64
	sent      int64
	failed    int64
}

// NewRecorder creates a worker-local recorder backed by the given collector.
func NewRecorder(c *Collector) *Recorder {
	return &Recorder{
		collector: c,
		hist:      newLatencyHistogram(),
		errs:      make(map[string]int64),
	}
}

// Sent records a successful send and its local send-call latency.
func (r *Recorder) Sent(latency time.Duration, bytes int) {
	r.collector.AddSent(int64(bytes))
	r.sent++
	r.record(latency)
}

// Failed records a failed send attempt. The error is bucketed by class,
// never logged, so a flapping destination cannot flood the output.
func (r *Recorder) Failed(latency time.Duration, err error) {
	r.collector.AddFailed()
	r.failed++
	r.errs[ClassifyError(err)]++
	r.record(latency)
}

// Counts returns the number of sends this worker recorded.
func (r *Recorder) Counts() (sent, failed int64) {
	return r.sent, r.failed
}

// Close merges the local observations into the shared collector.
func (r *Recorder) Close() {
	r.collector.merge(r.hist, r.errs)
	r.errs = make(map[string]int64)
	r.hist = newLatencyHistogram()
}

func (r *Recorder) record(latency time.Duration) {
	if latency <= 0 {
		return
	}
	us := latency.Microseconds()
	if us < r.hist.LowestTrackableValue() {
		us = r.hist.LowestTrackableValue()
	}
	if us > r.hist.HighestTrackableValue() {
		us = r.hist.HighestTrackableValue()
	}
	_ = r.hist.RecordValue(us)
}
