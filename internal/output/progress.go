package output

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/pkonrad/udpgen/internal/metrics"
)

// ProgressReporter displays real-time progress updates and terminates the
// run once the configured duration has elapsed.
//
// It samples the collector once per interval, derives the instantaneous rate
// from the delta against the previous sample, and overwrites a single
// console line. When elapsed time reaches the run duration it invokes the
// stop function (the shared stop signal) exactly once and exits.
type ProgressReporter struct {
	collector *metrics.Collector
	ticker    *time.Ticker
	done      chan struct{}
	finished  chan struct{}
	writer    io.Writer
	active    int32
	start     time.Time
	interval  time.Duration
	duration  time.Duration
	stop      func()
}

// NewProgressReporter creates a progress reporter that updates at the given
// interval. stop is called when duration elapses; it must be idempotent.
func NewProgressReporter(collector *metrics.Collector, interval, duration time.Duration, writer io.Writer, stop func()) *ProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	return &ProgressReporter{
		collector: collector,
		ticker:    time.NewTicker(interval),
		done:      make(chan struct{}),
		finished:  make(chan struct{}),
		writer:    writer,
		start:     time.Now(),
		interval:  interval,
		duration:  duration,
		stop:      stop,
	}
}

// Start begins displaying progress updates in a background goroutine.
func (p *ProgressReporter) Start() {
	if !atomic.CompareAndSwapInt32(&p.active, 0, 1) {
		return // already running
	}
	p.start = time.Now()
	go p.run()
}

// Stop halts progress updates.
func (p *ProgressReporter) Stop() {
	if atomic.CompareAndSwapInt32(&p.active, 1, 0) {
		close(p.done)
		p.ticker.Stop()
		<-p.finished
	}
}

func (p *ProgressReporter) run() {
	defer close(p.finished)
	var lastSent int64
	for {
		select {
		case <-p.ticker.C:
			elapsed := time.Since(p.start)
			if p.duration > 0 && elapsed >= p.duration {
				if p.stop != nil {
					p.stop()
				}
				return
			}
			snap := p.collector.Snapshot()
			rate := float64(snap.Sent-lastSent) / p.interval.Seconds()
			lastSent = snap.Sent
			fmt.Fprintf(p.writer, "\rElapsed: %ds | Sent: %d | Failed: %d | Rate: %.0f pps",
				int(elapsed.Seconds()), snap.Sent, snap.Failed, rate)
		case <-p.done:
			return
		}
	}
}
