package output

import (
	"bytes"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkonrad/udpgen/internal/metrics"
)

func TestProgressReporterEmitsLine(t *testing.T) {
	collector := metrics.NewCollector()
	collector.Start()
	for i := 0; i < 5; i++ {
		collector.AddSent(64)
	}

	var buf bytes.Buffer
	reporter := NewProgressReporter(collector, 50*time.Millisecond, time.Minute, &buf, nil)
	reporter.Start()

	time.Sleep(150 * time.Millisecond)
	reporter.Stop()

	out := buf.String()
	if !strings.Contains(out, "Sent: 5") {
		t.Fatalf("expected sent count in progress output, got %q", out)
	}
	if !strings.Contains(out, "\r") {
		t.Fatal("expected carriage-return overwritten line")
	}
	if !strings.Contains(out, "Rate:") {
		t.Fatalf("expected rate in progress output, got %q", out)
	}
}

func TestProgressReporterStopsRunAfterDuration(t *testing.T) {
	collector := metrics.NewCollector()
	collector.Start()

	var stopped int32
	stop := func() { atomic.AddInt32(&stopped, 1) }

	var buf bytes.Buffer
	reporter := NewProgressReporter(collector, 20*time.Millisecond, 60*time.Millisecond, &buf, stop)
	reporter.Start()

	deadline := time.Now().Add(time.Second)
	for atomic.LoadInt32(&stopped) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	reporter.Stop()

	if got := atomic.LoadInt32(&stopped); got != 1 {
		t.Fatalf("expected stop signal set exactly once, got %d", got)
	}
}

func TestProgressReporterStopIdempotent(t *testing.T) {
	collector := metrics.NewCollector()
	reporter := NewProgressReporter(collector, 50*time.Millisecond, time.Minute, nil, nil)
	reporter.Start()
	reporter.Stop()
	reporter.Stop() // second stop must not panic or block
}

func TestProgressReporterDoubleStart(t *testing.T) {
	collector := metrics.NewCollector()
	var buf bytes.Buffer
	reporter := NewProgressReporter(collector, 20*time.Millisecond, time.Minute, &buf, nil)
	reporter.Start()
	reporter.Start() // no-op
	reporter.Stop()
}
