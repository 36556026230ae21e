package runner

import (
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/pkonrad/udpgen/internal/metrics"
	"github.com/pkonrad/udpgen/internal/sender"
)

// Options configure the Runner.
type Options struct {
	Workers       int            // number of concurrent send workers
	Duration      time.Duration  // hard wall-clock run limit (required)
	RatePerWorker int            // datagrams per second per worker
	PayloadSize   int            // bytes per datagram
	MaxTotalRate  int            // aggregate cap across all workers (0 means none)
	Sender        sender.Factory // channel acquisition capability (required)
	Collector     *metrics.Collector
	Stages        []Stage      // optional rate schedule; overrides RatePerWorker over time
	Tracer        trace.Tracer // optional per-worker span tracing
}

func (o *Options) normalize() {
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.RatePerWorker < 1 {
		o.RatePerWorker = 1
	}
	if o.PayloadSize < 1 {
		o.PayloadSize = sender.MinPayloadSize
	}
	if o.MaxTotalRate < 0 {
		o.MaxTotalRate = 0
	}
	if o.Collector == nil {
		o.Collector = metrics.NewCollector()
	}
}
