package runner

import (
	"context"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/pkonrad/udpgen/internal/metrics"
	"github.com/pkonrad/udpgen/internal/sender"
)

// worker runs one paced send loop. It owns its sender for the loop's whole
// lifetime and releases it on every exit path. A failed send only bumps the
// failure counter; only stop, deadline or cancellation end the loop.
func (r *Runner) worker(ctx context.Context, id int, pacer *Pacer, totalCap *rate.Limiter, deadline time.Time, failedWorkers *atomic.Int32) {
	snd, err := r.opt.Sender(ctx, id)
	if err != nil {
		// Acquisition failure is local to this worker; siblings keep running.
		failedWorkers.Add(1)
		return
	}
	defer snd.Close()

	rec := metrics.NewRecorder(r.opt.Collector)
	defer rec.Close()

	if r.opt.Tracer != nil {
		var span trace.Span
		ctx, span = r.opt.Tracer.Start(ctx, "udpgen.worker",
			trace.WithAttributes(attribute.Int("udpgen.worker_id", id)),
		)
		defer func() {
			sent, failed := rec.Counts()
			span.SetAttributes(
				attribute.Int64("udpgen.sent", sent),
				attribute.Int64("udpgen.failed", failed),
			)
			span.End()
		}()
	}

	payload := sender.Payload(r.opt.PayloadSize)

	for {
		if ctx.Err() != nil {
			return
		}
		if !time.Now().Before(deadline) {
			return
		}
		if err := pacer.Wait(ctx); err != nil {
			return
		}
		if totalCap != nil {
			if err := totalCap.Wait(ctx); err != nil {
				return
			}
		}

		begin := time.Now()
		n, err := snd.Send(payload)
		if err != nil {
			rec.Failed(time.Since(begin), err)
			continue
		}
		rec.Sent(time.Since(begin), n)
	}
}
