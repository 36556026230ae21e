// Package runner provides the core send-loop execution engine for udpgen.
//
// The runner spawns one goroutine per configured worker. Each worker owns
// its outbound socket, paces itself with a [Pacer], and reports outcomes to
// the shared metrics collector via atomic increments. Workers never
// coordinate with each other; the only cross-worker contracts are the shared
// stop signal (a cancelled context) and the optional aggregate rate cap.
//
// # Basic Usage
//
//	opts := runner.Options{
//		Workers:       4,
//		Duration:      time.Minute,
//		RatePerWorker: 1000,
//		PayloadSize:   512,
//		Sender:        sender.UDP("192.0.2.10", 8080, time.Second),
//		Collector:     collector,
//	}
//	r := runner.New(opts)
//	result := r.Run(ctx)
//
// # Pacing
//
// [Pacer] schedules send instants spaced exactly 1/rate apart, anchored to
// the first call. A worker that overruns its interval gets immediate returns
// while the schedule catches up; lateness is never converted into a burst.
//
// # Termination
//
// Three independent paths end a run: cancellation of the supplied context
// (the stop signal set by the reporter or an interrupt), the runner's own
// deadline context, and each worker's per-iteration elapsed-time check.
// Once the stop signal is set, a worker attempts no new send after at most
// one pacing interval.
//
// # Rate schedules
//
// An optional [Stage] list varies the per-worker rate over the run (ramp,
// step, hold). A controller goroutine re-applies the scheduled rate to every
// pacer at 100ms granularity.
package runner
