// Package metrics provides shared throughput counters for the send workers.
//
// The central [Collector] holds the process-wide sent/failed/bytes counters.
// They are mutated only via atomic increments and read via [Collector.Snapshot],
// so the 1 Hz progress loop never perturbs the senders:
//
//	collector := metrics.NewCollector()
//	collector.Start() // mark test start for accurate rate calculation
//
//	snap := collector.Snapshot()
//	fmt.Println(snap.Sent, snap.Failed)
//
// # Per-worker recording
//
// Each worker owns a [Recorder], which bumps the shared counters atomically
// and keeps its send-latency histogram and error breakdown worker-local.
// Closing the recorder merges the local state into the collector, so the
// send hot path never takes a lock:
//
//	rec := metrics.NewRecorder(collector)
//	defer rec.Close()
//
//	rec.Sent(latency, bytes)
//	rec.Failed(latency, err)
//
// # Statistics
//
// [Collector.Stats] computes the end-of-run [Stats]: totals, packets per
// second, megabits per second, send-latency percentiles and an error-class
// breakdown. Latency percentiles cover only workers whose recorder has been
// closed; the live counters are always current.
package metrics
