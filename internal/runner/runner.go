package runner

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Result captures the outcome of a run.
type Result struct {
	Sent          int64
	Failed        int64
	BytesSent     int64
	FailedWorkers int
	Duration      time.Duration
}

// Runner coordinates independently paced send workers toward one destination.
type Runner struct {
	opt   Options
	sched *schedule
}

func New(opt Options) *Runner {
	opt.normalize()
	return &Runner{opt: opt, sched: compileSchedule(opt.Stages)}
}

// Run spawns the workers and blocks until all of them have exited.
//
// Termination is redundant: the context carries the stop signal set by the
// reporter (or an interrupt), and a deadline plus each worker's own elapsed
// check independently bound the run to the configured duration.
func (r *Runner) Run(ctx context.Context) Result {
	start := time.Now()
	deadline := start.Add(r.opt.Duration)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if r.opt.Duration > 0 {
		deadlineCtx, deadlineCancel := context.WithDeadline(ctx, deadline)
		ctx = deadlineCtx
		defer deadlineCancel()
	}

	pacers := make([]*Pacer, r.opt.Workers)
	for i := range pacers {
		pacers[i] = NewPacer(r.opt.RatePerWorker)
	}

	if r.sched != nil {
		go r.runStageController(ctx, pacers, start)
	}

	totalCap := newTotalCap(r.opt.MaxTotalRate)

	var failedWorkers atomic.Int32
	var wg sync.WaitGroup
	wg.Add(r.opt.Workers)
	for i := 0; i < r.opt.Workers; i++ {
		go func(id int) {
			defer wg.Done()
			r.worker(ctx, id, pacers[id], totalCap, deadline, &failedWorkers)
		}(i)
	}
	wg.Wait()

	snap := r.opt.Collector.Snapshot()
	return Result{
		Sent:          snap.Sent,
		Failed:        snap.Failed,
		BytesSent:     snap.BytesSent,
		FailedWorkers: int(failedWorkers.Load()),
		Duration:      time.Since(start),
	}
}

// runStageController re-applies the scheduled rate to every pacer at 100ms
// granularity. When the schedule is exhausted the base rate is restored for
// the remainder of the run.
func (r *Runner) runStageController(ctx context.Context, pacers []*Pacer, start time.Time) {
	setAll := func(pps float64) {
		for _, p := range pacers {
			p.SetRate(pps)
		}
	}

	if initial, ok := r.sched.rateAt(0); ok {
		setAll(initial)
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			elapsed := time.Since(start)
			pps, ok := r.sched.rateAt(elapsed)
			if !ok {
				setAll(float64(r.opt.RatePerWorker))
				return
			}
			setAll(pps)
		}
	}
}
