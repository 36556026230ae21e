package runner

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Pacer converts a per-worker target rate into evenly spaced send instants.
//
// The schedule is anchored to the first Wait call and advances by exactly
// one interval per call regardless of how late the caller arrived. A late
// caller gets an immediate return while the schedule catches up, so overrun
// is absorbed without ever compounding into a burst.
type Pacer struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

// NewPacer creates a pacer for the given rate in datagrams per second.
func NewPacer(pps int) *Pacer {
	if pps < 1 {
		pps = 1
	}
	return &Pacer{interval: time.Second / time.Duration(pps)}
}

// Wait blocks until the next scheduled send instant. If that instant has
// already passed it returns immediately. Returns the context error when the
// context is cancelled before the instant arrives.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	if p.next.IsZero() {
		p.next = time.Now()
	}
	target := p.next
	p.next = target.Add(p.interval)
	p.mu.Unlock()

	delay := time.Until(target)
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// SetRate adjusts the spacing of future instants. Instants already scheduled
// are unaffected. Used by the stage controller; rates below one datagram per
// second are clamped.
func (p *Pacer) SetRate(pps float64) {
	if pps < 1 {
		pps = 1
	}
	interval := time.Duration(float64(time.Second) / pps)
	p.mu.Lock()
	p.interval = interval
	p.mu.Unlock()
}

// newTotalCap builds the shared limiter enforcing an aggregate rate across
// all workers. Burst equal to the rate smooths pacing under concurrency.
func newTotalCap(pps int) *rate.Limiter {
	if pps <= 0 {
		return nil
	}
	burst := int(math.Ceil(float64(pps)))
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(pps), burst)
}
