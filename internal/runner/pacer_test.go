package runner

import (
	"context"
	"testing"
	"time"
)

func TestPacerFirstWaitIsImmediate(t *testing.T) {
	p := NewPacer(1)
	start := time.Now()
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("first wait should anchor immediately, took %s", elapsed)
	}
}

func TestPacerSpacesCalls(t *testing.T) {
	p := NewPacer(100) // 10ms interval

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 11; i++ {
		if err := p.Wait(ctx); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}
	elapsed := time.Since(start)

	// 11 calls pace 10 intervals of 10ms after the immediate anchor call.
	if elapsed < 80*time.Millisecond {
		t.Fatalf("calls too fast: 11 waits in %s", elapsed)
	}
	if elapsed > 500*time.Millisecond {
		t.Fatalf("calls too slow: 11 waits in %s", elapsed)
	}
}

func TestPacerLateCallerCatchesUpWithoutBurst(t *testing.T) {
	p := NewPacer(1000) // 1ms interval

	ctx := context.Background()
	if err := p.Wait(ctx); err != nil {
		t.Fatalf("anchor: %v", err)
	}

	// Fall behind by many intervals.
	time.Sleep(30 * time.Millisecond)

	// Each call still advances the schedule by exactly one interval, so a
	// late caller gets immediate returns until the schedule catches up.
	start := time.Now()
	for i := 0; i < 10; i++ {
		if err := p.Wait(ctx); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 10*time.Millisecond {
		t.Fatalf("catch-up calls should be immediate, took %s", elapsed)
	}
}

func TestPacerWaitCancelled(t *testing.T) {
	p := NewPacer(1) // 1s interval

	ctx, cancel := context.WithCancel(context.Background())
	if err := p.Wait(ctx); err != nil {
		t.Fatalf("anchor: %v", err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	if err := p.Wait(ctx); err == nil {
		t.Fatal("expected context error from cancelled wait")
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("cancelled wait returned too slowly: %s", elapsed)
	}
}

func TestPacerSetRate(t *testing.T) {
	p := NewPacer(10)
	p.SetRate(2)

	p.mu.Lock()
	interval := p.interval
	p.mu.Unlock()

	if interval != 500*time.Millisecond {
		t.Fatalf("expected 500ms interval, got %s", interval)
	}
}

func TestPacerSetRateClampsToOne(t *testing.T) {
	p := NewPacer(10)
	p.SetRate(0)

	p.mu.Lock()
	interval := p.interval
	p.mu.Unlock()

	if interval != time.Second {
		t.Fatalf("expected clamp to 1s interval, got %s", interval)
	}
}
