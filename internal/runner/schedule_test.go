package runner

import (
	"testing"
	"time"
)

func TestCompileScheduleEmpty(t *testing.T) {
	if s := compileSchedule(nil); s != nil {
		t.Fatal("expected nil schedule for no stages")
	}
}

func TestScheduleRampInterpolates(t *testing.T) {
	s := compileSchedule([]Stage{
		{Type: StageTypeRamp, FromPPS: 0, ToPPS: 100, Duration: 10 * time.Second},
	})
	if s == nil {
		t.Fatal("expected schedule")
	}

	rate, ok := s.rateAt(5 * time.Second)
	if !ok {
		t.Fatal("expected rate at 5s")
	}
	if rate != 50 {
		t.Fatalf("expected 50 pps midway through ramp, got %f", rate)
	}
}

func TestScheduleStepAndHoldSegments(t *testing.T) {
	s := compileSchedule([]Stage{
		{Type: StageTypeStep, Steps: []StageStep{
			{PPS: 10, Duration: time.Second},
			{PPS: 20, Duration: time.Second},
		}},
		{Type: StageTypeHold, PPS: 5, Duration: 2 * time.Second},
	})
	if s == nil {
		t.Fatal("expected schedule")
	}
	if s.totalDuration() != 4*time.Second {
		t.Fatalf("expected 4s total, got %s", s.totalDuration())
	}

	cases := []struct {
		at   time.Duration
		want float64
	}{
		{500 * time.Millisecond, 10},
		{1500 * time.Millisecond, 20},
		{3 * time.Second, 5},
	}
	for _, tc := range cases {
		rate, ok := s.rateAt(tc.at)
		if !ok {
			t.Fatalf("expected rate at %s", tc.at)
		}
		if rate != tc.want {
			t.Fatalf("at %s: expected %f pps, got %f", tc.at, tc.want, rate)
		}
	}
}

func TestScheduleExhausted(t *testing.T) {
	s := compileSchedule([]Stage{
		{Type: StageTypeHold, PPS: 10, Duration: time.Second},
	})
	if _, ok := s.rateAt(2 * time.Second); ok {
		t.Fatal("expected exhausted schedule past its duration")
	}
}

func TestScheduleSkipsZeroDurationStages(t *testing.T) {
	s := compileSchedule([]Stage{
		{Type: StageTypeRamp, FromPPS: 1, ToPPS: 2, Duration: 0},
	})
	if s != nil {
		t.Fatal("expected nil schedule when every stage is skipped")
	}
}
