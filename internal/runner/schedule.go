package runner

import (
	"math"
	"time"
)

type StageType string

const (
	StageTypeRamp StageType = "ramp"
	StageTypeStep StageType = "step"
	StageTypeHold StageType = "hold"
)

// Stage describes one segment of a per-worker rate schedule.
type Stage struct {
	Name     string
	Type     StageType
	FromPPS  int
	ToPPS    int
	PPS      int
	Duration time.Duration
	Steps    []StageStep
}

// StageStep is one plateau inside a step stage.
type StageStep struct {
	PPS      int
	Duration time.Duration
}

type schedule struct {
	segments []scheduleSegment
	duration time.Duration
	maxRate  float64
}

type scheduleSegment struct {
	start    time.Duration
	duration time.Duration
	fromRate float64
	toRate   float64
}

func compileSchedule(stages []Stage) *schedule {
	if len(stages) == 0 {
		return nil
	}

	sched := &schedule{}
	var offset time.Duration
	for _, stage := range stages {
		switch stage.Type {
		case StageTypeRamp:
			if stage.Duration <= 0 {
				continue
			}
			seg := scheduleSegment{
				start:    offset,
				duration: stage.Duration,
				fromRate: float64(stage.FromPPS),
				toRate:   float64(stage.ToPPS),
			}
			sched.appendSegment(seg)
			offset += stage.Duration
		case StageTypeStep:
			for _, step := range stage.Steps {
				if step.Duration <= 0 {
					continue
				}
				seg := scheduleSegment{
					start:    offset,
					duration: step.Duration,
					fromRate: float64(step.PPS),
					toRate:   float64(step.PPS),
				}
				sched.appendSegment(seg)
				offset += step.Duration
			}
		case StageTypeHold:
			if stage.Duration <= 0 {
				continue
			}
			seg := scheduleSegment{
				start:    offset,
				duration: stage.Duration,
				fromRate: float64(stage.PPS),
				toRate:   float64(stage.PPS),
			}
			sched.appendSegment(seg)
			offset += stage.Duration
		}
	}

	if len(sched.segments) == 0 {
		return nil
	}
	sched.duration = offset
	return sched
}

func (s *schedule) appendSegment(seg scheduleSegment) {
	s.segments = append(s.segments, seg)
	s.maxRate = math.Max(s.maxRate, math.Max(seg.fromRate, seg.toRate))
}

// rateAt returns the per-worker rate for the given elapsed time, or false
// when the schedule is exhausted.
func (s *schedule) rateAt(elapsed time.Duration) (float64, bool) {
	if s == nil || len(s.segments) == 0 {
		return 0, false
	}
	if elapsed < 0 {
		elapsed = 0
	}
	for _, seg := range s.segments {
		if elapsed < seg.start {
			continue
		}
		end := seg.start + seg.duration
		if elapsed >= end {
			continue
		}
		if seg.duration <= 0 {
			continue
		}
		if seg.fromRate == seg.toRate {
			return seg.fromRate, true
		}
		progress := float64(elapsed-seg.start) / float64(seg.duration)
		if progress < 0 {
			progress = 0
		} else if progress > 1 {
			progress = 1
		}
		return seg.fromRate + (seg.toRate-seg.fromRate)*progress, true
	}
	return 0, false
}

func (s *schedule) totalDuration() time.Duration {
	if s == nil {
		return 0
	}
	return s.duration
}
