package config

import (
	"fmt"
	"strings"
	"time"
)

// Limits on a single run. Worker and payload bounds match what a single
// host can drive without the test measuring itself.
const (
	MinWorkers     = 1
	MaxWorkers     = 100
	MinPayloadSize = 64
	MaxPayloadSize = 1500
)

type Config struct {
	TargetAddr   string        `mapstructure:"target"`
	TargetPort   int           `mapstructure:"port"`
	Duration     time.Duration `mapstructure:"duration"`
	Workers      int           `mapstructure:"workers"`
	Rate         int           `mapstructure:"rate"` // datagrams per second per worker
	PayloadSize  int           `mapstructure:"payload_size"`
	MaxTotalRate int           `mapstructure:"max_total_rate"`
	SendTimeout  time.Duration `mapstructure:"send_timeout"`
	JSONOutput   bool          `mapstructure:"json_output"`
	Dashboard    bool          `mapstructure:"dashboard"`
	LogErrors    bool          `mapstructure:"log_errors"`
	OutFile      string        `mapstructure:"out"`
	PatternFile  string        `mapstructure:"pattern_file"`
	Thresholds   []string      `mapstructure:"thresholds"`
	Stages       []Stage       `mapstructure:"stages"`
	Tracing      TracingConfig `mapstructure:"tracing"`
	ConfigFile   string        `mapstructure:"-"`
}

type StageType string

const (
	StageTypeRamp StageType = "ramp"
	StageTypeStep StageType = "step"
	StageTypeHold StageType = "hold"
)

// Stage is one segment of a per-worker rate schedule.
type Stage struct {
	Name     string        `mapstructure:"name"`
	Type     StageType     `mapstructure:"type"`
	FromPPS  int           `mapstructure:"from_pps"`
	ToPPS    int           `mapstructure:"to_pps"`
	PPS      int           `mapstructure:"pps"`
	Duration time.Duration `mapstructure:"duration"`
	Steps    []StageStep   `mapstructure:"steps"`
}

type StageStep struct {
	PPS      int           `mapstructure:"pps"`
	Duration time.Duration `mapstructure:"duration"`
}

type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" or "http"
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Insecure    bool    `mapstructure:"insecure"`
}

// Enabled reports whether an OTLP endpoint is configured.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != ""
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string

	if strings.TrimSpace(c.TargetAddr) == "" {
		issues = append(issues, "target address is required")
	}
	if c.TargetPort < 1 || c.TargetPort > 65535 {
		issues = append(issues, "port must be between 1 and 65535")
	}
	if c.Duration <= 0 {
		issues = append(issues, "duration must be > 0")
	}
	if c.Workers < MinWorkers || c.Workers > MaxWorkers {
		issues = append(issues, fmt.Sprintf("workers must be between %d and %d", MinWorkers, MaxWorkers))
	}
	if c.Rate < 1 {
		issues = append(issues, "rate must be >= 1")
	}
	if c.PayloadSize < MinPayloadSize || c.PayloadSize > MaxPayloadSize {
		issues = append(issues, fmt.Sprintf("payload size must be between %d and %d bytes", MinPayloadSize, MaxPayloadSize))
	}
	if c.MaxTotalRate < 0 {
		issues = append(issues, "max total rate must be >= 0")
	}
	if c.SendTimeout < 0 {
		issues = append(issues, "send timeout must be >= 0")
	}
	if c.Dashboard && c.JSONOutput {
		issues = append(issues, "dashboard and json-output are mutually exclusive")
	}

	issues = append(issues, validateStages(c.Stages)...)
	issues = append(issues, validateTracing(c.Tracing)...)

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

func validateStages(stages []Stage) []string {
	var issues []string
	for idx, stage := range stages {
		typeLabel := strings.TrimSpace(string(stage.Type))
		if typeLabel == "" {
			issues = append(issues, fmt.Sprintf("stages[%d]: type is required", idx))
			continue
		}
		switch StageType(strings.ToLower(typeLabel)) {
		case StageTypeRamp:
			if stage.Duration <= 0 {
				issues = append(issues, fmt.Sprintf("stages[%d]: duration must be > 0 for ramp", idx))
			}
			if stage.FromPPS < 1 || stage.ToPPS < 1 {
				issues = append(issues, fmt.Sprintf("stages[%d]: from_pps and to_pps must be >= 1", idx))
			}
		case StageTypeStep:
			if len(stage.Steps) == 0 {
				issues = append(issues, fmt.Sprintf("stages[%d]: steps are required for step stage", idx))
			}
			for stepIdx, step := range stage.Steps {
				if step.PPS < 1 {
					issues = append(issues, fmt.Sprintf("stages[%d].steps[%d]: pps must be >= 1", idx, stepIdx))
				}
				if step.Duration <= 0 {
					issues = append(issues, fmt.Sprintf("stages[%d].steps[%d]: duration must be > 0", idx, stepIdx))
				}
			}
		case StageTypeHold:
			if stage.PPS < 1 {
				issues = append(issues, fmt.Sprintf("stages[%d]: pps must be >= 1 for hold", idx))
			}
			if stage.Duration <= 0 {
				issues = append(issues, fmt.Sprintf("stages[%d]: duration must be > 0 for hold", idx))
			}
		default:
			issues = append(issues, fmt.Sprintf("stages[%d]: unsupported type %q", idx, stage.Type))
		}
	}
	return issues
}

func validateTracing(t TracingConfig) []string {
	var issues []string
	if !t.Enabled() {
		return nil
	}
	if t.SampleRate < 0 || t.SampleRate > 1.0 {
		issues = append(issues, "tracing: sample_rate must be between 0.0 and 1.0")
	}
	switch strings.ToLower(strings.TrimSpace(t.Protocol)) {
	case "", "grpc", "http":
	default:
		issues = append(issues, fmt.Sprintf("tracing: unsupported protocol %q", t.Protocol))
	}
	return issues
}
