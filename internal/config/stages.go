package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type stageDoc struct {
	Stages []stageSpec `yaml:"stages"`
}

type stageSpec struct {
	Name     string     `yaml:"name"`
	Type     string     `yaml:"type"`
	FromPPS  int        `yaml:"from_pps"`
	ToPPS    int        `yaml:"to_pps"`
	PPS      int        `yaml:"pps"`
	Duration string     `yaml:"duration"`
	Steps    []stepSpec `yaml:"steps"`
}

type stepSpec struct {
	PPS      int    `yaml:"pps"`
	Duration string `yaml:"duration"`
}

// LoadStages reads a YAML rate schedule file:
//
//	stages:
//	  - type: ramp
//	    from_pps: 100
//	    to_pps: 1000
//	    duration: 30s
//	  - type: hold
//	    pps: 1000
//	    duration: 1m
func LoadStages(path string) ([]Stage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pattern file: %w", err)
	}

	var doc stageDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("pattern file %s: %w", path, err)
	}
	if len(doc.Stages) == 0 {
		return nil, fmt.Errorf("pattern file %s: no stages defined", path)
	}

	stages := make([]Stage, 0, len(doc.Stages))
	for idx, spec := range doc.Stages {
		stage := Stage{
			Name:    spec.Name,
			Type:    StageType(spec.Type),
			FromPPS: spec.FromPPS,
			ToPPS:   spec.ToPPS,
			PPS:     spec.PPS,
		}
		if spec.Duration != "" {
			duration, err := time.ParseDuration(spec.Duration)
			if err != nil {
				return nil, fmt.Errorf("pattern file %s: stages[%d]: duration: %w", path, idx, err)
			}
			stage.Duration = duration
		}
		for stepIdx, step := range spec.Steps {
			duration, err := time.ParseDuration(step.Duration)
			if err != nil {
				return nil, fmt.Errorf("pattern file %s: stages[%d].steps[%d]: duration: %w", path, idx, stepIdx, err)
			}
			stage.Steps = append(stage.Steps, StageStep{PPS: step.PPS, Duration: duration})
		}
		stages = append(stages, stage)
	}

	return stages, nil
}
