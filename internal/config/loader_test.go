package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestLoadPositionalArgs(t *testing.T) {
	loader := NewLoader()
	cfg, err := loader.Load([]string{"192.168.1.100", "8080", "60", "4", "1000", "512"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.TargetAddr != "192.168.1.100" {
		t.Errorf("target = %q", cfg.TargetAddr)
	}
	if cfg.TargetPort != 8080 {
		t.Errorf("port = %d", cfg.TargetPort)
	}
	if cfg.Duration != 60*time.Second {
		t.Errorf("duration = %s", cfg.Duration)
	}
	if cfg.Workers != 4 {
		t.Errorf("workers = %d", cfg.Workers)
	}
	if cfg.Rate != 1000 {
		t.Errorf("rate = %d", cfg.Rate)
	}
	if cfg.PayloadSize != 512 {
		t.Errorf("payload = %d", cfg.PayloadSize)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestLoadGoDurationAccepted(t *testing.T) {
	cfg, err := NewLoader().Load([]string{"10.0.0.1", "9000", "1m30s", "2", "100", "64"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Duration != 90*time.Second {
		t.Fatalf("duration = %s", cfg.Duration)
	}
}

func TestLoadWrongArgCount(t *testing.T) {
	if _, err := NewLoader().Load([]string{"10.0.0.1", "9000", "60"}); err == nil {
		t.Fatal("expected error for wrong positional arg count")
	}
}

func TestLoadNonNumericPositional(t *testing.T) {
	if _, err := NewLoader().Load([]string{"10.0.0.1", "port", "60", "4", "100", "64"}); err == nil {
		t.Fatal("expected error for non-numeric port")
	}
}

func TestLoadNoArgsShowsHelp(t *testing.T) {
	_, err := NewLoader().Load(nil)
	if !errors.Is(err, ErrHelpRequested) {
		t.Fatalf("expected ErrHelpRequested, got %v", err)
	}
}

func TestLoadHelpFlag(t *testing.T) {
	_, err := NewLoader().Load([]string{"--help"})
	if !errors.Is(err, ErrHelpRequested) {
		t.Fatalf("expected ErrHelpRequested, got %v", err)
	}
}

func TestLoadFlagsOverridePositionals(t *testing.T) {
	cfg, err := NewLoader().Load([]string{
		"10.0.0.1", "9000", "60", "4", "100", "64",
		"--rate", "250",
		"--max-total-rate", "500",
		"--json-output",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Rate != 250 {
		t.Fatalf("flag should override positional rate, got %d", cfg.Rate)
	}
	if cfg.MaxTotalRate != 500 {
		t.Fatalf("max total rate = %d", cfg.MaxTotalRate)
	}
	if !cfg.JSONOutput {
		t.Fatal("expected json output enabled")
	}
}

func TestLoadThresholdFlags(t *testing.T) {
	cfg, err := NewLoader().Load([]string{
		"10.0.0.1", "9000", "60", "4", "100", "64",
		"--threshold", "send_latency:p99 < 500",
		"--threshold", "send_failed:rate < 0.01",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Thresholds) != 2 {
		t.Fatalf("thresholds = %v, want 2 entries", cfg.Thresholds)
	}
	if cfg.Thresholds[0] != "send_latency:p99 < 500" {
		t.Errorf("thresholds[0] = %q", cfg.Thresholds[0])
	}
}

func TestLoadConfigFile(t *testing.T) {
	doc := map[string]interface{}{
		"target":       "198.51.100.7",
		"port":         5001,
		"duration":     "30s",
		"workers":      8,
		"rate":         200,
		"payload_size": 256,
		"tracing": map[string]interface{}{
			"endpoint": "localhost:4317",
			"insecure": true,
		},
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := NewLoader().Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.TargetAddr != "198.51.100.7" || cfg.TargetPort != 5001 {
		t.Fatalf("unexpected target %s:%d", cfg.TargetAddr, cfg.TargetPort)
	}
	if cfg.Duration != 30*time.Second {
		t.Fatalf("duration = %s", cfg.Duration)
	}
	if cfg.Workers != 8 || cfg.Rate != 200 || cfg.PayloadSize != 256 {
		t.Fatalf("unexpected load params: %+v", cfg)
	}
	if !cfg.Tracing.Enabled() || !cfg.Tracing.Insecure {
		t.Fatalf("unexpected tracing config: %+v", cfg.Tracing)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestLoadPatternFile(t *testing.T) {
	doc := stageDoc{Stages: []stageSpec{
		{Type: "ramp", FromPPS: 100, ToPPS: 1000, Duration: "30s"},
		{Type: "step", Steps: []stepSpec{
			{PPS: 500, Duration: "10s"},
			{PPS: 800, Duration: "10s"},
		}},
		{Type: "hold", PPS: 1000, Duration: "1m"},
	}}
	data, err := yaml.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	path := filepath.Join(t.TempDir(), "pattern.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := NewLoader().Load([]string{
		"10.0.0.1", "9000", "120", "4", "100", "64",
		"--pattern-file", path,
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(cfg.Stages) != 3 {
		t.Fatalf("expected 3 stages, got %d", len(cfg.Stages))
	}
	if cfg.Stages[0].Type != StageTypeRamp || cfg.Stages[0].Duration != 30*time.Second {
		t.Fatalf("unexpected ramp stage: %+v", cfg.Stages[0])
	}
	if len(cfg.Stages[1].Steps) != 2 || cfg.Stages[1].Steps[1].PPS != 800 {
		t.Fatalf("unexpected step stage: %+v", cfg.Stages[1])
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestLoadStagesErrors(t *testing.T) {
	if _, err := LoadStages(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("stages:\n  - type: hold\n    duration: nonsense\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadStages(path); err == nil {
		t.Fatal("expected error for bad duration")
	}

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(empty, []byte("stages: []\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadStages(empty); err == nil {
		t.Fatal("expected error for empty stage list")
	}
}
