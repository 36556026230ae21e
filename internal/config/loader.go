package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from positional arguments, flags and
// configuration files.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses positional arguments, flags and configuration files to produce
// a Config. Precedence, lowest to highest: config file, positional
// arguments, flags.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	configPath := flagSet.Lookup("config").Value.String()
	if len(args) == 0 && configPath == "" {
		displayHelp(cmd)
		return nil, ErrHelpRequested
	}

	cfg := &Config{
		Workers:     1,
		SendTimeout: time.Second,
		Tracing:     TracingConfig{Protocol: "grpc", SampleRate: 1.0},
		ConfigFile:  configPath,
	}

	if configPath != "" {
		cfgViper := viper.New()
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
		if err := cfgViper.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
	}

	if err := applyPositionalArgs(cfg, flagSet.Args()); err != nil {
		return nil, err
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	cfg.TargetAddr = strings.TrimSpace(cfg.TargetAddr)

	if cfg.PatternFile != "" {
		stages, err := LoadStages(cfg.PatternFile)
		if err != nil {
			return nil, err
		}
		cfg.Stages = stages
	}

	return cfg, nil
}

// applyPositionalArgs maps the six core parameters:
// target port duration workers rate payload-size.
func applyPositionalArgs(cfg *Config, args []string) error {
	if len(args) == 0 {
		return nil
	}
	if len(args) != 6 {
		return fmt.Errorf("expected 6 positional arguments (target port duration workers rate payload-size), got %d", len(args))
	}

	cfg.TargetAddr = strings.TrimSpace(args[0])

	port, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("port %q: %w", args[1], err)
	}
	cfg.TargetPort = port

	duration, err := parseDurationArg(args[2])
	if err != nil {
		return fmt.Errorf("duration %q: %w", args[2], err)
	}
	cfg.Duration = duration

	workers, err := strconv.Atoi(args[3])
	if err != nil {
		return fmt.Errorf("workers %q: %w", args[3], err)
	}
	cfg.Workers = workers

	rate, err := strconv.Atoi(args[4])
	if err != nil {
		return fmt.Errorf("rate %q: %w", args[4], err)
	}
	cfg.Rate = rate

	payload, err := strconv.Atoi(args[5])
	if err != nil {
		return fmt.Errorf("payload size %q: %w", args[5], err)
	}
	cfg.PayloadSize = payload

	return nil
}

// parseDurationArg accepts bare seconds ("60") or a Go duration ("1m30s").
func parseDurationArg(s string) (time.Duration, error) {
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}
