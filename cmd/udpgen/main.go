package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/pkonrad/udpgen/internal/config"
	"github.com/pkonrad/udpgen/internal/dashboard"
	"github.com/pkonrad/udpgen/internal/metrics"
	"github.com/pkonrad/udpgen/internal/output"
	"github.com/pkonrad/udpgen/internal/runner"
	"github.com/pkonrad/udpgen/internal/sender"
	"github.com/pkonrad/udpgen/internal/threshold"
	"github.com/pkonrad/udpgen/internal/tracing"
)

const progressInterval = time.Second

type stderrFailureLogger struct {
	mu sync.Mutex
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	thresholds, err := threshold.ParseMultiple(cfg.Thresholds)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = provider.Shutdown(shutdownCtx)
	}()

	collector := metrics.NewCollector()
	runID := ulid.Make().String()

	factory := sender.UDP(cfg.TargetAddr, cfg.TargetPort, cfg.SendTimeout)
	if cfg.LogErrors {
		factory = sender.WithLogging(factory, &stderrFailureLogger{})
	}

	opts := runner.Options{
		Workers:       cfg.Workers,
		Duration:      cfg.Duration,
		RatePerWorker: cfg.Rate,
		PayloadSize:   cfg.PayloadSize,
		MaxTotalRate:  cfg.MaxTotalRate,
		Sender:        factory,
		Collector:     collector,
		Stages:        toRunnerStages(cfg.Stages),
	}
	if provider.Enabled() {
		opts.Tracer = provider.Tracer()
	}

	r := runner.New(opts)

	// Shared stop token: the reporter fires it when the duration elapses, the
	// dashboard fires it on quit, and the signal context above covers Ctrl-C.
	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	var dash *dashboard.Dashboard
	if cfg.Dashboard {
		dash, err = dashboard.New(collector, dashboard.Config{
			Target:       fmt.Sprintf("%s:%d", cfg.TargetAddr, cfg.TargetPort),
			Workers:      cfg.Workers,
			Duration:     cfg.Duration,
			Rate:         float64(cfg.Rate),
			PayloadSize:  cfg.PayloadSize,
			MaxTotalRate: float64(cfg.MaxTotalRate),
			PatternFile:  cfg.PatternFile,
			ConfigFile:   cfg.ConfigFile,
		}, stop)
		if err != nil {
			return err
		}
		dash.Start()
	}

	var progress *output.ProgressReporter
	if !cfg.JSONOutput && !cfg.Dashboard {
		output.PrintInitSummary(os.Stdout, runID, cfg)
		progress = output.NewProgressReporter(collector, progressInterval, cfg.Duration, os.Stdout, stop)
		progress.Start()
	}

	runCtx, span := tracing.StartRun(runCtx, provider.Tracer(), runID, cfg.Workers, float64(cfg.Rate))

	// Mark the actual start time in the collector so reporters use the
	// correct elapsed time since sending actually began.
	collector.Start()
	result := r.Run(runCtx)

	tracing.EndSpan(span, nil,
		attribute.Int64("udpgen.total_sent", result.Sent),
		attribute.Int64("udpgen.total_failed", result.Failed),
		attribute.Int("udpgen.failed_workers", result.FailedWorkers),
	)

	if progress != nil {
		progress.Stop()
		fmt.Fprintln(os.Stdout)
	}
	if dash != nil {
		dash.Stop()
	}

	stats := collector.Stats(result.Duration)
	report := output.Report{RunID: runID, Stats: stats}

	if cfg.JSONOutput {
		if err := output.PrintJSONReport(os.Stdout, report); err != nil {
			return err
		}
	} else {
		output.PrintReport(os.Stdout, report)
	}

	if cfg.OutFile != "" {
		if err := output.WriteReportFile(cfg.OutFile, report); err != nil {
			return err
		}
	}

	// Send failures and per-worker acquisition failures are part of the
	// measurement, not a tool error; only surface them.
	if result.FailedWorkers > 0 && !cfg.JSONOutput {
		fmt.Fprintf(os.Stderr, "Warning: %d of %d workers could not open a send channel\n", result.FailedWorkers, cfg.Workers)
	}

	return evaluateThresholds(thresholds, stats, cfg.JSONOutput)
}

// evaluateThresholds checks the final stats against the configured
// assertions. A breached threshold makes the whole run fail.
func evaluateThresholds(thresholds []threshold.Threshold, stats metrics.Stats, jsonOutput bool) error {
	if len(thresholds) == 0 {
		return nil
	}

	out := os.Stdout
	if jsonOutput {
		out = os.Stderr
	}

	results := threshold.NewEvaluator(thresholds).Evaluate(stats)
	failed := 0
	fmt.Fprintln(out, "\nThresholds:")
	for _, res := range results {
		fmt.Fprintf(out, "  %s\n", res.Message)
		if !res.Pass {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d thresholds failed", failed, len(results))
	}
	return nil
}

func toRunnerStages(stages []config.Stage) []runner.Stage {
	if len(stages) == 0 {
		return nil
	}
	result := make([]runner.Stage, len(stages))
	for i, s := range stages {
		result[i] = runner.Stage{
			Name:     s.Name,
			Type:     runner.StageType(s.Type),
			FromPPS:  s.FromPPS,
			ToPPS:    s.ToPPS,
			PPS:      s.PPS,
			Duration: s.Duration,
			Steps:    toRunnerSteps(s.Steps),
		}
	}
	return result
}

func toRunnerSteps(steps []config.StageStep) []runner.StageStep {
	if len(steps) == 0 {
		return nil
	}
	result := make([]runner.StageStep, len(steps))
	for i, s := range steps {
		result[i] = runner.StageStep{
			PPS:      s.PPS,
			Duration: s.Duration,
		}
	}
	return result
}

func (l *stderrFailureLogger) LogFailure(err error) {
	if err == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(os.Stderr, "[udpgen] send failed: %v\n", err)
}
