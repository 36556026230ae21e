package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/gofrs/flock"

	"github.com/pkonrad/udpgen/internal/config"
	"github.com/pkonrad/udpgen/internal/metrics"
)

// Report couples a run identifier with its final statistics.
type Report struct {
	RunID string `json:"run_id"`
	metrics.Stats
}

// PrintInitSummary outputs the initialization block before workers start.
func PrintInitSummary(w io.Writer, runID string, cfg *config.Config) {
	fmt.Fprintln(w, "Initializing UDP load test...")
	fmt.Fprintf(w, "Run ID:    %s\n", runID)
	fmt.Fprintf(w, "Target:    %s:%d\n", cfg.TargetAddr, cfg.TargetPort)
	fmt.Fprintf(w, "Duration:  %s\n", cfg.Duration)
	fmt.Fprintf(w, "Workers:   %d\n", cfg.Workers)
	if len(cfg.Stages) > 0 {
		fmt.Fprintf(w, "Rate:      staged (%s)\n", cfg.PatternFile)
	} else {
		fmt.Fprintf(w, "Rate:      %d pps per worker\n", cfg.Rate)
	}
	fmt.Fprintf(w, "Payload:   %d bytes\n", cfg.PayloadSize)
	fmt.Fprintln(w)
}

// PrintReport outputs a human-readable summary report.
func PrintReport(w io.Writer, report Report) {
	stats := report.Stats
	fmt.Fprintln(w, "\n--- Load Test Results ---")
	fmt.Fprintf(w, "Run ID:            %s\n", report.RunID)
	fmt.Fprintf(w, "Total Sent:        %d\n", stats.Sent)
	fmt.Fprintf(w, "Failed:            %d\n", stats.Failed)
	fmt.Fprintf(w, "Duration:          %s\n", stats.Duration)
	fmt.Fprintf(w, "Average Rate:      %.2f pps\n", stats.PacketsPerSec)
	fmt.Fprintf(w, "Throughput:        %.2f Mbit/s\n", stats.MegabitsPerSec)

	if stats.MaxSendLatency > 0 {
		fmt.Fprintln(w, "\nSend Latency:")
		fmt.Fprintf(w, "  Min:             %s\n", stats.MinSendLatency)
		fmt.Fprintf(w, "  Max:             %s\n", stats.MaxSendLatency)
		fmt.Fprintf(w, "  Mean:            %s\n", stats.MeanSendLatency)
		fmt.Fprintf(w, "  P50:             %s\n", stats.P50SendLatency)
		fmt.Fprintf(w, "  P90:             %s\n", stats.P90SendLatency)
		fmt.Fprintf(w, "  P99:             %s\n", stats.P99SendLatency)
	}

	if len(stats.Errors) > 0 {
		fmt.Fprintln(w, "\nErrors:")
		classes := make([]string, 0, len(stats.Errors))
		for class := range stats.Errors {
			classes = append(classes, class)
		}
		sort.Slice(classes, func(i, j int) bool {
			if stats.Errors[classes[i]] == stats.Errors[classes[j]] {
				return classes[i] < classes[j]
			}
			return stats.Errors[classes[i]] > stats.Errors[classes[j]]
		})
		for _, class := range classes {
			fmt.Fprintf(w, "  %s: %d\n", class, stats.Errors[class])
		}
	}
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// WriteReportFile writes the JSON report to path under an advisory lock, so
// concurrent runs pointed at the same file cannot interleave writes.
func WriteReportFile(path string, report Report) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock report file: %w", err)
	}
	defer lock.Unlock()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	if err := PrintJSONReport(f, report); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}
	return nil
}
