package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "udpgen <target> <port> <duration> <workers> <rate> <payload-size>",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Load control flags; positional arguments take precedence for the six
	// core parameters.
	flags.String("target", "", "Destination address")
	flags.IntP("port", "p", 0, "Destination UDP port (1-65535)")
	flags.DurationP("duration", "d", 0, "How long to run the test (e.g. 60 or 60s)")
	flags.IntP("workers", "w", 1, "Number of concurrent send workers (1-100)")
	flags.IntP("rate", "r", 0, "Datagrams per second per worker")
	flags.IntP("payload-size", "s", 0, "Payload size in bytes (64-1500)")
	flags.Int("max-total-rate", 0, "Aggregate datagrams per second across all workers (0 means no cap)")
	flags.Duration("send-timeout", time.Second, "Per-send write deadline")
	flags.String("pattern-file", "", "Path to YAML rate schedule overriding the fixed rate")
	flags.StringSlice("threshold", nil, "Performance thresholds (repeatable, e.g. 'send_latency:p99 < 500')")

	// Output flags
	flags.Bool("json-output", false, "Emit JSON formatted output")
	flags.Bool("dashboard", false, "Show live terminal dashboard")
	flags.Bool("log-errors", false, "Log sampled send failures to stderr")
	flags.String("out", "", "Write the final report to the specified file path")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Tracing flags
	flags.String("trace-endpoint", "", "OTLP endpoint for run tracing (disabled when empty)")
	flags.String("trace-protocol", "grpc", "OTLP protocol: 'grpc' or 'http'")
	flags.Float64("trace-sample-rate", 1.0, "Trace sampling ratio between 0.0 and 1.0")
	flags.Bool("trace-insecure", false, "Disable TLS for the OTLP exporter")
	flags.String("trace-service-name", "", "Service name reported on trace spans")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nPositional parameters:\n", cmd.UseLine())
	fmt.Fprintln(out, "  target        Destination address")
	fmt.Fprintln(out, "  port          Destination UDP port (1-65535)")
	fmt.Fprintln(out, "  duration      Test duration in seconds")
	fmt.Fprintln(out, "  workers       Number of concurrent send workers (1-100)")
	fmt.Fprintln(out, "  rate          Datagrams per second per worker")
	fmt.Fprintln(out, "  payload-size  Payload size in bytes (64-1500)")
	fmt.Fprintf(out, "\nExample: udpgen 192.168.1.100 8080 60 4 1000 512\n\nFlags:\n")
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config,
// overriding values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("target") {
		val, err := fs.GetString("target")
		if err != nil {
			return err
		}
		cfg.TargetAddr = val
	}
	if fs.Changed("port") {
		val, err := fs.GetInt("port")
		if err != nil {
			return err
		}
		cfg.TargetPort = val
	}
	if fs.Changed("duration") {
		val, err := fs.GetDuration("duration")
		if err != nil {
			return err
		}
		cfg.Duration = val
	}
	if fs.Changed("workers") {
		val, err := fs.GetInt("workers")
		if err != nil {
			return err
		}
		cfg.Workers = val
	}
	if fs.Changed("rate") {
		val, err := fs.GetInt("rate")
		if err != nil {
			return err
		}
		cfg.Rate = val
	}
	if fs.Changed("payload-size") {
		val, err := fs.GetInt("payload-size")
		if err != nil {
			return err
		}
		cfg.PayloadSize = val
	}
	if fs.Changed("max-total-rate") {
		val, err := fs.GetInt("max-total-rate")
		if err != nil {
			return err
		}
		cfg.MaxTotalRate = val
	}
	if fs.Changed("send-timeout") {
		val, err := fs.GetDuration("send-timeout")
		if err != nil {
			return err
		}
		cfg.SendTimeout = val
	}
	if fs.Changed("pattern-file") {
		val, err := fs.GetString("pattern-file")
		if err != nil {
			return err
		}
		cfg.PatternFile = val
	}
	if fs.Changed("threshold") {
		val, err := fs.GetStringSlice("threshold")
		if err != nil {
			return err
		}
		cfg.Thresholds = val
	}
	if fs.Changed("json-output") {
		val, err := fs.GetBool("json-output")
		if err != nil {
			return err
		}
		cfg.JSONOutput = val
	}
	if fs.Changed("dashboard") {
		val, err := fs.GetBool("dashboard")
		if err != nil {
			return err
		}
		cfg.Dashboard = val
	}
	if fs.Changed("log-errors") {
		val, err := fs.GetBool("log-errors")
		if err != nil {
			return err
		}
		cfg.LogErrors = val
	}
	if fs.Changed("out") {
		val, err := fs.GetString("out")
		if err != nil {
			return err
		}
		cfg.OutFile = val
	}
	if fs.Changed("trace-endpoint") {
		val, err := fs.GetString("trace-endpoint")
		if err != nil {
			return err
		}
		cfg.Tracing.Endpoint = val
	}
	if fs.Changed("trace-protocol") {
		val, err := fs.GetString("trace-protocol")
		if err != nil {
			return err
		}
		cfg.Tracing.Protocol = val
	}
	if fs.Changed("trace-sample-rate") {
		val, err := fs.GetFloat64("trace-sample-rate")
		if err != nil {
			return err
		}
		cfg.Tracing.SampleRate = val
	}
	if fs.Changed("trace-insecure") {
		val, err := fs.GetBool("trace-insecure")
		if err != nil {
			return err
		}
		cfg.Tracing.Insecure = val
	}
	if fs.Changed("trace-service-name") {
		val, err := fs.GetString("trace-service-name")
		if err != nil {
			return err
		}
		cfg.Tracing.ServiceName = val
	}
	return nil
}
