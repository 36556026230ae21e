package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkonrad/udpgen/internal/config"
	"github.com/pkonrad/udpgen/internal/metrics"
)

func sampleReport() Report {
	return Report{
		RunID: "01JYA7V1B2C3D4E5F6G7H8J9KA",
		Stats: metrics.Stats{
			Sent:           12000,
			Failed:         3,
			Total:          12003,
			BytesSent:      12000 * 512,
			Duration:       time.Minute,
			PacketsPerSec:  200,
			MegabitsPerSec: 0.82,
			MaxSendLatency: 2 * time.Millisecond,
			Errors:         map[string]int{"destination unreachable": 3},
		},
	}
}

func TestPrintReportContainsSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, sampleReport())

	out := buf.String()
	for _, want := range []string{
		"Load Test Results",
		"Total Sent:        12000",
		"Failed:            3",
		"Average Rate:      200.00 pps",
		"destination unreachable: 3",
		"01JYA7V1B2C3D4E5F6G7H8J9KA",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestPrintReportSkipsEmptyLatency(t *testing.T) {
	report := sampleReport()
	report.MaxSendLatency = 0

	var buf bytes.Buffer
	PrintReport(&buf, report)

	if strings.Contains(buf.String(), "Send Latency") {
		t.Fatal("latency section should be omitted when no samples were recorded")
	}
}

func TestPrintJSONReportRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintJSONReport(&buf, sampleReport()); err != nil {
		t.Fatalf("print json: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["run_id"] != "01JYA7V1B2C3D4E5F6G7H8J9KA" {
		t.Fatalf("run_id = %v", decoded["run_id"])
	}
	if decoded["sent"] != float64(12000) {
		t.Fatalf("sent = %v", decoded["sent"])
	}
}

func TestWriteReportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	if err := WriteReportFile(path, sampleReport()); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(data), "\"sent\": 12000") {
		t.Fatalf("unexpected file contents: %s", data)
	}
}

func TestPrintInitSummary(t *testing.T) {
	cfg := &config.Config{
		TargetAddr:  "192.0.2.10",
		TargetPort:  8080,
		Duration:    time.Minute,
		Workers:     4,
		Rate:        1000,
		PayloadSize: 512,
	}

	var buf bytes.Buffer
	PrintInitSummary(&buf, "run-1", cfg)

	out := buf.String()
	for _, want := range []string{"192.0.2.10:8080", "Workers:   4", "1000 pps per worker", "512 bytes"} {
		if !strings.Contains(out, want) {
			t.Errorf("init summary missing %q:\n%s", want, out)
		}
	}
}
