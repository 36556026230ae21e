// Package dashboard renders a live terminal UI for a running traffic
// generator using termui.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/pkonrad/udpgen/internal/metrics"
)

// Config holds run parameters for display in the summary panel.
type Config struct {
	Target       string        // Destination address:port
	Workers      int           // Number of sender goroutines
	Duration     time.Duration // Run duration
	Rate         float64       // Packets per second per worker
	PayloadSize  int           // Datagram payload bytes
	MaxTotalRate float64       // Aggregate cap in packets per second (0 = none)
	PatternFile  string        // Path to rate pattern file if used
	ConfigFile   string        // Path to config file if used
}

// Dashboard renders live send metrics in the terminal.
type Dashboard struct {
	collector    *metrics.Collector
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownFunc func()
	wg           sync.WaitGroup
	mu           sync.Mutex

	// Widgets
	grid          *ui.Grid
	rateSparkle   *widgets.SparklineGroup
	latencyPara   *widgets.Paragraph
	progressGauge *widgets.Gauge
	errorList     *widgets.List
	summaryPara   *widgets.Paragraph
	metricsPara   *widgets.Paragraph
	rateHistory   []float64
	lastSnapshot  metrics.Snapshot
	lastUpdate    time.Time
	startTime     time.Time
	cfg           Config
}

// New creates a new Dashboard.
func New(collector *metrics.Collector, cfg Config, shutdownFunc func()) (*Dashboard, error) {
	if err := ui.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize termui: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &Dashboard{
		collector:    collector,
		ctx:          ctx,
		cancel:       cancel,
		shutdownFunc: shutdownFunc,
		rateHistory:  make([]float64, 0, 100),
		startTime:    time.Now(),
		lastUpdate:   time.Now(),
		cfg:          cfg,
	}

	d.initWidgets()
	d.setupGrid()

	return d, nil
}

// initWidgets initializes all dashboard widgets.
func (d *Dashboard) initWidgets() {
	// Send Rate Sparkline
	sparkline := widgets.NewSparkline()
	sparkline.Title = "Packets/s"
	sparkline.LineColor = ui.ColorGreen
	sparkline.Data = []float64{0}

	d.rateSparkle = widgets.NewSparklineGroup(sparkline)
	d.rateSparkle.Title = "Send Rate"
	d.rateSparkle.BorderStyle.Fg = ui.ColorCyan

	// Send Latency Paragraph
	d.latencyPara = widgets.NewParagraph()
	d.latencyPara.Title = "Send Latency"
	d.latencyPara.Text = "Min: 0µs\nMean: 0µs\nP50: 0µs\nP90: 0µs\nP99: 0µs"
	d.latencyPara.BorderStyle.Fg = ui.ColorCyan

	// Progress Gauge
	d.progressGauge = widgets.NewGauge()
	d.progressGauge.Title = "Progress"
	d.progressGauge.Percent = 0
	d.progressGauge.BarColor = ui.ColorBlue
	d.progressGauge.BorderStyle.Fg = ui.ColorCyan
	d.progressGauge.LabelStyle = ui.NewStyle(ui.ColorWhite)

	// Error Breakdown List
	d.errorList = widgets.NewList()
	d.errorList.Title = "Send Errors"
	d.errorList.Rows = []string{"No failures"}
	d.errorList.TextStyle = ui.NewStyle(ui.ColorYellow)
	d.errorList.BorderStyle.Fg = ui.ColorCyan

	// Summary Paragraph
	d.summaryPara = widgets.NewParagraph()
	d.summaryPara.Title = "Run Summary"
	d.summaryPara.Text = "Initializing..."
	d.summaryPara.BorderStyle.Fg = ui.ColorCyan

	// Metrics Paragraph (plain text summary)
	d.metricsPara = widgets.NewParagraph()
	d.metricsPara.Title = "Metrics"
	d.metricsPara.Text = "Waiting for data..."
	d.metricsPara.BorderStyle.Fg = ui.ColorCyan
}

// setupGrid configures the layout grid.
func (d *Dashboard) setupGrid() {
	termWidth, termHeight := ui.TerminalDimensions()

	d.grid = ui.NewGrid()
	d.grid.SetRect(0, 0, termWidth, termHeight)

	d.grid.Set(
		ui.NewRow(0.18,
			ui.NewCol(1.0, d.summaryPara),
		),
		ui.NewRow(0.18,
			ui.NewCol(1.0, d.progressGauge),
		),
		ui.NewRow(0.32,
			ui.NewCol(0.65, d.rateSparkle),
			ui.NewCol(0.35, d.latencyPara),
		),
		ui.NewRow(0.32,
			ui.NewCol(0.5, d.metricsPara),
			ui.NewCol(0.5, d.errorList),
		),
	)
}

// Start begins the dashboard update loop.
func (d *Dashboard) Start() {
	d.wg.Add(1)
	go d.run()
}

// Stop stops the dashboard and cleans up.
func (d *Dashboard) Stop() {
	d.cancel()
	d.wg.Wait()
	ui.Close()
	// Give terminal time to restore
	time.Sleep(100 * time.Millisecond)
}

// run is the main dashboard update loop.
func (d *Dashboard) run() {
	defer d.wg.Done()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	uiEvents := ui.PollEvents()

	d.render()

	for {
		select {
		case <-d.ctx.Done():
			// Drain any remaining events
			for len(uiEvents) > 0 {
				<-uiEvents
			}
			return
		case e := <-uiEvents:
			// Check if context is done to avoid blocking
			select {
			case <-d.ctx.Done():
				return
			default:
			}

			switch e.ID {
			case "q", "<C-c>":
				if d.shutdownFunc != nil {
					d.shutdownFunc()
				}
				// Do not return here; wait for Stop() to cancel context
			case "<Resize>":
				payload := e.Payload.(ui.Resize)
				d.grid.SetRect(0, 0, payload.Width, payload.Height)
				ui.Clear()
				d.render()
			}
		case <-ticker.C:
			d.update()
			d.render()
		}
	}
}

// update refreshes all widget data from the collector.
func (d *Dashboard) update() {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(d.startTime)
	stats := d.collector.Stats(elapsed)

	snap := d.collector.Snapshot()
	currentRate := deltaRate(d.lastSnapshot, snap, now.Sub(d.lastUpdate))
	d.lastSnapshot = snap
	d.lastUpdate = now

	d.rateHistory = append(d.rateHistory, currentRate)
	if len(d.rateHistory) > 100 {
		d.rateHistory = d.rateHistory[1:]
	}
	d.rateSparkle.Sparklines[0].Data = d.rateHistory
	d.rateSparkle.Title = fmt.Sprintf(
		"Send Rate | Current: %.0f pps | Avg: %.0f pps",
		currentRate,
		stats.PacketsPerSec,
	)

	d.progressGauge.Percent = progressPercent(elapsed, d.cfg.Duration)
	d.progressGauge.Label = fmt.Sprintf("%s / %s",
		elapsed.Round(time.Second),
		d.cfg.Duration.Round(time.Second),
	)

	d.summaryPara.Text = fmt.Sprintf(
		"Target: %s\n%s\nElapsed: %s | Sent: %d | Failed: %d",
		d.cfg.Target,
		d.formatRunParams(),
		elapsed.Round(time.Second),
		stats.Sent,
		stats.Failed,
	)

	d.metricsPara.Text = fmt.Sprintf(
		"Packets Sent:      %d\nPackets Failed:    %d\nBytes Sent:        %d\nCurrent Rate:      %.1f pps\nAverage Rate:      %.1f pps\nThroughput:        %.2f Mbit/s",
		stats.Sent,
		stats.Failed,
		stats.BytesSent,
		currentRate,
		stats.PacketsPerSec,
		stats.MegabitsPerSec,
	)

	d.latencyPara.Text = fmt.Sprintf(
		"Min:  %.0fµs\nMean: %.0fµs\nP50:  %.0fµs\nP90:  %.0fµs\nP99:  %.0fµs",
		stats.MinSendLatencyUs,
		stats.MeanSendLatencyUs,
		stats.P50SendLatencyUs,
		stats.P90SendLatencyUs,
		stats.P99SendLatencyUs,
	)

	d.errorList.Rows = formatErrorRows(d.collector.ErrorBreakdown())
}

// render draws all widgets to the screen.
func (d *Dashboard) render() {
	d.mu.Lock()
	defer d.mu.Unlock()

	ui.Render(d.grid)
}

// deltaRate computes the instantaneous send rate between two snapshots.
func deltaRate(prev, cur metrics.Snapshot, window time.Duration) float64 {
	if window <= 0 {
		return 0
	}
	return float64(cur.Sent-prev.Sent) / window.Seconds()
}

// progressPercent maps elapsed time onto a 0-100 gauge value.
func progressPercent(elapsed, duration time.Duration) int {
	if duration <= 0 {
		return 0
	}
	pct := int(float64(elapsed) / float64(duration) * 100)
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	return pct
}

// formatErrorRows renders the error breakdown sorted by count descending.
func formatErrorRows(errs map[string]int) []string {
	if len(errs) == 0 {
		return []string{"[No failures](fg:green)"}
	}
	type errorRow struct {
		kind  string
		count int
	}
	rows := make([]errorRow, 0, len(errs))
	for kind, count := range errs {
		rows = append(rows, errorRow{kind: kind, count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count == rows[j].count {
			return rows[i].kind < rows[j].kind
		}
		return rows[i].count > rows[j].count
	})
	maxRows := len(rows)
	if maxRows > 10 {
		maxRows = 10
	}
	formatted := make([]string, 0, maxRows)
	for i := 0; i < maxRows; i++ {
		formatted = append(formatted, fmt.Sprintf("[%s](fg:red) %d", rows[i].kind, rows[i].count))
	}
	return formatted
}

// formatRunParams formats the run configuration parameters for display.
func (d *Dashboard) formatRunParams() string {
	var parts []string

	if d.cfg.Workers > 0 {
		parts = append(parts, fmt.Sprintf("Workers: %d", d.cfg.Workers))
	}
	if d.cfg.Rate > 0 {
		parts = append(parts, fmt.Sprintf("Rate: %.0f pps/worker", d.cfg.Rate))
	}
	if d.cfg.MaxTotalRate > 0 {
		parts = append(parts, fmt.Sprintf("Cap: %.0f pps", d.cfg.MaxTotalRate))
	}
	if d.cfg.PayloadSize > 0 {
		parts = append(parts, fmt.Sprintf("Payload: %dB", d.cfg.PayloadSize))
	}
	if d.cfg.Duration > 0 {
		parts = append(parts, fmt.Sprintf("Duration: %s", d.cfg.Duration))
	}
	if d.cfg.PatternFile != "" {
		parts = append(parts, fmt.Sprintf("Pattern: %s", d.cfg.PatternFile))
	}
	if d.cfg.ConfigFile != "" {
		parts = append(parts, fmt.Sprintf("Config: %s", d.cfg.ConfigFile))
	}

	if len(parts) == 0 {
		return ""
	}

	return strings.Join(parts, " | ")
}
