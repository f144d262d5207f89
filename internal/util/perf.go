package util

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// PerfEnabled turns on hop timing collection (-perf)
var PerfEnabled bool

// HopMetric aggregates the fetch timings of one stage
type HopMetric struct {
	Name  string
	Count int64
	Total time.Duration
	Last  time.Duration
}

// Avg returns the mean duration
func (m HopMetric) Avg() time.Duration {
	if m.Count == 0 {
		return 0
	}
	return m.Total / time.Duration(m.Count)
}

// PerfTracker collects timings across sessions
type PerfTracker struct {
	mu      sync.Mutex
	metrics map[string]*HopMetric
	started time.Time
}

var (
	globalPerf     *PerfTracker
	globalPerfOnce sync.Once
)

// GetPerfTracker returns the process wide tracker
func GetPerfTracker() *PerfTracker {
	globalPerfOnce.Do(func() {
		globalPerf = NewPerfTracker()
	})
	return globalPerf
}

// NewPerfTracker returns an empty tracker
func NewPerfTracker() *PerfTracker {
	return &PerfTracker{metrics: make(map[string]*HopMetric), started: time.Now()}
}

// Timer is an active measurement; a nil Timer is valid and records nothing
type Timer struct {
	name    string
	start   time.Time
	tracker *PerfTracker
}

// StartTimer starts measuring name when profiling is enabled
func StartTimer(name string) *Timer {
	if !PerfEnabled {
		return nil
	}
	return GetPerfTracker().Start(name)
}

// Start starts measuring name on this tracker
func (pt *PerfTracker) Start(name string) *Timer {
	return &Timer{name: name, start: time.Now(), tracker: pt}
}

// Stop records the elapsed time
func (t *Timer) Stop() time.Duration {
	if t == nil {
		return 0
	}
	d := time.Since(t.start)
	t.tracker.Record(t.name, d)
	Debugf("[PERF] %s took %v", t.name, d)
	return d
}

// Record adds one measurement
func (pt *PerfTracker) Record(name string, d time.Duration) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	m, ok := pt.metrics[name]
	if !ok {
		m = &HopMetric{Name: name}
		pt.metrics[name] = m
	}
	m.Count++
	m.Total += d
	m.Last = d
}

// Metrics returns copies of all metrics, slowest total first
func (pt *PerfTracker) Metrics() []HopMetric {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	out := make([]HopMetric, 0, len(pt.metrics))
	for _, m := range pt.metrics {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total == out[j].Total {
			return out[i].Name < out[j].Name
		}
		return out[i].Total > out[j].Total
	})
	return out
}

var (
	perfTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	perfNameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#95E1D3"))
	perfSlowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	perfFastStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7BED9F"))
)

// Report renders the timings table
func (pt *PerfTracker) Report() string {
	var b strings.Builder
	b.WriteString(perfTitleStyle.Render("Hop timings"))
	b.WriteString(fmt.Sprintf(" (uptime %s)\n", time.Since(pt.started).Round(time.Millisecond)))

	for _, m := range pt.Metrics() {
		avg := m.Avg().Round(time.Millisecond).String()
		switch {
		case m.Avg() > 5*time.Second:
			avg = perfSlowStyle.Render(avg)
		case m.Avg() < 500*time.Millisecond:
			avg = perfFastStyle.Render(avg)
		}
		b.WriteString(fmt.Sprintf("  %-20s %4d x  avg %s\n", perfNameStyle.Render(m.Name), m.Count, avg))
	}
	return b.String()
}

// PrintReport prints the timings table when profiling is enabled
func PrintReport() {
	if !PerfEnabled {
		return
	}
	fmt.Print(GetPerfTracker().Report())
}
