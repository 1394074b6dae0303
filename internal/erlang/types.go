package erlang

import (
	"sync"
	"time"
)

// Unit describes how a metric value is displayed.
type Unit int

const (
	UnitCount Unit = iota
	UnitBytes
)

// Kind distinguishes point-in-time values from monotonically growing totals.
type Kind int

const (
	// Gauge values are meaningful on their own (memory, process count).
	Gauge Kind = iota
	// Counter values only grow; the dashboard shows their rate.
	Counter
)

// Metric is one named value reported by the node. Root metrics may carry a
// breakdown in Children (memory -> processes, ets, binary, ...).
type Metric struct {
	Name     string
	Value    float64
	Unit     Unit
	Kind     Kind
	Children []Metric
}

// Sample is one timestamped snapshot from the node.
type Sample struct {
	Timestamp time.Time
	Metrics   []Metric
}

// RootCount returns the number of top-level metrics.
func (s Sample) RootCount() int {
	return len(s.Metrics)
}

// Root returns the i-th top-level metric.
func (s Sample) Root(i int) (Metric, bool) {
	if i < 0 || i >= len(s.Metrics) {
		return Metric{}, false
	}
	return s.Metrics[i], true
}

// Lookup finds a metric by path: "memory" or "memory.ets".
func (s Sample) Lookup(path string) (Metric, bool) {
	root, child, nested := cutPath(path)
	for _, m := range s.Metrics {
		if m.Name != root {
			continue
		}
		if !nested {
			return m, true
		}
		for _, c := range m.Children {
			if c.Name == child {
				return c, true
			}
		}
		return Metric{}, false
	}
	return Metric{}, false
}

// SystemVersion holds the node's system_version banner. The poller sets it
// when the probe reports it; the dashboard header reads it on every redraw.
type SystemVersion struct {
	mu      sync.RWMutex
	version string
}

// NewSystemVersion creates a SystemVersion with a placeholder value.
func NewSystemVersion(initial string) *SystemVersion {
	return &SystemVersion{version: initial}
}

// Get returns the current banner.
func (v *SystemVersion) Get() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.version
}

// Set replaces the banner.
func (v *SystemVersion) Set(version string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.version = version
}
