package erlang

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Probe output is line oriented:
//
//	version Erlang/OTP 26 [erts-14.2] ...
//	begin 1718000000123
//	memory 48213040
//	memory.processes 9384720
//	process_count 412
//	end
//	error nodedown
//
// "begin" and "end" frame one sample; the number after "begin" is the
// capture time in Unix milliseconds. Dotted names are children of the
// root metric named before the dot.

// metricInfo describes how a root metric is shown. Children inherit it.
type metricInfo struct {
	unit Unit
	kind Kind
}

var knownMetrics = map[string]metricInfo{
	"memory":           {UnitBytes, Gauge},
	"io":               {UnitBytes, Counter},
	"reductions":       {UnitCount, Counter},
	"gc":               {UnitCount, Counter},
	"context_switches": {UnitCount, Counter},
	"process_count":    {UnitCount, Gauge},
	"port_count":       {UnitCount, Gauge},
	"atom_count":       {UnitCount, Gauge},
	"ets_count":        {UnitCount, Gauge},
	"run_queue":        {UnitCount, Gauge},
	"schedulers":       {UnitCount, Gauge},
}

func infoFor(root string) metricInfo {
	if info, ok := knownMetrics[root]; ok {
		return info
	}
	return metricInfo{UnitCount, Gauge}
}

// ProbeError is a failure the probe reported about itself ("error ..." line).
type ProbeError struct {
	Reason string
}

func (e *ProbeError) Error() string {
	return "probe reported: " + e.Reason
}

// lineKind classifies a parsed probe line.
type lineKind int

const (
	lineNone lineKind = iota
	lineVersion
	lineSample
)

// parser turns probe lines into samples. Not safe for concurrent use.
type parser struct {
	open    bool
	metrics []Metric
	index   map[string]int
	// captured is the capture time of the open or last completed block,
	// zero when the probe didn't send one.
	captured time.Time
}

// feed consumes one line. It returns lineVersion with the banner, or
// lineSample with the completed metrics when an "end" closes a block.
func (p *parser) feed(line string) (lineKind, string, []Metric, error) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return lineNone, "", nil, nil
	}

	keyword, rest, _ := strings.Cut(line, " ")
	switch keyword {
	case "version":
		return lineVersion, strings.TrimSpace(rest), nil, nil
	case "error":
		return lineNone, "", nil, &ProbeError{Reason: strings.TrimSpace(rest)}
	case "begin":
		p.open = true
		p.metrics = nil
		p.index = make(map[string]int)
		p.captured = time.Time{}
		stamp := strings.TrimSpace(rest)
		if stamp == "" {
			return lineNone, "", nil, nil
		}
		ms, err := strconv.ParseInt(stamp, 10, 64)
		if err != nil || ms <= 0 {
			// The block still counts; it just gets the read time.
			return lineNone, "", nil, fmt.Errorf("bad capture time %q", stamp)
		}
		p.captured = time.UnixMilli(ms)
		return lineNone, "", nil, nil
	case "end":
		if !p.open {
			return lineNone, "", nil, fmt.Errorf("'end' without 'begin'")
		}
		p.open = false
		metrics := p.metrics
		p.metrics = nil
		return lineSample, "", metrics, nil
	}

	if !p.open {
		return lineNone, "", nil, fmt.Errorf("metric outside a sample block: %q", line)
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
	if err != nil {
		return lineNone, "", nil, fmt.Errorf("bad value in %q: %w", line, err)
	}
	p.add(keyword, value)
	return lineNone, "", nil, nil
}

// add records name=value, creating the root when a child arrives first.
func (p *parser) add(name string, value float64) {
	root, child, nested := cutPath(name)
	i, ok := p.index[root]
	if !ok {
		info := infoFor(root)
		p.metrics = append(p.metrics, Metric{Name: root, Unit: info.unit, Kind: info.kind})
		i = len(p.metrics) - 1
		p.index[root] = i
	}

	if !nested {
		p.metrics[i].Value = value
		return
	}
	p.metrics[i].Children = append(p.metrics[i].Children, Metric{
		Name:  child,
		Value: value,
		Unit:  p.metrics[i].Unit,
		Kind:  p.metrics[i].Kind,
	})
}

func cutPath(path string) (root, child string, nested bool) {
	return strings.Cut(path, ".")
}
