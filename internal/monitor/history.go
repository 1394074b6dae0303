package monitor

import (
	"time"

	"github.com/rileyhilliard/beamtop/internal/erlang"
)

// DefaultRetention is how much sample history the chart covers.
const DefaultRetention = 60 * time.Second

// Window holds the samples inside the retention window, oldest first.
// Only the controller mutates it; the renderer reads it.
type Window struct {
	retention time.Duration
	samples   []erlang.Sample
}

// Point is one value of a metric at a sample's timestamp.
type Point struct {
	Time  time.Time
	Value float64
}

// NewWindow creates an empty window.
func NewWindow(retention time.Duration) *Window {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Window{retention: retention}
}

// Push appends s and drops samples that are more than the retention older
// than s, so the newest-to-oldest gap never exceeds the retention. The wall
// clock is never consulted.
func (w *Window) Push(s erlang.Sample) {
	w.samples = append(w.samples, s)
	drop := 0
	for drop < len(w.samples)-1 && s.Timestamp.Sub(w.samples[drop].Timestamp) > w.retention {
		drop++
	}
	if drop > 0 {
		// Copy down so the backing array doesn't grow without bound.
		w.samples = append(w.samples[:0], w.samples[drop:]...)
	}
}

// Retention returns the window length.
func (w *Window) Retention() time.Duration {
	return w.retention
}

// Len returns the number of samples held.
func (w *Window) Len() int {
	return len(w.samples)
}

// IsEmpty reports whether no sample has arrived yet.
func (w *Window) IsEmpty() bool {
	return len(w.samples) == 0
}

// Latest returns the newest sample, or the zero Sample when empty.
func (w *Window) Latest() erlang.Sample {
	if len(w.samples) == 0 {
		return erlang.Sample{}
	}
	return w.samples[len(w.samples)-1]
}

// Span is the time between the oldest and newest samples.
func (w *Window) Span() time.Duration {
	if len(w.samples) < 2 {
		return 0
	}
	return w.Latest().Timestamp.Sub(w.Oldest().Timestamp)
}

// Oldest returns the oldest sample, or the zero Sample when empty.
func (w *Window) Oldest() erlang.Sample {
	if len(w.samples) == 0 {
		return erlang.Sample{}
	}
	return w.samples[0]
}

// Series returns the values of path across the window. Samples that lack
// the metric are skipped.
func (w *Window) Series(path string) []Point {
	points := make([]Point, 0, len(w.samples))
	for _, s := range w.samples {
		if m, ok := s.Lookup(path); ok {
			points = append(points, Point{Time: s.Timestamp, Value: m.Value})
		}
	}
	return points
}

// Rate returns the per-second change of path between the two newest
// samples that carry it. Counter resets count as zero.
func (w *Window) Rate(path string) (float64, bool) {
	var newer, older *Point
	for i := len(w.samples) - 1; i >= 0 && older == nil; i-- {
		m, ok := w.samples[i].Lookup(path)
		if !ok {
			continue
		}
		p := Point{Time: w.samples[i].Timestamp, Value: m.Value}
		if newer == nil {
			newer = &p
		} else {
			older = &p
		}
	}
	if older == nil {
		return 0, false
	}
	return rateBetween(*older, *newer)
}

// Rates turns counter points into per-second rates. The result has one
// point fewer than the input.
func Rates(points []Point) []Point {
	if len(points) < 2 {
		return nil
	}
	out := make([]Point, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		if r, ok := rateBetween(points[i-1], points[i]); ok {
			out = append(out, Point{Time: points[i].Time, Value: r})
		}
	}
	return out
}

func rateBetween(older, newer Point) (float64, bool) {
	elapsed := newer.Time.Sub(older.Time).Seconds()
	if elapsed <= 0 {
		return 0, false
	}
	delta := newer.Value - older.Value
	if delta < 0 {
		delta = 0
	}
	return delta / elapsed, true
}
