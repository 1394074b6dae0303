package monitor

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Braille character rendering for high-resolution terminal graphs.
//
// Braille patterns use a 2x4 dot matrix per character:
//
//	  Col 0  Col 1
//	Row 0:   ⠁      ⠈     (dots 1, 4)
//	Row 1:   ⠂      ⠐     (dots 2, 5)
//	Row 2:   ⠄      ⠠     (dots 3, 6)
//	Row 3:   ⡀      ⢀     (dots 7, 8)
//
// Unicode braille starts at U+2800 (empty) and uses bit patterns:
// bit 0 = dot 1, bit 1 = dot 2, bit 2 = dot 3, bit 3 = dot 4,
// bit 4 = dot 5, bit 5 = dot 6, bit 6 = dot 7, bit 7 = dot 8

const brailleBase = '⠀'

// brailleDots maps row/column to the bit offset for braille pattern
// [row][col] where row is 0-3 (top to bottom) and col is 0-1 (left to right)
var brailleDots = [4][2]uint8{
	{0, 3},
	{1, 4},
	{2, 5},
	{6, 7},
}

// clampInt clamps an integer to a range [0, maxVal].
func clampInt(val, maxVal int) int {
	if val < 0 {
		return 0
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// bucketByTime spreads points over slots dot columns covering
// [end-span, end]. Each slot keeps the largest value that falls in it so
// spikes survive downsampling. Empty slots are marked false.
func bucketByTime(points []Point, end time.Time, span time.Duration, slots int) ([]float64, []bool) {
	values := make([]float64, slots)
	filled := make([]bool, slots)
	if slots == 0 || span <= 0 {
		return values, filled
	}
	start := end.Add(-span)
	for _, p := range points {
		if p.Time.Before(start) || p.Time.After(end) {
			continue
		}
		slot := int(float64(p.Time.Sub(start)) / float64(span) * float64(slots-1))
		slot = clampInt(slot, slots-1)
		if !filled[slot] || p.Value > values[slot] {
			values[slot] = p.Value
			filled[slot] = true
		}
	}
	return values, filled
}

// seriesMax returns the largest value, or 1 for an all-zero series so the
// scale never divides by zero.
func seriesMax(points []Point) float64 {
	maxVal := 0.0
	for _, p := range points {
		if p.Value > maxVal {
			maxVal = p.Value
		}
	}
	if maxVal <= 0 {
		return 1
	}
	return maxVal
}

// RenderTimeChart renders points as a braille area chart, width characters
// wide and height rows tall. The x axis is time: the right edge is end and
// the left edge is end-span. The y axis runs from zero to the series max.
func RenderTimeChart(points []Point, end time.Time, span time.Duration, width, height int, color lipgloss.Color) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = brailleBase
		}
	}

	totalDots := height * 4
	values, filled := bucketByTime(points, end, span, width*2)
	maxVal := seriesMax(points)

	for i, val := range values {
		if !filled[i] {
			continue
		}
		dotHeight := clampInt(int(val/maxVal*float64(totalDots)+0.5), totalDots)
		if dotHeight == 0 {
			// Keep present samples visible on the baseline.
			dotHeight = 1
		}
		charCol := i / 2
		subCol := i % 2
		for dot := 0; dot < dotHeight; dot++ {
			row := height - 1 - (dot / 4)
			subRow := 3 - (dot % 4)
			grid[row][charCol] |= rune(1 << brailleDots[subRow][subCol])
		}
	}

	style := lipgloss.NewStyle().Foreground(color)
	lines := make([]string, height)
	for i, row := range grid {
		lines[i] = style.Render(string(row))
	}
	return strings.Join(lines, "\n")
}
