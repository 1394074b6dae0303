package monitor

import (
	"strings"
	"testing"
	"time"

	"github.com/rileyhilliard/beamtop/internal/erlang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketByTime(t *testing.T) {
	end := epoch.Add(10 * time.Second)
	points := []Point{
		{epoch.Add(-time.Second), 99}, // before the window
		{epoch, 1},
		{epoch.Add(5 * time.Second), 3},
		{epoch.Add(5 * time.Second), 7},
		{end, 2},
	}

	values, filled := bucketByTime(points, end, 10*time.Second, 11)

	require.Len(t, values, 11)
	assert.True(t, filled[0])
	assert.Equal(t, 1.0, values[0])
	assert.Equal(t, 7.0, values[5], "bucket keeps the peak")
	assert.Equal(t, 2.0, values[10])
	assert.False(t, filled[3])
}

func TestBucketByTime_Degenerate(t *testing.T) {
	values, filled := bucketByTime([]Point{{epoch, 1}}, epoch, 0, 4)
	assert.Len(t, values, 4)
	assert.NotContains(t, filled, true)

	values, _ = bucketByTime(nil, epoch, time.Second, 0)
	assert.Empty(t, values)
}

func TestRenderTimeChart(t *testing.T) {
	end := epoch.Add(60 * time.Second)
	points := []Point{{epoch, 0}, {epoch.Add(30 * time.Second), 50}, {end, 100}}

	chart := RenderTimeChart(points, end, time.Minute, 10, 2, ColorGraph)

	rows := strings.Split(chart, "\n")
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, 10, len([]rune(row)))
	}

	// Full-height point at the right edge fills both rows of the last cell.
	assert.NotEqual(t, brailleBase, []rune(rows[0])[9])
	assert.NotEqual(t, brailleBase, []rune(rows[1])[9])
	// Zero at the left edge still shows on the baseline only.
	assert.Equal(t, brailleBase, []rune(rows[0])[0])
	assert.NotEqual(t, brailleBase, []rune(rows[1])[0])
	// Nothing between samples.
	assert.Equal(t, brailleBase, []rune(rows[1])[2])
}

func TestRenderTimeChart_Empty(t *testing.T) {
	assert.Equal(t, "", RenderTimeChart(nil, epoch, time.Minute, 0, 3, ColorGraph))

	chart := RenderTimeChart(nil, epoch, time.Minute, 4, 1, ColorGraph)
	assert.Equal(t, strings.Repeat(string(brailleBase), 4), chart)
}

func TestSeriesMax(t *testing.T) {
	assert.Equal(t, 1.0, seriesMax(nil))
	assert.Equal(t, 1.0, seriesMax([]Point{{epoch, 0}}))
	assert.Equal(t, 9.0, seriesMax([]Point{{epoch, 3}, {epoch, 9}}))
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name     string
		unit     erlang.Unit
		value    float64
		expected string
	}{
		{"bytes", erlang.UnitBytes, 1536, "1.5 KiB"},
		{"small bytes", erlang.UnitBytes, 12, "12 B"},
		{"negative bytes", erlang.UnitBytes, -2048, "-2.0 KiB"},
		{"count", erlang.UnitCount, 1234567, "1,234,567"},
		{"count rounds", erlang.UnitCount, 2.6, "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatValue(tt.unit, tt.value))
		})
	}
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "2.0 KiB/s", FormatRate(erlang.UnitBytes, 2048))
	assert.Equal(t, "0 B/s", FormatRate(erlang.UnitBytes, -5))
	assert.Equal(t, "1,500.5/s", FormatRate(erlang.UnitCount, 1500.5))
}

func TestFormatShare(t *testing.T) {
	assert.Equal(t, "25.0%", formatShare(1, 4))
	assert.Equal(t, "", formatShare(1, 0))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "memory", truncate("memory", 10))
	assert.Equal(t, "memo…", truncate("memory", 5))
	assert.Equal(t, "", truncate("memory", 0))
	assert.Equal(t, "漢…", truncate("漢字漢字", 4), "wide runes count as two cells")
}
