package monitor

import (
	"math"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/rileyhilliard/beamtop/internal/erlang"
)

// FormatValue formats v in the metric's unit: IEC bytes or a comma-grouped
// count.
func FormatValue(unit erlang.Unit, v float64) string {
	if unit == erlang.UnitBytes {
		if v < 0 {
			return "-" + humanize.IBytes(uint64(-v))
		}
		return humanize.IBytes(uint64(v))
	}
	return humanize.Comma(int64(math.Round(v)))
}

// FormatRate formats a per-second rate in the metric's unit.
func FormatRate(unit erlang.Unit, perSec float64) string {
	if unit == erlang.UnitBytes {
		return humanize.IBytes(uint64(math.Max(perSec, 0))) + "/s"
	}
	return humanize.FormatFloat("#,###.#", perSec) + "/s"
}

// formatShare formats part as a percentage of whole.
func formatShare(part, whole float64) string {
	if whole <= 0 {
		return ""
	}
	return humanize.FormatFloat("#,###.#", part/whole*100) + "%"
}

// truncate shortens s to at most width cells, marking the cut with an
// ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
