package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/beamtop/internal/erlang"
)

// Frame size used before the terminal reports one.
const (
	DefaultWidth  = 80
	DefaultHeight = 24
)

// headerHeight is the System Version box, borders included.
const headerHeight = 3

// View is everything a frame depends on.
type View struct {
	Version   string
	Paused    bool
	History   *Window
	Selection Selection
	Width     int
	Height    int
}

// Render draws the whole dashboard. It only reads the view, so the same
// view always gives the same frame.
func Render(v View) string {
	width, height := v.Width, v.Height
	if width <= 0 || height <= 0 {
		width, height = DefaultWidth, DefaultHeight
	}
	if width < 20 || height < headerHeight+helpHeight+4 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			MutedStyle.Render(truncate("Terminal too small", width)))
	}

	header := renderBox("System Version", titleStyle, truncate(v.Version, width-2), width, headerHeight, false)

	bodyHeight := height - headerHeight
	leftWidth := width / 2
	rightWidth := width - leftWidth

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		renderMetrics(v, leftWidth, bodyHeight),
		renderRight(v, rightWidth, bodyHeight),
	)

	frame := lipgloss.JoinVertical(lipgloss.Left, header, body)
	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top, frame)
}

func renderMetrics(v View, width, height int) string {
	title := "Metrics"
	style := titleStyle
	if v.Paused {
		title += " (PAUSED)"
		style = pausedTitleStyle
	}
	focused := v.Selection.Focus == FocusMetrics

	latest := latestOf(v.History)
	if latest.RootCount() == 0 {
		return renderBox(title, style, MutedStyle.Render("Waiting for the first sample..."), width, height, focused)
	}

	rows := make([]table.Row, 0, latest.RootCount())
	for _, m := range latest.Metrics {
		rows = append(rows, table.Row{m.Name, metricValue(v.History, m.Name, m)})
	}
	inner := width - 2
	nameWidth := max(inner*2/5, 4)
	content := renderTable(
		[]table.Column{
			{Title: "Name", Width: nameWidth},
			{Title: "Value", Width: max(inner-nameWidth-4, 4)},
		},
		rows, v.Selection.Metrics, height-2, focused)
	return renderBox(title, style, content, width, height, focused)
}

func renderRight(v View, width, height int) string {
	upper := height - helpHeight
	detailHeight := upper / 2
	chartHeight := upper - detailHeight

	return lipgloss.JoinVertical(lipgloss.Left,
		renderDetail(v, width, detailHeight),
		renderChart(v, width, chartHeight),
		renderHelp(width),
	)
}

func renderDetail(v View, width, height int) string {
	focused := v.Selection.Focus == FocusDetail
	latest := latestOf(v.History)
	root, ok := latest.Root(v.Selection.Metrics)
	if !ok {
		return renderBox("Detail", titleStyle, "", width, height, focused)
	}
	title := "Detail: " + root.Name
	if len(root.Children) == 0 {
		return renderBox(title, titleStyle, MutedStyle.Render("No breakdown for this metric"), width, height, focused)
	}

	rows := make([]table.Row, 0, len(root.Children))
	for _, child := range root.Children {
		path := root.Name + "." + child.Name
		rows = append(rows, table.Row{
			child.Name,
			metricValue(v.History, path, child),
			formatShare(child.Value, root.Value),
		})
	}
	inner := width - 2
	nameWidth := max(inner*2/5, 4)
	shareWidth := 7
	content := renderTable(
		[]table.Column{
			{Title: "Name", Width: nameWidth},
			{Title: "Value", Width: max(inner-nameWidth-shareWidth-6, 4)},
			{Title: "Share", Width: shareWidth},
		},
		rows, v.Selection.Detail, height-2, focused)
	return renderBox(title, titleStyle, content, width, height, focused)
}

func renderChart(v View, width, height int) string {
	latest := latestOf(v.History)
	path := v.Selection.SelectedPath(latest)
	if path == "" || height < 4 {
		return renderBox("Chart", titleStyle, "", width, height, false)
	}

	m, _ := latest.Lookup(path)
	points := v.History.Series(path)
	caption := FormatValue(m.Unit, m.Value)
	if m.Kind == erlang.Counter {
		points = Rates(points)
		if len(points) > 0 {
			caption = FormatRate(m.Unit, points[len(points)-1].Value)
		} else {
			caption = "-"
		}
	}

	inner := width - 2
	peak := "max " + FormatValue(m.Unit, seriesMax(points))
	if m.Kind == erlang.Counter {
		peak = "max " + FormatRate(m.Unit, seriesMax(points))
	}
	label := LabelStyle.Render(truncate(path, inner/2)) + " " + ValueStyle.Render(caption)
	legend := label + strings.Repeat(" ", max(inner-lipgloss.Width(label)-lipgloss.Width(peak), 1)) + MutedStyle.Render(peak)

	chart := RenderTimeChart(points, latest.Timestamp, v.History.Retention(), inner, height-3, ColorGraph)
	return renderBox(chartTitle(v.History), titleStyle, legend+"\n"+chart, width, height, false)
}

// chartTitle shows how much of the retention the history covers so far.
func chartTitle(w *Window) string {
	if w == nil || w.Span() < time.Second {
		return "Chart"
	}
	return fmt.Sprintf("Chart (last %s of %s)", w.Span().Truncate(time.Second), w.Retention())
}

// renderTable renders a bubbles table with the cursor at selected, or no
// highlighted row when selected is NoSelection.
func renderTable(columns []table.Column, rows []table.Row, selected, height int, focused bool) string {
	for i := range rows {
		for j := range rows[i] {
			if j < len(columns) {
				rows[i][j] = truncate(rows[i][j], columns[j].Width)
			}
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(focused),
		table.WithHeight(max(height, 2)),
	)
	t.SetStyles(tableStyles(focused))
	if selected >= 0 {
		t.SetCursor(selected)
	} else {
		styles := tableStyles(focused)
		styles.Selected = lipgloss.NewStyle()
		t.SetStyles(styles)
	}
	return t.View()
}

// metricValue formats a metric for a table cell. Counters also show their
// current rate.
func metricValue(h *Window, path string, m erlang.Metric) string {
	value := FormatValue(m.Unit, m.Value)
	if m.Kind != erlang.Counter || h == nil {
		return value
	}
	if rate, ok := h.Rate(path); ok {
		return value + " (" + FormatRate(m.Unit, rate) + ")"
	}
	return value
}

func latestOf(h *Window) erlang.Sample {
	if h == nil {
		return erlang.Sample{}
	}
	return h.Latest()
}
