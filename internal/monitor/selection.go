package monitor

import "github.com/rileyhilliard/beamtop/internal/erlang"

// NoSelection marks a cursor over an empty table.
const NoSelection = -1

// Focus is the table the arrow keys move.
type Focus int

const (
	FocusMetrics Focus = iota
	FocusDetail
)

// Selection holds one cursor per table. Metrics indexes the root metrics of
// the latest sample; Detail indexes the children of the selected root.
type Selection struct {
	Metrics int
	Detail  int
	Focus   Focus
}

// NewSelection returns a selection with nothing selected.
func NewSelection() Selection {
	return Selection{Metrics: NoSelection, Detail: NoSelection, Focus: FocusMetrics}
}

// clampCursor keeps prev inside [0, count). An unset cursor over a
// non-empty table selects the first row.
func clampCursor(prev, count int) int {
	if count <= 0 {
		return NoSelection
	}
	if prev < 0 {
		return 0
	}
	return min(prev, count-1)
}

// Clamp makes both cursors valid for latest. Call it after every history
// mutation and every cursor move.
func (s *Selection) Clamp(latest erlang.Sample) {
	s.Metrics = clampCursor(s.Metrics, latest.RootCount())
	s.Detail = clampCursor(s.Detail, len(s.selectedChildren(latest)))
}

func (s *Selection) selectedChildren(latest erlang.Sample) []erlang.Metric {
	root, ok := latest.Root(s.Metrics)
	if !ok {
		return nil
	}
	return root.Children
}

// MoveUp moves the focused cursor one row up.
func (s *Selection) MoveUp(latest erlang.Sample) {
	cursor := s.focused()
	if *cursor > 0 {
		*cursor--
	}
	s.Clamp(latest)
}

// MoveDown moves the focused cursor one row down.
func (s *Selection) MoveDown(latest erlang.Sample) {
	cursor := s.focused()
	if *cursor >= 0 {
		*cursor++
	}
	s.Clamp(latest)
}

// FocusLeft focuses the metrics table.
func (s *Selection) FocusLeft() {
	s.Focus = FocusMetrics
}

// FocusRight focuses the detail table.
func (s *Selection) FocusRight() {
	s.Focus = FocusDetail
}

func (s *Selection) focused() *int {
	if s.Focus == FocusDetail {
		return &s.Detail
	}
	return &s.Metrics
}

// SelectedPath names the metric the chart follows: the selected child when
// the detail table has focus, otherwise the selected root.
func (s Selection) SelectedPath(latest erlang.Sample) string {
	root, ok := latest.Root(s.Metrics)
	if !ok {
		return ""
	}
	if s.Focus == FocusDetail && s.Detail >= 0 && s.Detail < len(root.Children) {
		return root.Name + "." + root.Children[s.Detail].Name
	}
	return root.Name
}
