// Package selection implements the row selection model of the grid: an
// ordered set of disjoint, non-adjacent closed ranges of row indices with
// anchor and lead tracking and batched change notification.
package selection

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/charmbracelet/datagrid/internal/event"
)

// ErrIllegalState is returned when an operation is invoked in a state that
// does not permit it.
var ErrIllegalState = errors.New("illegal state")

// Mode controls which selections the model accepts.
type Mode uint8

// Possible Mode values.
const (
	ModeNone Mode = iota
	ModeSingle
	ModeSingleInterval
	ModeMultipleInterval
	// ModeMultipleIntervalToggle flips the selection state of every index in
	// a requested interval instead of replacing the selection.
	ModeMultipleIntervalToggle
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeSingle:
		return "single"
	case ModeSingleInterval:
		return "single-interval"
	case ModeMultipleInterval:
		return "multiple-interval"
	case ModeMultipleIntervalToggle:
		return "multiple-interval-toggle"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// ParseMode converts the textual form of a mode back to a Mode.
func ParseMode(s string) (Mode, error) {
	for m := ModeNone; m <= ModeMultipleIntervalToggle; m++ {
		if m.String() == s {
			return m, nil
		}
	}
	return ModeNone, fmt.Errorf("unknown selection mode %q", s)
}

// Range is a closed interval of row indices.
type Range struct {
	Min, Max int
}

// Len returns the number of indices in the range.
func (r Range) Len() int {
	return r.Max - r.Min + 1
}

// Contains reports whether index lies within the range.
func (r Range) Contains(index int) bool {
	return index >= r.Min && index <= r.Max
}

// Model is the selection model. The zero value is not usable; use New.
type Model struct {
	mode   Mode
	ranges []Range

	anchor int
	lead   int

	batch          int
	changedInBatch bool

	changed event.Emitter[struct{}]
}

// New creates an empty selection model in ModeSingle.
func New() *Model {
	return &Model{
		mode:   ModeSingle,
		anchor: -1,
		lead:   -1,
	}
}

// OnChange registers fn to be notified after the selection changed.
func (m *Model) OnChange(fn func()) func() {
	return m.changed.Subscribe(func(struct{}) { fn() })
}

// Mode returns the current selection mode.
func (m *Model) Mode() Mode {
	return m.mode
}

// SetMode changes the selection mode. Changing the mode resets the
// selection.
func (m *Model) SetMode(mode Mode) {
	if mode == m.mode {
		return
	}
	m.mode = mode
	m.ResetSelection()
}

// AnchorSelectionIndex returns the anchor of the most recent selection
// gesture, or -1.
func (m *Model) AnchorSelectionIndex() int {
	return m.anchor
}

// LeadSelectionIndex returns the lead of the most recent selection gesture,
// or -1.
func (m *Model) LeadSelectionIndex() int {
	return m.lead
}

// SetBatchMode enables or disables batch mode. Batches nest; notifications
// are suppressed while any batch is active and at most one notification is
// sent when the outermost batch ends, if anything changed.
func (m *Model) SetBatchMode(enabled bool) error {
	if enabled {
		m.batch++
		return nil
	}
	if m.batch == 0 {
		return fmt.Errorf("selection: batch mode turned off without a matching batch: %w", ErrIllegalState)
	}
	m.batch--
	if m.batch == 0 && m.changedInBatch {
		m.changedInBatch = false
		m.changed.Emit(struct{}{})
	}
	return nil
}

// InBatchMode reports whether a batch is active.
func (m *Model) InBatchMode() bool {
	return m.batch > 0
}

// IsSelectionEmpty reports whether no index is selected.
func (m *Model) IsSelectionEmpty() bool {
	return len(m.ranges) == 0
}

// IsSelectedIndex reports whether index is selected.
func (m *Model) IsSelectedIndex(index int) bool {
	for _, r := range m.ranges {
		if index < r.Min {
			return false
		}
		if index <= r.Max {
			return true
		}
	}
	return false
}

// SelectedCount returns the number of selected indices.
func (m *Model) SelectedCount() int {
	var n int
	for _, r := range m.ranges {
		n += r.Len()
	}
	return n
}

// Ranges returns a copy of the selected ranges in ascending order.
func (m *Model) Ranges() []Range {
	return slices.Clone(m.ranges)
}

// All returns an iterator over the selected indices in ascending order. The
// iterator walks a snapshot of the ranges taken when iteration starts.
func (m *Model) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		for _, r := range slices.Clone(m.ranges) {
			for i := r.Min; i <= r.Max; i++ {
				if !yield(i) {
					return
				}
			}
		}
	}
}

// IterateSelection calls fn for every selected index in ascending order.
func (m *Model) IterateSelection(fn func(index int)) {
	for i := range m.All() {
		fn(i)
	}
}

// ResetSelection clears the selection. It does nothing, and notifies no one,
// when the selection is already empty.
func (m *Model) ResetSelection() {
	if len(m.ranges) == 0 && m.anchor == -1 && m.lead == -1 {
		return
	}
	hadRanges := len(m.ranges) > 0
	m.ranges = nil
	m.anchor, m.lead = -1, -1
	if hadRanges {
		m.fireChange()
	}
}

// SetSelectionInterval replaces the selection with [from, to], respecting
// the mode. In ModeMultipleIntervalToggle every index in the interval is
// toggled instead.
func (m *Model) SetSelectionInterval(from, to int) {
	switch m.mode {
	case ModeNone:
		return
	case ModeSingle:
		from = to
	case ModeMultipleIntervalToggle:
		m.toggleInterval(from, to)
		return
	}

	before := m.snapshot()
	m.anchor, m.lead = from, to
	m.ranges = m.ranges[:0]
	m.insert(from, to)
	m.fireIfChanged(before)
}

// AddSelectionInterval adds [from, to] to the selection. Outside of the
// multiple interval modes it behaves like SetSelectionInterval.
func (m *Model) AddSelectionInterval(from, to int) {
	switch m.mode {
	case ModeNone:
		return
	case ModeSingle, ModeSingleInterval:
		m.SetSelectionInterval(from, to)
		return
	}

	before := m.snapshot()
	m.anchor, m.lead = from, to
	m.insert(from, to)
	m.fireIfChanged(before)
}

// RemoveSelectionInterval removes [from, to] from the selection. Anchor and
// lead are updated to (from, to) even when nothing was selected there.
func (m *Model) RemoveSelectionInterval(from, to int) {
	m.anchor, m.lead = from, to
	lo, hi := min(from, to), max(from, to)

	before := m.snapshot()
	m.remove(lo, hi)
	m.fireIfChanged(before)
}

// RowsRemoved adjusts the selection after count rows starting at start were
// removed from the data: removed rows leave the selection and ranges after
// them move up.
func (m *Model) RowsRemoved(start, count int) {
	if count <= 0 {
		return
	}
	before := m.snapshot()
	end := start + count - 1
	m.remove(start, end)
	for i := range m.ranges {
		if m.ranges[i].Min > end {
			m.ranges[i].Min -= count
			m.ranges[i].Max -= count
		}
	}
	m.merge()
	m.anchor = shiftRemoved(m.anchor, start, count)
	m.lead = shiftRemoved(m.lead, start, count)
	m.fireIfChanged(before)
}

// RowsInserted adjusts the selection after count rows were inserted at
// start. A range spanning the insertion point is split so the new rows are
// not selected.
func (m *Model) RowsInserted(start, count int) {
	if count <= 0 {
		return
	}
	before := m.snapshot()
	out := make([]Range, 0, len(m.ranges)+1)
	for _, r := range m.ranges {
		switch {
		case r.Max < start:
			out = append(out, r)
		case r.Min >= start:
			out = append(out, Range{r.Min + count, r.Max + count})
		default:
			out = append(out, Range{r.Min, start - 1}, Range{start + count, r.Max + count})
		}
	}
	m.ranges = out
	if m.anchor >= start {
		m.anchor += count
	}
	if m.lead >= start {
		m.lead += count
	}
	m.fireIfChanged(before)
}

func shiftRemoved(index, start, count int) int {
	switch {
	case index < start:
		return index
	case index < start+count:
		return -1
	default:
		return index - count
	}
}

func (m *Model) toggleInterval(from, to int) {
	lo, hi := min(from, to), max(from, to)
	_ = m.SetBatchMode(true)
	defer func() { _ = m.SetBatchMode(false) }()

	for i := lo; i <= hi; i++ {
		if m.IsSelectedIndex(i) {
			m.RemoveSelectionInterval(i, i)
		} else {
			before := m.snapshot()
			m.anchor, m.lead = i, i
			m.insert(i, i)
			m.fireIfChanged(before)
		}
	}
}

// insert adds [from, to] keeping ranges sorted, disjoint and non-adjacent.
func (m *Model) insert(from, to int) {
	r := Range{Min: min(from, to), Max: max(from, to)}

	pos := len(m.ranges)
	for i, cur := range m.ranges {
		if cur.Min > r.Min {
			pos = i
			break
		}
	}
	m.ranges = slices.Insert(m.ranges, pos, r)
	m.merge()
}

// merge joins overlapping or adjacent ranges in a single left-to-right pass.
func (m *Model) merge() {
	if len(m.ranges) < 2 {
		return
	}
	out := m.ranges[:1]
	for _, cur := range m.ranges[1:] {
		last := &out[len(out)-1]
		if last.Max+1 >= cur.Min {
			last.Max = max(last.Max, cur.Max)
			continue
		}
		out = append(out, cur)
	}
	m.ranges = out
}

// remove deletes [lo, hi], cropping or splitting ranges as needed.
func (m *Model) remove(lo, hi int) {
	out := make([]Range, 0, len(m.ranges)+1)
	for _, r := range m.ranges {
		switch {
		case r.Max < lo || r.Min > hi:
			out = append(out, r)
		case r.Min >= lo && r.Max <= hi:
			// Fully covered.
		case r.Min < lo && r.Max > hi:
			out = append(out, Range{r.Min, lo - 1}, Range{hi + 1, r.Max})
		case r.Min < lo:
			out = append(out, Range{r.Min, lo - 1})
		default:
			out = append(out, Range{hi + 1, r.Max})
		}
	}
	m.ranges = out
}

func (m *Model) snapshot() []Range {
	return slices.Clone(m.ranges)
}

func (m *Model) fireIfChanged(before []Range) {
	if slices.Equal(before, m.ranges) {
		return
	}
	m.fireChange()
}

func (m *Model) fireChange() {
	if m.batch > 0 {
		m.changedInBatch = true
		return
	}
	m.changed.Emit(struct{}{})
}
