package column

import "github.com/charmbracelet/datagrid/internal/event"

// Pane restricts a Model to the contiguous slice of visible positions
// [FirstColumnX, FirstColumnX+MaxColumnCount). A MaxColumnCount of -1
// extends the slice to the last visible column.
type Pane struct {
	model *Model

	firstX   int
	maxCount int

	// -1 when stale.
	count int

	changed event.Emitter[struct{}]
	unsubs  []func()
}

// NewPane creates a pane over model showing all visible columns.
func NewPane(model *Model) *Pane {
	p := &Pane{
		model:    model,
		maxCount: -1,
		count:    -1,
	}
	invalidate := func() {
		p.count = -1
		p.changed.Emit(struct{}{})
	}
	p.unsubs = append(p.unsubs,
		model.OnVisibilityChanged(func(VisibilityEvent) { invalidate() }),
		model.OnOrderChanged(func(OrderEvent) { invalidate() }),
	)
	return p
}

// Close detaches the pane from its model.
func (p *Pane) Close() {
	for _, unsub := range p.unsubs {
		unsub()
	}
	p.unsubs = nil
}

// Model returns the underlying column model.
func (p *Pane) Model() *Model {
	return p.model
}

// OnChanged registers a listener notified whenever the set of columns in
// the pane may have changed.
func (p *Pane) OnChanged(fn func()) func() {
	return p.changed.Subscribe(func(struct{}) { fn() })
}

// FirstColumnX returns the visible position of the first pane column.
func (p *Pane) FirstColumnX() int {
	return p.firstX
}

// SetFirstColumnX moves the start of the pane.
func (p *Pane) SetFirstColumnX(x int) {
	if x == p.firstX {
		return
	}
	p.firstX = x
	p.count = -1
	p.changed.Emit(struct{}{})
}

// MaxColumnCount returns the column limit of the pane, or -1.
func (p *Pane) MaxColumnCount() int {
	return p.maxCount
}

// SetMaxColumnCount limits the number of pane columns; -1 removes the
// limit.
func (p *Pane) SetMaxColumnCount(n int) {
	if n == p.maxCount {
		return
	}
	p.maxCount = n
	p.count = -1
	p.changed.Emit(struct{}{})
}

// ColumnCount returns the number of columns in the pane.
func (p *Pane) ColumnCount() int {
	if p.count == -1 {
		total := p.model.VisibleColumnCount()
		if p.maxCount == -1 || p.firstX+p.maxCount > total {
			p.count = max(total-p.firstX, 0)
		} else {
			p.count = p.maxCount
		}
	}
	return p.count
}

// ColumnAtX returns the model index of the column at pane position x.
func (p *Pane) ColumnAtX(x int) int {
	return p.model.VisibleColumnAtX(p.firstX + x)
}

// X returns the pane position of col, or -1 when col is not in the pane.
func (p *Pane) X(col int) int {
	vx := p.model.VisibleX(col)
	if vx == -1 {
		return -1
	}
	x := vx - p.firstX
	if x >= 0 && x < p.ColumnCount() {
		return x
	}
	return -1
}

// ColumnLeft returns the offset of col from the left edge of the pane, or
// -1 when col is not in the pane.
func (p *Pane) ColumnLeft(col int) int {
	var left int
	for x := range p.ColumnCount() {
		c := p.ColumnAtX(x)
		if c == col {
			return left
		}
		left += p.model.ColumnWidth(c)
	}
	return -1
}

// TotalWidth returns the summed width of the pane columns.
func (p *Pane) TotalWidth() int {
	var w int
	for x := range p.ColumnCount() {
		w += p.model.ColumnWidth(p.ColumnAtX(x))
	}
	return w
}

// Columns returns the model indices of the pane columns in display order.
func (p *Pane) Columns() []int {
	n := p.ColumnCount()
	cols := make([]int, n)
	for x := range n {
		cols[x] = p.ColumnAtX(x)
	}
	return cols
}
