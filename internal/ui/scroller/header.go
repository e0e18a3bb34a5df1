package scroller

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/datagrid/internal/ui/render"
	"github.com/charmbracelet/x/ansi"
	"github.com/mitchellh/hashstructure/v2"
)

type headerKey struct {
	Cols      []int
	Widths    []int
	Names     []string
	Sortable  []bool
	SortCol   int
	Ascending bool
	ScrollX   int
	Width     int
}

type headerCache struct {
	valid   bool
	hash    uint64
	line    string
	renders int
}

func (h *headerCache) invalidate() {
	h.valid = false
}

// HeaderRenders returns how often the header line was rendered, mainly for
// tests.
func (s *Scroller) HeaderRenders() int {
	return s.header.renders
}

func (s *Scroller) headerKey() headerKey {
	src := s.host.Source()
	cm := s.host.ColumnModel()
	cols := s.columns.Columns()
	k := headerKey{
		Cols:      cols,
		Widths:    make([]int, len(cols)),
		Names:     make([]string, len(cols)),
		Sortable:  make([]bool, len(cols)),
		SortCol:   src.SortColumnIndex(),
		Ascending: src.IsSortAscending(),
		ScrollX:   s.scrollX,
		Width:     s.lay.clipW,
	}
	for i, col := range cols {
		k.Widths[i] = cm.ColumnWidth(col)
		k.Names[i] = src.ColumnName(col)
		k.Sortable[i] = src.IsColumnSortable(col)
	}
	return k
}

// headerLine returns the header cells of the window, scrolled and cut to
// the pane width. The line is memoized on a fingerprint of everything it
// depends on.
func (s *Scroller) headerLine() string {
	k := s.headerKey()
	hash, err := hashstructure.Hash(k, hashstructure.FormatV2, nil)
	if err != nil {
		slog.Error("Failed to hash header state", "err", err)
	} else if s.header.valid && hash == s.header.hash {
		return s.header.line
	}

	cm := s.host.ColumnModel()
	src := s.host.Source()
	var b strings.Builder
	for x, col := range k.Cols {
		r := cm.HeaderRenderer(col)
		if r == nil {
			r = s.defaultHeader
		}
		b.WriteString(r.RenderHeader(render.HeaderInfo{
			Name:      k.Names[x],
			Col:       col,
			XPos:      x,
			Width:     k.Widths[x],
			Sortable:  k.Sortable[x],
			Editable:  src.IsColumnEditable(col),
			Sorted:    col == k.SortCol,
			Ascending: k.Ascending,
		}))
	}

	line := ansi.Cut(b.String(), s.scrollX, s.scrollX+s.lay.clipW)
	if pad := s.lay.clipW - ansi.StringWidth(line); pad > 0 {
		line += strings.Repeat(" ", pad)
	}

	s.header = headerCache{
		valid:   err == nil,
		hash:    hash,
		line:    line,
		renders: s.header.renders + 1,
	}
	return line
}
