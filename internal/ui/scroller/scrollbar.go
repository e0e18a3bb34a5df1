package scroller

import (
	"image"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/datagrid/internal/ui/render"
	"github.com/charmbracelet/datagrid/internal/ui/styles"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/charmbracelet/x/ansi"
)

// thumb returns the offset and length of a scrollbar thumb on a track of
// the given length showing view of content units scrolled by offset.
func thumb(track, content, view, offset int) (start, size int) {
	if track <= 0 || content <= 0 {
		return 0, 0
	}
	size = max(1, min(track, track*view/content))
	if scrollable := content - view; scrollable > 0 {
		start = (track - size) * min(offset, scrollable) / scrollable
	}
	return start, size
}

func (s *Scroller) drawVerticalScrollBar(scr uv.Screen, at image.Point) {
	l := s.lay
	start, size := thumb(l.clipH, s.contentHeight(), l.clipH, s.scrollY)
	track := s.styles.Scrollbar.Track.Render(styles.ScrollbarTrack)
	bar := s.styles.Scrollbar.Thumb.Render(styles.ScrollbarThumb)
	for y := range l.clipH {
		glyph := track
		if y >= start && y < start+size {
			glyph = bar
		}
		uv.NewStyledString(glyph).Draw(scr, uv.Rect(at.X, at.Y+y, 1, 1))
	}
}

func (s *Scroller) drawHorizontalScrollBar(scr uv.Screen, at image.Point) {
	l := s.lay
	start, size := thumb(l.clipW, s.columns.TotalWidth(), l.clipW, s.scrollX)
	track := s.styles.Scrollbar.Track.Render(styles.ScrollbarHTrack)
	bar := s.styles.Scrollbar.Thumb.Render(styles.ScrollbarHThumb)
	for x := range l.clipW {
		glyph := track
		if x >= start && x < start+size {
			glyph = bar
		}
		uv.NewStyledString(glyph).Draw(scr, uv.Rect(at.X+x, at.Y, 1, 1))
	}
}

// drawFeedback draws the resize line of a deferred resize and the move
// feedback of a column move.
func (s *Scroller) drawFeedback(scr uv.Screen, area uv.Rectangle) {
	l := s.lay
	line := -1
	switch {
	case s.drag == dragResize && !s.opts.LiveResize:
		if left := s.columns.ColumnLeft(s.resize.col); left >= 0 {
			line = left + s.resize.lastWidth - s.scrollX
		}
	case s.drag == dragMove && s.move.feedback:
		if s.move.target >= 0 {
			line = s.move.line
		}
		s.drawMovingHeader(scr, area)
	}
	if line < 0 || line >= l.clipW {
		return
	}
	glyph := s.styles.Resize.Render(styles.ResizeLine)
	for y := range l.headerH + l.clipH {
		uv.NewStyledString(glyph).Draw(scr, uv.Rect(area.Min.X+line, area.Min.Y+y, 1, 1))
	}
}

func (s *Scroller) drawMovingHeader(scr uv.Screen, area uv.Rectangle) {
	if s.lay.headerH == 0 {
		return
	}
	col := s.move.col
	src := s.host.Source()
	w := s.host.ColumnModel().ColumnWidth(col)
	label := render.HeaderLabel(render.HeaderInfo{
		Name:      src.ColumnName(col),
		Col:       col,
		Width:     w,
		Sorted:    col == src.SortColumnIndex(),
		Ascending: src.IsSortAscending(),
	})
	var b strings.Builder
	render.WriteCell(&b, label, w, 1, lipgloss.Left)
	text := b.String()
	x := s.move.colPos - s.scrollX
	r := image.Rect(x, 0, x+w, 1).Intersect(image.Rect(0, 0, s.lay.clipW, 1))
	if r.Empty() {
		return
	}
	if x < 0 {
		text = ansi.Cut(text, -x, w)
	}
	uv.NewStyledString(s.styles.Header.Feedback.Render(text)).Draw(scr, r.Add(area.Min))
}
