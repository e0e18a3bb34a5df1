package table

import (
	"github.com/charmbracelet/datagrid/internal/ui/render"
)

// UseTypedRenderers picks a cell renderer per column from the values of
// the first sample rows: numbers get [render.Number] and booleans get
// [render.Boolean]. Columns with mixed or textual values keep theirs.
func (t *Table) UseTypedRenderers(sample int) {
	rows := min(sample, t.src.RowCount())
	for col := range t.src.ColumnCount() {
		var numbers, bools, other int
		for row := range rows {
			switch t.src.Value(col, row).(type) {
			case nil:
			case int, int32, int64, uint32:
				numbers++
			case float32, float64:
				numbers++
			case bool:
				bools++
			default:
				other++
			}
		}
		switch {
		case other > 0:
		case numbers > 0 && bools == 0:
			t.cm.SetDataRenderer(col, render.Number{Decimals: 2})
		case bools > 0 && numbers == 0:
			t.cm.SetDataRenderer(col, render.Boolean{})
		}
	}
}
