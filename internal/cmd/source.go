package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/datagrid/internal/config"
	"github.com/charmbracelet/datagrid/internal/data"
	"github.com/charmbracelet/datagrid/internal/ui/table"
	"github.com/spf13/cobra"
)

const (
	formatCSV  = "csv"
	formatJSON = "json"
)

func addTableFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("hidden", nil, "Columns to hide, by name or index")
	cmd.Flags().Int("freeze", 0, "Number of leading columns kept in place while scrolling horizontally")
	cmd.Flags().String("sort", "", "Column to sort by initially, prefix with - for descending order")
	cmd.Flags().Bool("editable", false, "Allow editing cells")
}

func addFileFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "", "Input format: csv or json; detected from the file extension by default")
	cmd.Flags().StringSlice("columns", nil, "gjson paths selecting the columns of JSON input")
}

// detectFormat returns the input format of path.
func detectFormat(path, format string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch format {
	case formatCSV, "tsv", formatJSON:
		return format, nil
	case "":
		return "", fmt.Errorf("cannot detect the format of %q, use --format", path)
	default:
		return "", fmt.Errorf("unsupported format %q", format)
	}
}

// readSource reads a table from path, or from stdin when path is "-".
func readSource(path, format string, columns []string, stdin io.Reader) (*data.Simple, error) {
	format, err := detectFormat(path, format)
	if err != nil {
		return nil, err
	}

	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	switch format {
	case formatJSON:
		doc, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return data.FromJSON(doc, columns...)
	case "tsv":
		return data.FromDelimited(r, '\t')
	default:
		return data.FromCSV(r)
	}
}

// tableFlags are the table related flags shared by the commands.
type tableFlags struct {
	hidden   []string
	freeze   int
	sort     string
	editable bool
}

func getTableFlags(cmd *cobra.Command) tableFlags {
	var f tableFlags
	f.hidden, _ = cmd.Flags().GetStringSlice("hidden")
	f.freeze, _ = cmd.Flags().GetInt("freeze")
	f.sort, _ = cmd.Flags().GetString("sort")
	f.editable, _ = cmd.Flags().GetBool("editable")
	return f
}

// configure applies the flags that change the configuration.
func (f tableFlags) configure(cfg *config.Config) error {
	switch {
	case f.freeze < 0:
		return fmt.Errorf("--freeze must not be negative")
	case f.freeze > 0:
		cfg.Table.MetaColumns = []int{f.freeze, -1}
	}
	return nil
}

// apply applies the flags that change the table.
func (f tableFlags) apply(tbl *table.Table) error {
	src := tbl.Source()
	if f.editable {
		if e, ok := src.(interface{ SetEditable(bool) }); ok {
			e.SetEditable(true)
		}
	}
	for _, name := range f.hidden {
		col, err := columnIndex(src, name)
		if err != nil {
			return err
		}
		tbl.ColumnModel().SetColumnVisible(col, false)
	}
	if f.sort != "" {
		name, descending := strings.CutPrefix(f.sort, "-")
		col, err := columnIndex(src, name)
		if err != nil {
			return err
		}
		if !src.IsColumnSortable(col) {
			return fmt.Errorf("column %q is not sortable", name)
		}
		src.SortByColumn(col, !descending)
	}
	return nil
}

// columnIndex resolves a column by name, falling back to its index.
func columnIndex(src data.Source, name string) (int, error) {
	for col := range src.ColumnCount() {
		if strings.EqualFold(src.ColumnName(col), name) {
			return col, nil
		}
	}
	if col, err := strconv.Atoi(name); err == nil && col >= 0 && col < src.ColumnCount() {
		return col, nil
	}
	return -1, fmt.Errorf("unknown column %q", name)
}
