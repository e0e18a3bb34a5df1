// Package config holds the datagrid configuration: defaults, YAML files,
// environment overrides and the JSON schema of the file format.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/datagrid/internal/ui/selection"
	"github.com/invopop/jsonschema"
)

const appName = "datagrid"

// ErrInvalid is wrapped by validation errors.
var ErrInvalid = errors.New("invalid configuration")

// Config is the datagrid configuration.
type Config struct {
	Table TableOptions `yaml:"table" json:"table" jsonschema:"description=Behavior of the grid"`
	Log   LogOptions   `yaml:"log" json:"log" jsonschema:"description=Log output"`
}

// TableOptions configure the grid.
type TableOptions struct {
	RowHeight     int `yaml:"row_height" json:"row_height" jsonschema:"description=Height of a row in lines,minimum=1,default=1"`
	HeaderHeight  int `yaml:"header_height" json:"header_height" jsonschema:"description=Height of the header in lines,minimum=0,default=1"`
	ColumnWidth   int `yaml:"column_width" json:"column_width" jsonschema:"description=Initial width of columns in cells,minimum=1,default=12"`
	MaxCacheLines int `yaml:"max_cache_lines" json:"max_cache_lines" jsonschema:"description=Rendered rows kept in the row cache; 0 disables and -1 leaves it unbounded,minimum=-1,default=1000"`

	KeepFirstRowComplete bool `yaml:"keep_first_row_complete" json:"keep_first_row_complete" jsonschema:"description=Snap scrolling to whole rows,default=true"`
	LiveResize           bool `yaml:"live_resize" json:"live_resize" jsonschema:"description=Apply column widths while dragging,default=true"`
	ResizeRadius         int  `yaml:"resize_radius" json:"resize_radius" jsonschema:"description=Cells around a column edge that start a resize,minimum=0,default=0"`
	ClickTolerance       int  `yaml:"click_tolerance" json:"click_tolerance" jsonschema:"description=Cells a header click may travel before it moves the column,minimum=0,default=1"`

	UpdateInterval time.Duration `yaml:"update_interval" json:"update_interval" jsonschema:"description=Interval of the render timer that coalesces scrolling,default=100ms,type=string"`

	SelectionMode                   string `yaml:"selection_mode" json:"selection_mode" jsonschema:"description=Selection mode,enum=none,enum=single,enum=single-interval,enum=multiple-interval,enum=multiple-interval-toggle,default=multiple-interval"`
	ResetSelectionOnHeaderClick     bool   `yaml:"reset_selection_on_header_click" json:"reset_selection_on_header_click" jsonschema:"description=Clear the selection when a header click sorts,default=true"`
	RowFocusChangeModifiesSelection bool   `yaml:"row_focus_change_modifies_selection" json:"row_focus_change_modifies_selection" jsonschema:"description=Keyboard focus moves also move the selection,default=true"`

	AlwaysUpdateCells      bool `yaml:"always_update_cells" json:"always_update_cells" jsonschema:"description=Re-render cells on selection and focus changes,default=false"`
	ShowCellFocusIndicator bool `yaml:"show_cell_focus_indicator" json:"show_cell_focus_indicator" jsonschema:"description=Highlight the focused cell,default=true"`
	StatusBarVisible       bool `yaml:"status_bar_visible" json:"status_bar_visible" jsonschema:"description=Show the status bar,default=true"`

	MetaColumns []int `yaml:"meta_columns,omitempty" json:"meta_columns,omitempty" jsonschema:"description=Column counts per scroller; -1 takes the rest. 1 then -1 freezes the first column"`
}

// LogOptions configure logging.
type LogOptions struct {
	File       string `yaml:"file,omitempty" json:"file,omitempty" jsonschema:"description=Log file; defaults to the data directory"`
	Debug      bool   `yaml:"debug" json:"debug" jsonschema:"description=Enable debug logging"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb" jsonschema:"description=Size of a log file before it is rotated,minimum=1,default=10"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups" jsonschema:"description=Number of rotated files kept,minimum=0,default=3"`
}

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Table: TableOptions{
			RowHeight:                       1,
			HeaderHeight:                    1,
			ColumnWidth:                     12,
			MaxCacheLines:                   1000,
			KeepFirstRowComplete:            true,
			LiveResize:                      true,
			ClickTolerance:                  1,
			UpdateInterval:                  100 * time.Millisecond,
			SelectionMode:                   selection.ModeMultipleInterval.String(),
			ResetSelectionOnHeaderClick:     true,
			RowFocusChangeModifiesSelection: true,
			ShowCellFocusIndicator:          true,
			StatusBarVisible:                true,
		},
		Log: LogOptions{
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Mode returns the parsed selection mode.
func (o TableOptions) Mode() selection.Mode {
	m, err := selection.ParseMode(o.SelectionMode)
	if err != nil {
		return selection.ModeMultipleInterval
	}
	return m
}

// Validate checks the configuration for values the grid cannot use.
func (c *Config) Validate() error {
	t := c.Table
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}
	check(t.RowHeight >= 1, "row_height must be at least 1, got %d", t.RowHeight)
	check(t.HeaderHeight >= 0, "header_height must not be negative, got %d", t.HeaderHeight)
	check(t.ColumnWidth >= 1, "column_width must be at least 1, got %d", t.ColumnWidth)
	check(t.MaxCacheLines >= -1, "max_cache_lines must be -1 or more, got %d", t.MaxCacheLines)
	check(t.ResizeRadius >= 0, "resize_radius must not be negative, got %d", t.ResizeRadius)
	check(t.ClickTolerance >= 0, "click_tolerance must not be negative, got %d", t.ClickTolerance)
	check(t.UpdateInterval > 0, "update_interval must be positive, got %s", t.UpdateInterval)
	if _, err := selection.ParseMode(t.SelectionMode); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalid, err))
	}
	for i, n := range t.MetaColumns {
		last := i == len(t.MetaColumns)-1
		check(n > 0 || (last && n == -1), "meta_columns[%d] must be positive or -1 for the last entry, got %d", i, n)
	}
	check(c.Log.MaxSizeMB >= 1, "log.max_size_mb must be at least 1, got %d", c.Log.MaxSizeMB)
	check(c.Log.MaxBackups >= 0, "log.max_backups must not be negative, got %d", c.Log.MaxBackups)
	return errors.Join(errs...)
}

// Schema returns the JSON schema of the configuration file.
func Schema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(&Config{})
	schema.Title = "datagrid configuration"
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}
