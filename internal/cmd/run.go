package cmd

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/datagrid/internal/config"
	"github.com/charmbracelet/datagrid/internal/log"
	"github.com/charmbracelet/datagrid/internal/ui/table"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

const snapshotTimeout = 30 * time.Second

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func logFile(cfg *config.Config) string {
	return cmp.Or(cfg.Log.File, filepath.Join(config.DataDir(), "logs", "datagrid.log"))
}

// runTable runs tbl as an interactive program. Without a terminal a single
// snapshot is written instead.
func runTable(cmd *cobra.Command, cfg *config.Config, tbl *table.Table) error {
	out := cmd.OutOrStdout()
	if !isTerminal(out) {
		slog.Debug("Output is not a terminal, writing a snapshot")
		return writeSnapshot(cmd.Context(), out, tbl, snapshotOptions{
			Width:  defaultSnapshotWidth,
			Height: defaultSnapshotHeight,
		})
	}

	closer, err := log.Setup(logFile(cfg), cfg.Log)
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.Info("Starting table", "table", tbl.ID(), "rows", tbl.Source().RowCount())

	p := tea.NewProgram(tbl, tea.WithContext(cmd.Context()))
	defer log.RecoverPanic("table", p.Kill)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run table: %w", err)
	}
	return nil
}

const (
	defaultSnapshotWidth  = 100
	defaultSnapshotHeight = 24
)

type snapshotOptions struct {
	Width, Height int
	// Rows bounds the rows of HTML output; negative renders all of them.
	Rows  int
	HTML  bool
	Color bool
}

// writeSnapshot renders tbl once to w, after its source finished loading.
func writeSnapshot(ctx context.Context, w io.Writer, tbl *table.Table, opts snapshotOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	tbl.SetVisible(false)
	tbl.SetSize(opts.Width, opts.Height)
	if err := tbl.Settle(ctx); err != nil {
		return fmt.Errorf("wait for rows: %w", err)
	}

	var out string
	switch {
	case opts.HTML:
		out = tbl.HTML(0, opts.Rows)
	case opts.Color || isTerminal(w):
		out = tbl.Render()
	default:
		out = ansi.Strip(tbl.Render())
	}
	_, err := fmt.Fprintln(w, out)
	return err
}
