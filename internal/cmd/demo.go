package cmd

import (
	"fmt"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/charmbracelet/datagrid/internal/data"
	"github.com/charmbracelet/datagrid/internal/ui/common"
	"github.com/charmbracelet/datagrid/internal/ui/render"
	"github.com/charmbracelet/datagrid/internal/ui/table"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Browse generated rows loaded in the background",
	Long: heredoc.Doc(`
		Browse generated rows that are loaded block by block in the
		background, with an artificial latency per request.
	`),
	Example: heredoc.Doc(`
		datagrid demo --rows 1000000 --latency 200ms
	`),
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		flags := getTableFlags(cmd)
		if err := flags.configure(cfg); err != nil {
			return err
		}

		rows, _ := cmd.Flags().GetInt("rows")
		latency, _ := cmd.Flags().GetDuration("latency")
		block, _ := cmd.Flags().GetInt("block-size")
		if rows < 0 {
			return fmt.Errorf("--rows must not be negative")
		}

		src := data.NewRemote(cmd.Context(), data.Generated{Rows: rows, Latency: latency}, data.RemoteOptions{
			BlockSize: block,
		}, data.GeneratedColumns...)
		tbl := table.New(common.DefaultCommon(cfg), src)
		defer tbl.Close()
		tbl.SetTitle("demo")

		cm := tbl.ColumnModel()
		cm.SetDataRenderer(0, render.Number{})
		cm.SetDataRenderer(2, render.Number{Decimals: 1})
		cm.SetDataRenderer(3, render.Boolean{})
		if err := flags.apply(tbl); err != nil {
			return err
		}
		return runTable(cmd, cfg, tbl)
	},
}

func init() {
	demoCmd.Flags().Int("rows", 100_000, "Number of rows")
	demoCmd.Flags().Duration("latency", 100*time.Millisecond, "Latency of every load request")
	demoCmd.Flags().Int("block-size", 0, "Rows per load request")
	addTableFlags(demoCmd)
}
